/*
Package fdbkey implements the ordered keyword→value map that identifies a
field, a database, an index, or a datum throughout the fdb storage engine.

A Key keeps an insertion-ordered list of keyword names alongside a value map
with identical membership; the two invariants the rest of the engine relies
on are that every name in the list has a value in the map (possibly empty
during construction) and that pop() undoes the most recent push() for a
keyword, never an earlier one.

TypedKey layers an fdbtype.Registry on top of a Key so that values set or
pushed during schema expansion are canonicalised (and, at datum level,
projected to their on-disk form) before they are compared or persisted.
*/
package fdbkey
