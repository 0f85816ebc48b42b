/*
Package fdbtype implements the pluggable per-keyword value types that the
schema uses to canonicalise, compare, and expand MARS request values.

Each Type is a flattened, closed variant (Default, Integer, Double, Date,
Time, Year, Month, MonthOfDate, Step, Param, Grid, Expver, Lowercase,
FirstN, ClimateDaily, ClimateMonthly, Ignore) built by a self-registering
factory keyed by name. A Registry resolves a keyword to its Type, falling
back through a parent chain rooted at the schema's top-level registry, and
finally to the Default type when nothing more specific was declared.

Types are deliberately dumb about storage: Step and Param accept an Axis —
the set of canonical values already seen for that keyword in the database
being written to or read from — to support range-aware expansion (a
request for step=6 should also match an archived "0-6" step range).
*/
package fdbtype
