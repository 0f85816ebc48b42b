// Package fdbconfig loads the engine-wide configuration knobs: root
// directories, schema location, DB cache sizes, double-insert checking,
// write striping, and sub-TOC usage. Config is read from a YAML file with
// gopkg.in/yaml.v3, and the root list, schema file, DB cache size,
// writer/reader backend, double-insert check, async write and sub-TOC
// usage may be overridden by environment variables; the other fields are
// set only from the file.
package fdbconfig
