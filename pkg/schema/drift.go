package schema

import "os"

// Drifted reports whether the schema copied into a database directory at
// init time no longer byte-matches the process-wide master schema file.
// A DB's own copy is the authoritative schema for expanding keys against
// it; drift only means the master has since evolved, not that the DB's
// copy is invalid.
func Drifted(masterPath, dbSchemaPath string) (bool, error) {
	master, err := os.ReadFile(masterPath)
	if err != nil {
		return false, err
	}
	onDisk, err := os.ReadFile(dbSchemaPath)
	if err != nil {
		return false, err
	}
	return string(master) != string(onDisk), nil
}
