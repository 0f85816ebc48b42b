package main

import (
	"fmt"
	"strings"

	"github.com/ecmwf/fdb-go/pkg/fdbkey"
)

// parseKeyArg parses "class=od,stream=oper,expver=0001" into a Key, the
// terse keyword=value form operators type at a shell prompt.
func parseKeyArg(s string) (*fdbkey.Key, error) {
	var pairs []string
	for _, clause := range strings.Split(s, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		kv := strings.SplitN(clause, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed key clause %q, want keyword=value", clause)
		}
		pairs = append(pairs, strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1]))
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("empty key")
	}
	return fdbkey.FromPairs(pairs...), nil
}
