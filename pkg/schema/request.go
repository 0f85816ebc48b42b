package schema

import (
	"fmt"
	"strings"
)

// Request is a parsed MARS-style retrieval request: a verb and, for each
// keyword, the set of raw values the user asked for.
type Request struct {
	Verb   string
	Values map[string][]string
	order  []string
}

// Keywords returns the request's keywords in the order they were parsed.
func (r *Request) Keywords() []string {
	return append([]string(nil), r.order...)
}

// ParseRequest parses a MARS-style request of the form "verb k1=v1/v2,k2=v3"
// (§6: "verb defaults to retrieve"). The verb, if present, may be
// separated from the clause list by whitespace, a comma, or both; a
// leading token is only taken as the verb when it contains neither "="
// nor "/" — otherwise it's the first clause and the verb defaults to
// "retrieve".
func ParseRequest(s string) (*Request, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("schema: empty request")
	}

	verb := "retrieve"
	rest := s
	if end := strings.IndexAny(s, " \t,"); end > 0 {
		if candidate := s[:end]; !strings.ContainsAny(candidate, "=/") {
			verb = candidate
			rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s[end:]), ","))
		}
	} else if end < 0 && !strings.ContainsAny(s, "=/") {
		verb = s
		rest = ""
	}

	req := &Request{Verb: verb, Values: map[string][]string{}}
	if rest == "" {
		return req, nil
	}
	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("schema: malformed clause %q", part)
		}
		keyword := strings.TrimSpace(kv[0])
		values := strings.Split(kv[1], "/")
		for i := range values {
			values[i] = strings.TrimSpace(values[i])
		}
		if _, seen := req.Values[keyword]; !seen {
			req.order = append(req.order, keyword)
		}
		req.Values[keyword] = values
	}
	return req, nil
}
