package fdbtype

import (
	"fmt"
	"strconv"
	"strings"
)

// stepType accepts "N", "N-M", "Nm" (minutes) and "Nm-Mm", canonicalising
// each side independently so that "60m" becomes "1" and "30m-60m" becomes
// "30m-1".
type stepType struct{}

func (stepType) Name() string { return "Step" }

func stepSide(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "m") {
		minutes, err := strconv.Atoi(strings.TrimSuffix(raw, "m"))
		if err != nil {
			return "", fmt.Errorf("fdbtype: Step: %q is not a valid minute offset: %w", raw, err)
		}
		if minutes%60 == 0 {
			return strconv.Itoa(minutes / 60), nil
		}
		return strconv.Itoa(minutes) + "m", nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil {
		return "", fmt.Errorf("fdbtype: Step: %q is not a valid step: %w", raw, err)
	}
	return strconv.Itoa(hours), nil
}

func (stepType) Canonicalise(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if dash := strings.IndexByte(raw, '-'); dash >= 0 {
		start, err := stepSide(raw[:dash])
		if err != nil {
			return "", err
		}
		end, err := stepSide(raw[dash+1:])
		if err != nil {
			return "", err
		}
		return start + "-" + end, nil
	}
	return stepSide(raw)
}

func (stepType) ToKey(canonical string) string { return canonical }

// Match compares canonical forms: since canonicalisation already unifies
// "60m" and "1", plain equality on canonical values is sufficient and
// correctly treats them as duplicates (resolving the ambiguity noted in
// DESIGN.md around the source's raw-string comparison).
func (stepType) Match(a, b string) bool { return a == b }

func (t stepType) ExpandRequest(raw []string, axis Axis) ([]string, error) {
	values, err := canonicaliseAll(t, raw)
	if err != nil {
		return nil, err
	}
	if axis == nil {
		return values, nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if axis.Has(v) {
			out = append(out, v)
			continue
		}
		if axis.Has("0-" + v) {
			out = append(out, "0-"+v)
			continue
		}
		if axis.Has(v + "-" + v) {
			out = append(out, v+"-"+v)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// paramType canonicalises to "n" or "n.table" and implements the param-id
// equality rule: a bare param matches a tabled one when table*1000+n equals
// the bare numeric value.
type paramType struct{}

func (paramType) Name() string { return "Param" }

func parseParam(raw string) (n int, table int, hasTable bool, err error) {
	raw = strings.TrimSpace(raw)
	if dot := strings.IndexByte(raw, '.'); dot >= 0 {
		n, err = strconv.Atoi(raw[:dot])
		if err != nil {
			return 0, 0, false, fmt.Errorf("fdbtype: Param: %q is not a valid param.table: %w", raw, err)
		}
		table, err = strconv.Atoi(raw[dot+1:])
		if err != nil {
			return 0, 0, false, fmt.Errorf("fdbtype: Param: %q is not a valid param.table: %w", raw, err)
		}
		return n, table, true, nil
	}
	n, err = strconv.Atoi(raw)
	if err != nil {
		return 0, 0, false, fmt.Errorf("fdbtype: Param: %q is not a valid param: %w", raw, err)
	}
	return n, 0, false, nil
}

func (paramType) Canonicalise(raw string) (string, error) {
	n, table, hasTable, err := parseParam(raw)
	if err != nil {
		return "", err
	}
	if hasTable {
		return fmt.Sprintf("%d.%d", n, table), nil
	}
	return strconv.Itoa(n), nil
}

func (paramType) ToKey(canonical string) string { return canonical }

func (paramType) Match(a, b string) bool {
	na, ta, hasA, errA := parseParam(a)
	nb, tb, hasB, errB := parseParam(b)
	if errA != nil || errB != nil {
		return a == b
	}
	switch {
	case hasA && hasB:
		return na == nb && ta == tb
	case !hasA && !hasB:
		return na == nb
	case hasA && !hasB:
		return ta*1000+na == nb
	default:
		return tb*1000+nb == na
	}
}

func (t paramType) ExpandRequest(raw []string, axis Axis) ([]string, error) {
	values, err := canonicaliseAll(t, raw)
	if err != nil {
		return nil, err
	}
	if axis == nil {
		return values, nil
	}
	// Prefer the exact on-axis form when the request's canonical form
	// doesn't appear verbatim but an equivalent (via Match) does.
	out := make([]string, 0, len(values))
	for _, v := range values {
		if axis.Has(v) {
			out = append(out, v)
			continue
		}
		matched := v
		for _, have := range axis.Values() {
			if t.Match(v, have) {
				matched = have
				break
			}
		}
		out = append(out, matched)
	}
	return out, nil
}

// gridType canonicalises a grid specification (e.g. "N320", "O640",
// "0.25/0.25") to lowercase with surrounding whitespace trimmed.
type gridType struct{}

func (gridType) Name() string { return "Grid" }

func (gridType) Canonicalise(raw string) (string, error) {
	return strings.ToLower(strings.TrimSpace(raw)), nil
}

func (gridType) ToKey(canonical string) string { return canonical }

func (gridType) Match(a, b string) bool { return a == b }

func (t gridType) ExpandRequest(raw []string, _ Axis) ([]string, error) {
	return canonicaliseAll(t, raw)
}

// expverType zero-pads to four characters.
type expverType struct{}

func (expverType) Name() string { return "Expver" }

func (expverType) Canonicalise(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 4 {
		return raw, nil
	}
	return strings.Repeat("0", 4-len(raw)) + raw, nil
}

func (expverType) ToKey(canonical string) string { return canonical }

func (expverType) Match(a, b string) bool { return a == b }

func (t expverType) ExpandRequest(raw []string, _ Axis) ([]string, error) {
	return canonicaliseAll(t, raw)
}
