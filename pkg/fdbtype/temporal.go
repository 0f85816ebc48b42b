package fdbtype

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "20060102"

// dateType accepts YYYYMMDD or a relative offset ("-1", "0" meaning today)
// and canonicalises to YYYYMMDD.
type dateType struct{}

func (dateType) Name() string { return "Date" }

func (dateType) Canonicalise(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("fdbtype: Date: empty value")
	}
	if n, err := strconv.Atoi(raw); err == nil && (raw[0] == '-' || len(raw) <= 3) {
		return time.Now().UTC().AddDate(0, 0, n).Format(dateLayout), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return "", fmt.Errorf("fdbtype: Date: %q is not YYYYMMDD or a relative offset: %w", raw, err)
	}
	return t.Format(dateLayout), nil
}

func (dateType) ToKey(canonical string) string { return canonical }

func (dateType) Match(a, b string) bool { return a == b }

func (t dateType) ExpandRequest(raw []string, _ Axis) ([]string, error) {
	return canonicaliseAll(t, raw)
}

// timeType accepts H, HH, HHMM, or HH:MM[:SS] and canonicalises to HHMM,
// rejecting components out of range.
type timeType struct{}

func (timeType) Name() string { return "Time" }

func (timeType) Canonicalise(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	var hour, minute, second int
	var err error

	if strings.Contains(raw, ":") {
		parts := strings.Split(raw, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return "", fmt.Errorf("fdbtype: Time: %q is not a valid HH:MM[:SS]", raw)
		}
		if hour, err = strconv.Atoi(parts[0]); err != nil {
			return "", fmt.Errorf("fdbtype: Time: bad hour in %q: %w", raw, err)
		}
		if minute, err = strconv.Atoi(parts[1]); err != nil {
			return "", fmt.Errorf("fdbtype: Time: bad minute in %q: %w", raw, err)
		}
		if len(parts) == 3 {
			if second, err = strconv.Atoi(parts[2]); err != nil {
				return "", fmt.Errorf("fdbtype: Time: bad second in %q: %w", raw, err)
			}
		}
	} else {
		switch len(raw) {
		case 1, 2:
			if hour, err = strconv.Atoi(raw); err != nil {
				return "", fmt.Errorf("fdbtype: Time: %q is not a valid hour: %w", raw, err)
			}
		case 4:
			if hour, err = strconv.Atoi(raw[:2]); err != nil {
				return "", fmt.Errorf("fdbtype: Time: %q is not a valid HHMM: %w", raw, err)
			}
			if minute, err = strconv.Atoi(raw[2:]); err != nil {
				return "", fmt.Errorf("fdbtype: Time: %q is not a valid HHMM: %w", raw, err)
			}
		case 6:
			if hour, err = strconv.Atoi(raw[:2]); err != nil {
				return "", fmt.Errorf("fdbtype: Time: %q is not a valid HHMMSS: %w", raw, err)
			}
			if minute, err = strconv.Atoi(raw[2:4]); err != nil {
				return "", fmt.Errorf("fdbtype: Time: %q is not a valid HHMMSS: %w", raw, err)
			}
			if second, err = strconv.Atoi(raw[4:]); err != nil {
				return "", fmt.Errorf("fdbtype: Time: %q is not a valid HHMMSS: %w", raw, err)
			}
		default:
			return "", fmt.Errorf("fdbtype: Time: %q has an unrecognised length", raw)
		}
	}

	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("fdbtype: Time: hour %d out of range in %q", hour, raw)
	}
	if minute < 0 || minute > 59 {
		return "", fmt.Errorf("fdbtype: Time: minute %d out of range in %q", minute, raw)
	}
	if second < 0 || second > 59 {
		return "", fmt.Errorf("fdbtype: Time: second %d out of range in %q", second, raw)
	}

	return fmt.Sprintf("%02d%02d", hour, minute), nil
}

func (timeType) ToKey(canonical string) string { return canonical }

func (timeType) Match(a, b string) bool { return a == b }

func (t timeType) ExpandRequest(raw []string, _ Axis) ([]string, error) {
	return canonicaliseAll(t, raw)
}

func dateComponents(raw string) (year, month, day string, full bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) == 8 {
		return raw[0:4], raw[4:6], raw[6:8], true
	}
	return raw, "", "", false
}

// yearType derives a four-digit year from a full YYYYMMDD date, or accepts
// a bare year directly.
type yearType struct{}

func (yearType) Name() string { return "Year" }

func (yearType) Canonicalise(raw string) (string, error) {
	year, _, _, full := dateComponents(raw)
	if full {
		return year, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return "", fmt.Errorf("fdbtype: Year: %q is not a year or date", raw)
	}
	return fmt.Sprintf("%04d", v), nil
}

func (yearType) ToKey(canonical string) string { return canonical }

func (yearType) Match(a, b string) bool { return a == b }

func (t yearType) ExpandRequest(raw []string, _ Axis) ([]string, error) {
	return canonicaliseAll(t, raw)
}

// monthType derives a two-digit month from a full YYYYMMDD date, or
// accepts a bare month number or name.
type monthType struct{}

func (monthType) Name() string { return "Month" }

func (monthType) Canonicalise(raw string) (string, error) {
	_, month, _, full := dateComponents(raw)
	if full {
		return month, nil
	}
	return canonicaliseMonth(raw)
}

func (monthType) ToKey(canonical string) string { return canonical }

func (monthType) Match(a, b string) bool { return a == b }

func (t monthType) ExpandRequest(raw []string, _ Axis) ([]string, error) {
	return canonicaliseAll(t, raw)
}

// monthOfDateType requires a full YYYYMMDD date and extracts its month.
type monthOfDateType struct{}

func (monthOfDateType) Name() string { return "MonthOfDate" }

func (monthOfDateType) Canonicalise(raw string) (string, error) {
	_, month, _, full := dateComponents(raw)
	if !full {
		return "", fmt.Errorf("fdbtype: MonthOfDate: %q is not a full YYYYMMDD date", raw)
	}
	return month, nil
}

func (monthOfDateType) ToKey(canonical string) string { return canonical }

func (monthOfDateType) Match(a, b string) bool { return a == b }

func (t monthOfDateType) ExpandRequest(raw []string, _ Axis) ([]string, error) {
	return canonicaliseAll(t, raw)
}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

func canonicaliseMonth(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if v, err := strconv.Atoi(raw); err == nil {
		if v < 1 || v > 12 {
			return "", fmt.Errorf("fdbtype: month %d out of range", v)
		}
		return fmt.Sprintf("%02d", v), nil
	}
	lower := strings.ToLower(raw)
	for i, name := range monthNames {
		if lower == name || lower == name[:3] {
			return fmt.Sprintf("%02d", i+1), nil
		}
	}
	return "", fmt.Errorf("fdbtype: %q is not a recognised month", raw)
}

// climateDailyType canonicalises to MMDD and matches by MMDD regardless of
// year.
type climateDailyType struct{}

func (climateDailyType) Name() string { return "ClimateDaily" }

func (climateDailyType) Canonicalise(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch len(raw) {
	case 4:
		if _, err := strconv.Atoi(raw); err != nil {
			return "", fmt.Errorf("fdbtype: ClimateDaily: %q is not MMDD: %w", raw, err)
		}
		return raw, nil
	case 8:
		_, month, day, full := dateComponents(raw)
		if !full {
			return "", fmt.Errorf("fdbtype: ClimateDaily: %q is not a date", raw)
		}
		return month + day, nil
	default:
		return "", fmt.Errorf("fdbtype: ClimateDaily: %q has an unrecognised length", raw)
	}
}

func (climateDailyType) ToKey(canonical string) string { return canonical }

func (climateDailyType) Match(a, b string) bool { return a == b }

func (t climateDailyType) ExpandRequest(raw []string, _ Axis) ([]string, error) {
	return canonicaliseAll(t, raw)
}

// climateMonthlyType canonicalises to a two-digit month number; month
// names are accepted.
type climateMonthlyType struct{}

func (climateMonthlyType) Name() string { return "ClimateMonthly" }

func (climateMonthlyType) Canonicalise(raw string) (string, error) {
	return canonicaliseMonth(raw)
}

func (climateMonthlyType) ToKey(canonical string) string { return canonical }

func (climateMonthlyType) Match(a, b string) bool { return a == b }

func (t climateMonthlyType) ExpandRequest(raw []string, _ Axis) ([]string, error) {
	return canonicaliseAll(t, raw)
}
