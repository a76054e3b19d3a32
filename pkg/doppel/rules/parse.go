package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Duration constants.
const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day  // Approximate
	Year  = 365 * Day // Approximate
)

// ErrInvalidDuration indicates that the duration string could not be parsed.
var ErrInvalidDuration = errors.New("invalid duration format")

// ErrInvalidRule indicates that the rule string could not be parsed.
var ErrInvalidRule = errors.New("invalid rule")

// ErrNegativeValue indicates that a negative value was provided.
var ErrNegativeValue = errors.New("value cannot be negative")

// durationPattern matches duration strings like "30d", "2w", "1mo", "1y".
var durationPattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*(d|w|mo|y|h|m|s|ms|us|ns)\s*$`)

// ParseDuration parses a human-readable duration string.
// It supports the following formats:
//   - Days: "1d", "30d"
//   - Weeks: "1w", "2w"
//   - Months: "1mo", "3mo" (30 days per month)
//   - Years: "1y", "2y" (365 days per year)
//   - Standard Go duration: "24h", "90m", "1h30m"
//
// Returns ErrInvalidDuration if the format is not recognized.
// Returns ErrNegativeValue if the value is negative.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidDuration)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeValue
	}

	matches := durationPattern.FindStringSubmatch(s)
	if matches == nil {
		// Try standard Go duration as fallback
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		return d, nil
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	suffix := strings.ToLower(matches[2])
	var multiplier time.Duration
	switch suffix {
	case "d":
		multiplier = Day
	case "w":
		multiplier = Week
	case "mo":
		multiplier = Month
	case "y":
		multiplier = Year
	case "h":
		multiplier = time.Hour
	case "m":
		multiplier = time.Minute
	case "s":
		multiplier = time.Second
	case "ms":
		multiplier = time.Millisecond
	case "us":
		multiplier = time.Microsecond
	case "ns":
		multiplier = time.Nanosecond
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidDuration, suffix)
	}

	return time.Duration(value * float64(multiplier)), nil
}

// Parse parses a single rule string into a Rule. Supported forms:
//   - "ext:jpg,png"        extension rule
//   - "older-than:30d"     modification-time lower bound
//   - "newer-than:2w"      modification-time upper bound
//   - "regex:\.bak$"       path regular expression
//
// The set of rule kinds is closed; unknown kinds return ErrInvalidRule.
func Parse(s string) (Rule, error) {
	kind, arg, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || arg == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRule, s)
	}

	switch strings.ToLower(kind) {
	case "ext":
		return NewByExtension(strings.Split(arg, ",")...), nil
	case "older-than":
		d, err := ParseDuration(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRule, s, err)
		}
		return &ByDate{OlderThan: d}, nil
	case "newer-than":
		d, err := ParseDuration(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRule, s, err)
		}
		return &ByDate{NewerThan: d}, nil
	case "regex":
		r, err := NewByRegex(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRule, s, err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, kind)
	}
}

// ParseAll parses a list of rule strings into a RuleSet.
func ParseAll(specs []string) (RuleSet, error) {
	var rs RuleSet
	for _, s := range specs {
		r, err := Parse(s)
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}
	return rs, nil
}
