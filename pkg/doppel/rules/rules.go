// Package rules provides report filtering for duplicate-detection results.
// Rules are a closed set of matcher variants dispatched through a single
// interface; they narrow which duplicate groups a report shows and never
// influence how groups are formed.
package rules

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/doppelkit/doppel/pkg/doppel/types"
)

// Rule decides whether a single file is of interest to the report.
type Rule interface {
	// Match returns true if the file satisfies the rule.
	Match(rec types.FileRecord) bool
}

// ByExtension matches files whose extension is in the allowed set.
// Extensions are compared case-insensitively and include the dot.
type ByExtension struct {
	Extensions []string
}

// NewByExtension creates an extension rule. Extensions are normalized:
// lowercase and prefixed with "." if missing.
func NewByExtension(extensions ...string) *ByExtension {
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return &ByExtension{Extensions: normalized}
}

// Match returns true if the file's extension is in the allowed set.
func (r *ByExtension) Match(rec types.FileRecord) bool {
	ext := strings.ToLower(filepath.Ext(rec.Path))
	for _, e := range r.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ByDate matches files by modification-time age.
type ByDate struct {
	// OlderThan, if positive, requires the file to have been modified at
	// least this long ago.
	OlderThan time.Duration

	// NewerThan, if positive, requires the file to have been modified no
	// longer ago than this.
	NewerThan time.Duration

	// now overrides the clock in tests.
	now func() time.Time
}

// Match returns true if the file's modification time satisfies both bounds.
func (r *ByDate) Match(rec types.FileRecord) bool {
	clock := r.now
	if clock == nil {
		clock = time.Now
	}
	now := clock()

	if r.OlderThan > 0 && rec.ModTime.After(now.Add(-r.OlderThan)) {
		return false
	}
	if r.NewerThan > 0 && rec.ModTime.Before(now.Add(-r.NewerThan)) {
		return false
	}
	return true
}

// ByRegex matches files whose path matches a compiled regular expression.
type ByRegex struct {
	Pattern *regexp.Regexp
}

// NewByRegex compiles pattern and returns the rule.
func NewByRegex(pattern string) (*ByRegex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &ByRegex{Pattern: re}, nil
}

// Match returns true if the file path matches the pattern.
func (r *ByRegex) Match(rec types.FileRecord) bool {
	return r.Pattern.MatchString(rec.Path)
}

// RuleSet is a conjunction of rules: a file matches the set only if it
// matches every rule. An empty set matches everything.
type RuleSet []Rule

// Match returns true if the file satisfies every rule in the set.
func (rs RuleSet) Match(rec types.FileRecord) bool {
	for _, r := range rs {
		if !r.Match(rec) {
			return false
		}
	}
	return true
}

// FilterGroups returns the groups in which at least one member matches the
// rule set. Groups themselves are passed through intact; rules select which
// groups to show, never which files belong together.
func (rs RuleSet) FilterGroups(groups []types.DuplicateGroup) []types.DuplicateGroup {
	if len(rs) == 0 {
		return groups
	}

	var kept []types.DuplicateGroup
	for _, g := range groups {
		for _, f := range g.Files {
			if rs.Match(f) {
				kept = append(kept, g)
				break
			}
		}
	}
	return kept
}
