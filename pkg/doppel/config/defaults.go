// Package config provides configuration management for the doppel duplicate
// detector.
package config

// Default configuration values for doppel.
const (
	// DefaultMinSize is the minimum file size to consider for duplicate
	// detection. One byte: empty files are never duplicates of each other.
	DefaultMinSize = "1B"

	// DefaultPath is the default path to scan when none is specified.
	DefaultPath = "."

	// DefaultOutput is the default output format.
	DefaultOutput = "pretty"
)

// DefaultExclusions contains paths that are excluded from scanning by default.
var DefaultExclusions = []string{
	"/proc",
	"/sys",
	"/dev",
}
