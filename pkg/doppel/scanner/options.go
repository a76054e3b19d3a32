// Package scanner provides the traversal phase of duplicate detection.
// It walks a directory tree in parallel using fastwalk and collects every
// regular file meeting the size threshold, without reading any content.
package scanner

import (
	"github.com/doppelkit/doppel/pkg/doppel/types"
)

// DefaultMinSize is the minimum file size considered for duplicate
// detection. One byte by default so empty files are never flagged as
// trivial "duplicates".
const DefaultMinSize int64 = 1

// Options configures the traversal.
type Options struct {
	// Root is the directory to walk. It must exist and be a directory.
	Root string

	// MinSize is the minimum file size in bytes to collect.
	// Values below 1 are raised to DefaultMinSize.
	MinSize int64

	// MaxDepth limits recursion depth below the root. 0 means unlimited;
	// 1 collects only the root's immediate entries.
	MaxDepth int

	// Exclude contains glob patterns for paths to skip. Patterns are
	// matched against the full path and the base name.
	Exclude []string

	// OnProgress is called periodically with traversal progress.
	// It must be safe to call from multiple goroutines.
	OnProgress func(types.ScanProgress)
}

// Validate applies defaults for unset or invalid values.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = "."
	}
	if o.MinSize < DefaultMinSize {
		o.MinSize = DefaultMinSize
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	return nil
}
