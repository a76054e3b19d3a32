// Package detector implements duplicate file detection over a directory
// tree. Detection runs in two phases: traversal buckets files by exact byte
// size, then buckets with two or more candidates are confirmed by streaming
// content digests. Size equality is only ever a prefilter; files group
// together iff their sizes and full-content digests both match.
package detector

import (
	"github.com/doppelkit/doppel/pkg/doppel/cache"
	"github.com/doppelkit/doppel/pkg/doppel/tuner"
	"github.com/doppelkit/doppel/pkg/doppel/types"
)

// Options configures a detection run.
type Options struct {
	// Root is the directory to scan. It must exist and be a readable
	// directory.
	Root string

	// MinSize is the minimum file size in bytes to consider.
	// Defaults to 1 byte, which keeps empty files out of the results.
	MinSize int64

	// MaxDepth limits recursion depth below the root. 0 means unlimited.
	MaxDepth int

	// Exclude contains glob patterns for paths to skip.
	Exclude []string

	// Workers is the number of concurrent digest workers.
	// 0 selects a count based on detected system resources.
	Workers int

	// QueueSize bounds the candidate queue between bucketing and digest
	// workers. 0 selects a size based on available memory.
	QueueSize int

	// Cache is an optional digest cache. If nil, every confirmation
	// digest is computed fresh.
	Cache *cache.Cache

	// OnProgress is called periodically with scan progress updates.
	// It must be safe to call from multiple goroutines.
	OnProgress func(types.ScanProgress)
}

// Validate applies defaults for unset values, consulting the tuner when
// worker count or queue size were not specified.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = "."
	}
	if o.MinSize < 1 {
		o.MinSize = 1
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}

	if o.Workers <= 0 || o.QueueSize <= 0 {
		res, err := tuner.Detect()
		if err != nil {
			res = tuner.SystemResources{
				CPUCores:     4,
				TotalRAM:     8 * types.GiB,
				AvailableRAM: 4 * types.GiB,
			}
		}
		cfg := tuner.CalculateWithOverrides(res, o.Workers)
		if o.Workers <= 0 {
			o.Workers = cfg.HashWorkers
		}
		if o.QueueSize <= 0 {
			o.QueueSize = cfg.QueueSize
		}
	}

	return nil
}
