// Package output provides formatters for displaying doppel duplicate
// detection results in various output formats (pretty, plain, json, yaml,
// etc.).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/doppelkit/doppel/pkg/doppel/types"
)

// FileInfo contains information about one member of a duplicate group,
// extended with computed fields like human-readable size for easier
// formatting.
type FileInfo struct {
	// Path is the absolute path to the file.
	Path string `json:"path" yaml:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// SizeHuman is the human-readable file size (e.g., "1.5 GiB").
	SizeHuman string `json:"size_human" yaml:"size_human"`

	// ModTime is the last modification time of the file.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// GroupInfo contains one confirmed duplicate group for output formatting.
type GroupInfo struct {
	// Digest is the hex-encoded content digest shared by all members.
	Digest string `json:"digest" yaml:"digest"`

	// Size is the byte size shared by all members.
	Size int64 `json:"size" yaml:"size"`

	// SizeHuman is the human-readable member size.
	SizeHuman string `json:"size_human" yaml:"size_human"`

	// Wasted is the bytes reclaimable by keeping one copy.
	Wasted int64 `json:"wasted" yaml:"wasted"`

	// WastedHuman is the human-readable wasted size.
	WastedHuman string `json:"wasted_human" yaml:"wasted_human"`

	// Files contains the group members, sorted by path.
	Files []FileInfo `json:"files" yaml:"files"`
}

// ScanStats contains statistics about a detection run.
type ScanStats struct {
	// DirsScanned is the total number of directories traversed.
	DirsScanned int64 `json:"dirs_scanned" yaml:"dirs_scanned"`

	// FilesScanned is the total number of files examined.
	FilesScanned int64 `json:"files_scanned" yaml:"files_scanned"`

	// FilesHashed is the number of files whose full content was digested.
	FilesHashed int64 `json:"files_hashed" yaml:"files_hashed"`

	// BytesHashed is the total bytes digested.
	BytesHashed int64 `json:"bytes_hashed" yaml:"bytes_hashed"`

	// CacheHits is the number of digests served from the cache.
	CacheHits int64 `json:"cache_hits" yaml:"cache_hits"`

	// Duration is the total time taken to complete the run.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Result contains the complete output data for formatting.
type Result struct {
	// Groups contains the confirmed duplicate groups, largest first.
	Groups []GroupInfo `json:"groups" yaml:"groups"`

	// Stats contains detection statistics.
	Stats ScanStats `json:"stats" yaml:"stats"`

	// Source is the root path that was scanned.
	Source string `json:"source" yaml:"source"`

	// TotalGroups is the number of duplicate groups found.
	TotalGroups int `json:"total_groups" yaml:"total_groups"`

	// DuplicateFiles is the total number of files across all groups.
	DuplicateFiles int `json:"duplicate_files" yaml:"duplicate_files"`

	// WastedBytes is the total reclaimable bytes across all groups.
	WastedBytes int64 `json:"wasted_bytes" yaml:"wasted_bytes"`

	// Warnings contains per-path errors collected during the run.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Build converts a detection result into the output representation.
func Build(source string, res *types.ScanResult) *Result {
	groups := make([]GroupInfo, len(res.Groups))
	for i, g := range res.Groups {
		files := make([]FileInfo, len(g.Files))
		for j, f := range g.Files {
			files[j] = FileInfo{
				Path:      f.Path,
				Size:      f.Size,
				SizeHuman: humanize.IBytes(uint64(f.Size)),
				ModTime:   f.ModTime,
			}
		}
		groups[i] = GroupInfo{
			Digest:      g.Digest.String(),
			Size:        g.Size,
			SizeHuman:   humanize.IBytes(uint64(g.Size)),
			Wasted:      g.Wasted(),
			WastedHuman: humanize.IBytes(uint64(g.Wasted())),
			Files:       files,
		}
	}

	warnings := make([]string, 0, len(res.Unreadable))
	for _, e := range res.Unreadable {
		warnings = append(warnings, fmt.Sprintf("%s: %s", e.Path, e.Error))
	}

	return &Result{
		Groups: groups,
		Stats: ScanStats{
			DirsScanned:  res.DirsScanned,
			FilesScanned: res.FilesScanned,
			FilesHashed:  res.FilesHashed,
			BytesHashed:  res.BytesHashed,
			CacheHits:    res.CacheHits,
			Duration:     res.Elapsed,
		},
		Source:         source,
		TotalGroups:    len(res.Groups),
		DuplicateFiles: res.DuplicateFiles(),
		WastedBytes:    res.WastedBytes(),
		Warnings:       warnings,
	}
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
