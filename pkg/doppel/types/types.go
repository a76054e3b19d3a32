// Package types provides core data types for the doppel duplicate file
// detector. It includes the file record, duplicate group, and scan result
// structures, along with utility functions for parsing and formatting
// file sizes.
package types

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// DigestSize is the length in bytes of a content digest (SHA-256).
const DigestSize = 32

// Digest is the full-content SHA-256 fingerprint of a file.
type Digest [DigestSize]byte

// String returns the lowercase hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest has not been computed.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ParseDigest parses a hex-encoded digest string.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest %q: %w", s, err)
	}
	if len(b) != DigestSize {
		return d, fmt.Errorf("invalid digest %q: want %d bytes, got %d", s, DigestSize, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// FileRecord describes one regular file seen during a scan.
// The digest is computed lazily: records created during traversal carry a
// zero digest until confirmation hashes them.
type FileRecord struct {
	// Path is the absolute path to the file.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// ModTime is the last modification time of the file.
	ModTime time.Time `json:"mod_time"`

	// Digest is the full-content digest, zero until computed.
	Digest Digest `json:"digest,omitempty"`
}

// HumanSize returns the file size formatted as a human-readable string.
func (f *FileRecord) HumanSize() string {
	return FormatSize(f.Size)
}

// DuplicateGroup is a set of files with identical size and identical
// full-content digest. Every group has at least two members, sorted by path.
type DuplicateGroup struct {
	// Digest is the shared content digest of all members.
	Digest Digest `json:"digest"`

	// Size is the shared byte size of all members.
	Size int64 `json:"size"`

	// Files are the group members, sorted by path.
	Files []FileRecord `json:"files"`
}

// Wasted returns the bytes that could be reclaimed by keeping a single copy.
func (g *DuplicateGroup) Wasted() int64 {
	if len(g.Files) < 2 {
		return 0
	}
	return g.Size * int64(len(g.Files)-1)
}

// ScanError records a path that could not be read during a scan.
// Unreadable paths are diagnostics, never fatal.
type ScanError struct {
	// Path is the file or directory path where the error occurred.
	Path string `json:"path"`

	// Error is the error message describing what went wrong.
	Error string `json:"error"`
}

// ScanResult is the complete, immutable output of one duplicate-detection
// pass. Groups are ordered by size descending, then digest ascending, so
// repeated scans of an unchanged tree produce identical results.
type ScanResult struct {
	// Groups contains all confirmed duplicate groups.
	Groups []DuplicateGroup `json:"groups"`

	// Unreadable lists paths skipped because they could not be read.
	Unreadable []ScanError `json:"unreadable,omitempty"`

	// DirsScanned is the total number of directories traversed.
	DirsScanned int64 `json:"dirs_scanned"`

	// FilesScanned is the total number of regular files examined.
	FilesScanned int64 `json:"files_scanned"`

	// FilesHashed is the number of files whose full content was digested.
	FilesHashed int64 `json:"files_hashed"`

	// BytesHashed is the total bytes read for digest confirmation.
	BytesHashed int64 `json:"bytes_hashed"`

	// CacheHits is the number of digests served from the cache.
	CacheHits int64 `json:"cache_hits,omitempty"`

	// Elapsed is the total time taken to complete the scan.
	Elapsed time.Duration `json:"elapsed"`
}

// DuplicateFiles returns the total number of files across all groups.
func (r *ScanResult) DuplicateFiles() int {
	n := 0
	for i := range r.Groups {
		n += len(r.Groups[i].Files)
	}
	return n
}

// WastedBytes returns the total reclaimable bytes across all groups.
func (r *ScanResult) WastedBytes() int64 {
	var total int64
	for i := range r.Groups {
		total += r.Groups[i].Wasted()
	}
	return total
}

// ScanProgress reports real-time scan progress.
type ScanProgress struct {
	// DirsScanned is the number of directories processed so far.
	DirsScanned int64 `json:"dirs_scanned"`

	// FilesScanned is the number of files examined so far.
	FilesScanned int64 `json:"files_scanned"`

	// Candidates is the number of files queued for digest confirmation.
	Candidates int64 `json:"candidates"`

	// FilesHashed is the number of files fully digested so far.
	FilesHashed int64 `json:"files_hashed"`

	// BytesHashed is the total bytes digested so far.
	BytesHashed int64 `json:"bytes_hashed"`

	// CurrentPath is the path currently being processed.
	CurrentPath string `json:"current_path"`
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in bytes.
// It supports plain byte counts ("1024"), and K/M/G/T suffixes with optional
// B or iB ("100K", "50MiB", "2GB"). Decimal values are truncated to the
// nearest byte.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
