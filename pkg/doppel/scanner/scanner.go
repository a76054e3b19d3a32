package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"

	"github.com/doppelkit/doppel/pkg/doppel/types"
)

// ErrInvalidRoot is returned when the scan root does not exist or is not a
// readable directory. No traversal is performed in that case.
var ErrInvalidRoot = errors.New("invalid scan root")

// Result holds everything the traversal phase produced.
type Result struct {
	// Files are the collected candidates, digest not yet computed.
	Files []types.FileRecord

	// Unreadable lists paths that could not be read during traversal.
	Unreadable []types.ScanError

	// DirsScanned is the number of directories entered.
	DirsScanned int64

	// FilesScanned is the number of regular files examined.
	FilesScanned int64

	// HardlinksSkipped counts files sharing an inode with an already
	// collected file.
	HardlinksSkipped int64
}

// Scanner walks a directory tree collecting duplicate candidates.
type Scanner struct {
	opts     Options
	globs    []glob.Glob
	root     string
	maxDepth int

	dirsScanned  atomic.Int64
	filesScanned atomic.Int64
	currentPath  atomic.Value
	lastProgress atomic.Int64

	files   []types.FileRecord
	filesMu sync.Mutex

	unreadable   []types.ScanError
	unreadableMu sync.Mutex

	// seenInodes tracks (device, inode) pairs so hardlinked names count as
	// one file.
	seenInodes   map[inodeKey]struct{}
	seenInodesMu sync.Mutex
	hardlinks    atomic.Int64
}

type inodeKey struct {
	dev uint64
	ino uint64
}

// New creates a Scanner with the given options. Invalid glob patterns in
// Exclude are reported immediately.
func New(opts Options) (*Scanner, error) {
	_ = opts.Validate()

	s := &Scanner{
		opts:       opts,
		seenInodes: make(map[inodeKey]struct{}),
	}
	s.currentPath.Store("")

	for _, pattern := range opts.Exclude {
		g, err := glob.Compile(pattern, filepath.Separator)
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		s.globs = append(s.globs, g)
	}

	return s, nil
}

// Scan walks the tree and returns collected candidates. It blocks until
// traversal completes or ctx is cancelled; on cancellation ctx.Err() is
// returned and the partial result discarded.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	root, err := s.validateRoot()
	if err != nil {
		return nil, err
	}
	s.root = root
	s.maxDepth = s.opts.MaxDepth

	s.currentPath.Store(root)
	s.reportProgressForce()

	conf := fastwalk.Config{
		Follow: false, // never follow symlinks; cycles must not recurse
	}

	walkErr := fastwalk.Walk(&conf, root, s.walkFunc(ctx))
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, ctx.Err()
		}
		return nil, walkErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.reportProgressForce()

	return &Result{
		Files:            s.files,
		Unreadable:       s.unreadable,
		DirsScanned:      s.dirsScanned.Load(),
		FilesScanned:     s.filesScanned.Load(),
		HardlinksSkipped: s.hardlinks.Load(),
	}, nil
}

// validateRoot resolves the root path and verifies it is a readable
// directory.
func (s *Scanner) validateRoot() (string, error) {
	root, err := filepath.Abs(s.opts.Root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidRoot, s.opts.Root, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s: not a directory", ErrInvalidRoot, root)
	}
	if f, err := os.Open(root); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	} else {
		_ = f.Close()
	}

	return root, nil
}

// walkFunc returns the fastwalk callback. Cancellation is checked at each
// entry; per-path errors are collected and never abort the walk.
func (s *Scanner) walkFunc(ctx context.Context) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			s.addUnreadable(path, err)
			return nil
		}

		if s.isExcluded(path) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.maxDepth > 0 && s.depthOf(path) >= s.maxDepth {
				return fastwalk.SkipDir
			}
			s.dirsScanned.Add(1)
			s.currentPath.Store(path)
			s.reportProgress()
			return nil
		}

		if d.Type().IsRegular() {
			s.processFile(path, d)
		}

		return nil
	}
}

// processFile records a regular file meeting the size threshold.
func (s *Scanner) processFile(path string, d fs.DirEntry) {
	info, err := d.Info()
	if err != nil {
		s.addUnreadable(path, err)
		return
	}

	s.filesScanned.Add(1)

	if info.Size() < s.opts.MinSize {
		return
	}

	if dev, ino, ok := fileIdentity(info); ok {
		key := inodeKey{dev: dev, ino: ino}
		s.seenInodesMu.Lock()
		_, seen := s.seenInodes[key]
		if !seen {
			s.seenInodes[key] = struct{}{}
		}
		s.seenInodesMu.Unlock()
		if seen {
			s.hardlinks.Add(1)
			return
		}
	}

	rec := types.FileRecord{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}

	s.filesMu.Lock()
	s.files = append(s.files, rec)
	s.filesMu.Unlock()

	s.currentPath.Store(path)
	s.reportProgress()
}

// depthOf returns how many levels below the root the path sits.
func (s *Scanner) depthOf(path string) int {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// isExcluded checks a path against all exclusion globs.
func (s *Scanner) isExcluded(path string) bool {
	if len(s.globs) == 0 {
		return false
	}
	base := filepath.Base(path)
	for _, g := range s.globs {
		if g.Match(path) || g.Match(base) {
			return true
		}
	}
	return false
}

// addUnreadable records a per-path error thread-safely.
func (s *Scanner) addUnreadable(path string, err error) {
	s.unreadableMu.Lock()
	s.unreadable = append(s.unreadable, types.ScanError{
		Path:  path,
		Error: err.Error(),
	})
	s.unreadableMu.Unlock()
}

// reportProgress calls the progress callback, throttled to every 10ms.
func (s *Scanner) reportProgress() {
	if s.opts.OnProgress == nil {
		return
	}

	now := time.Now().UnixMilli()
	last := s.lastProgress.Load()
	if now-last < 10 {
		return
	}
	if !s.lastProgress.CompareAndSwap(last, now) {
		return
	}

	s.sendProgress()
}

// reportProgressForce bypasses the throttle for start/end transitions.
func (s *Scanner) reportProgressForce() {
	if s.opts.OnProgress == nil {
		return
	}
	s.lastProgress.Store(time.Now().UnixMilli())
	s.sendProgress()
}

func (s *Scanner) sendProgress() {
	currentPath, _ := s.currentPath.Load().(string)

	s.opts.OnProgress(types.ScanProgress{
		DirsScanned:  s.dirsScanned.Load(),
		FilesScanned: s.filesScanned.Load(),
		CurrentPath:  currentPath,
	})
}
