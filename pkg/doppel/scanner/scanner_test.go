package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/doppelkit/doppel/pkg/doppel/types"
)

// writeFile creates a file with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// createTestTree builds a small fixture tree:
//
//	root/
//	  a.txt        ("x" * 10)
//	  b.txt        ("x" * 10)
//	  c.txt        ("y" * 10)
//	  d.txt        ("z" * 5)
//	  empty
//	  sub/
//	    e.txt      ("x" * 10)
func createTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	writeFile(t, filepath.Join(root, "a.txt"), strings.Repeat("x", 10))
	writeFile(t, filepath.Join(root, "b.txt"), strings.Repeat("x", 10))
	writeFile(t, filepath.Join(root, "c.txt"), strings.Repeat("y", 10))
	writeFile(t, filepath.Join(root, "d.txt"), strings.Repeat("z", 5))
	writeFile(t, filepath.Join(root, "empty"), "")
	writeFile(t, filepath.Join(root, "sub", "e.txt"), strings.Repeat("x", 10))

	return root
}

func scanTree(t *testing.T, opts Options) *Result {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return result
}

func TestScanCollectsRegularFiles(t *testing.T) {
	root := createTestTree(t)

	result := scanTree(t, Options{Root: root})

	// empty is below the 1-byte default threshold; 5 candidates remain.
	if len(result.Files) != 5 {
		t.Errorf("expected 5 candidates, got %d", len(result.Files))
		for _, f := range result.Files {
			t.Logf("  %s (%d bytes)", f.Path, f.Size)
		}
	}

	if result.FilesScanned != 6 {
		t.Errorf("FilesScanned = %d, want 6", result.FilesScanned)
	}

	for _, f := range result.Files {
		if !filepath.IsAbs(f.Path) {
			t.Errorf("path should be absolute: %s", f.Path)
		}
		if f.ModTime.IsZero() {
			t.Errorf("ModTime should be set for %s", f.Path)
		}
		if !f.Digest.IsZero() {
			t.Errorf("digest should not be computed during traversal: %s", f.Path)
		}
	}
}

func TestScanMinSize(t *testing.T) {
	root := createTestTree(t)

	result := scanTree(t, Options{Root: root, MinSize: 6})

	// d.txt (5 bytes) and empty are excluded entirely.
	if len(result.Files) != 4 {
		t.Errorf("expected 4 candidates with MinSize=6, got %d", len(result.Files))
	}
	for _, f := range result.Files {
		if f.Size < 6 {
			t.Errorf("file below threshold collected: %s (%d bytes)", f.Path, f.Size)
		}
	}
}

func TestScanExcludeGlobs(t *testing.T) {
	root := createTestTree(t)

	result := scanTree(t, Options{Root: root, Exclude: []string{"*.txt"}})

	for _, f := range result.Files {
		if filepath.Ext(f.Path) == ".txt" {
			t.Errorf("excluded file collected: %s", f.Path)
		}
	}
}

func TestScanExcludeDirectory(t *testing.T) {
	root := createTestTree(t)

	result := scanTree(t, Options{Root: root, Exclude: []string{"sub"}})

	for _, f := range result.Files {
		if strings.Contains(f.Path, string(filepath.Separator)+"sub"+string(filepath.Separator)) {
			t.Errorf("file under excluded dir collected: %s", f.Path)
		}
	}
}

func TestScanInvalidGlob(t *testing.T) {
	if _, err := New(Options{Root: ".", Exclude: []string{"[unclosed"}}); err == nil {
		t.Error("expected error for invalid glob pattern")
	}
}

func TestScanMaxDepth(t *testing.T) {
	root := createTestTree(t)

	result := scanTree(t, Options{Root: root, MaxDepth: 1})

	// sub/e.txt sits at depth 2 and must be skipped.
	for _, f := range result.Files {
		if filepath.Base(f.Path) == "e.txt" {
			t.Errorf("file beyond depth limit collected: %s", f.Path)
		}
	}
	if len(result.Files) != 4 {
		t.Errorf("expected 4 candidates at depth 1, got %d", len(result.Files))
	}
}

func TestScanSymlinkCycleTerminates(t *testing.T) {
	root := createTestTree(t)

	// Symlink loop: root/sub/loop -> root. Traversal must terminate and the
	// link target's files must not be double counted.
	if err := os.Symlink(root, filepath.Join(root, "sub", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	result := scanTree(t, Options{Root: root})

	if result.FilesScanned != 6 {
		t.Errorf("FilesScanned = %d, want 6 (symlink must not be followed)", result.FilesScanned)
	}
}

func TestScanSymlinkToFileIgnored(t *testing.T) {
	root := createTestTree(t)

	if err := os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "alias")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	result := scanTree(t, Options{Root: root})

	for _, f := range result.Files {
		if filepath.Base(f.Path) == "alias" {
			t.Error("symlink collected as a candidate")
		}
	}
}

func TestScanHardlinksCountOnce(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hardlink identity not tracked on windows")
	}
	root := createTestTree(t)

	if err := os.Link(filepath.Join(root, "a.txt"), filepath.Join(root, "a-link.txt")); err != nil {
		t.Skipf("hardlinks unavailable: %v", err)
	}

	result := scanTree(t, Options{Root: root})

	if result.HardlinksSkipped != 1 {
		t.Errorf("HardlinksSkipped = %d, want 1", result.HardlinksSkipped)
	}
	if len(result.Files) != 5 {
		t.Errorf("expected 5 candidates (hardlink counted once), got %d", len(result.Files))
	}
}

func TestScanCancellation(t *testing.T) {
	root := createTestTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(Options{Root: root})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := s.Scan(ctx)
	if err == nil {
		t.Fatal("expected error from cancelled scan")
	}
	if result != nil {
		t.Error("cancelled scan must not return a partial result")
	}
}

func TestScanInvalidRoot(t *testing.T) {
	tests := []struct {
		name string
		root func(t *testing.T) string
	}{
		{
			name: "missing",
			root: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
		},
		{
			name: "regular file",
			root: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "file")
				writeFile(t, path, "content")
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(Options{Root: tt.root(t)})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			_, err = s.Scan(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidRoot) {
				t.Errorf("error should wrap ErrInvalidRoot, got %v", err)
			}
		})
	}
}

func TestScanUnreadableDirCollected(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("skipping permission test as root")
	}

	root := createTestTree(t)
	noRead := filepath.Join(root, "noread")
	if err := os.Mkdir(noRead, 0o000); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	defer func() { _ = os.Chmod(noRead, 0o755) }()

	result := scanTree(t, Options{Root: root})

	if len(result.Unreadable) == 0 {
		t.Error("expected unreadable path to be collected")
	}
	// Siblings still scanned.
	if len(result.Files) != 5 {
		t.Errorf("expected 5 candidates despite unreadable dir, got %d", len(result.Files))
	}
}

func TestScanProgressCallback(t *testing.T) {
	root := createTestTree(t)

	var calls atomic.Int32
	scanTree(t, Options{
		Root: root,
		OnProgress: func(_ types.ScanProgress) {
			calls.Add(1)
		},
	})

	// Forced reports at start and end guarantee at least two calls.
	if calls.Load() < 2 {
		t.Errorf("expected at least 2 progress calls, got %d", calls.Load())
	}
}
