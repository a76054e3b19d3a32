package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doppelkit/doppel/pkg/doppel/types"
)

// sampleResult builds a Result with two groups for formatter tests.
func sampleResult() *Result {
	return &Result{
		Groups: []GroupInfo{
			{
				Digest:      "aaaa1111bbbb2222cccc3333dddd4444aaaa1111bbbb2222cccc3333dddd4444",
				Size:        1048576,
				SizeHuman:   "1.0 MiB",
				Wasted:      1048576,
				WastedHuman: "1.0 MiB",
				Files: []FileInfo{
					{Path: "/data/a.bin", Size: 1048576, SizeHuman: "1.0 MiB"},
					{Path: "/data/b.bin", Size: 1048576, SizeHuman: "1.0 MiB"},
				},
			},
			{
				Digest:      "eeee5555ffff6666aaaa7777bbbb8888eeee5555ffff6666aaaa7777bbbb8888",
				Size:        2048,
				SizeHuman:   "2.0 KiB",
				Wasted:      4096,
				WastedHuman: "4.0 KiB",
				Files: []FileInfo{
					{Path: "/data/x.txt", Size: 2048, SizeHuman: "2.0 KiB"},
					{Path: "/data/y.txt", Size: 2048, SizeHuman: "2.0 KiB"},
					{Path: "/data/z.txt", Size: 2048, SizeHuman: "2.0 KiB"},
				},
			},
		},
		Stats: ScanStats{
			DirsScanned:  12,
			FilesScanned: 340,
			FilesHashed:  5,
			BytesHashed:  1054720,
			CacheHits:    2,
			Duration:     2 * time.Second,
		},
		Source:         "/data",
		TotalGroups:    2,
		DuplicateFiles: 5,
		WastedBytes:    1052672,
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("test", func() Formatter { return &PlainFormatter{} })

	f, err := reg.Get("test")
	require.NoError(t, err)
	assert.NotNil(t, f)

	_, err = reg.Get("nonexistent")
	assert.Error(t, err)

	assert.Equal(t, []string{"test"}, reg.Available())
}

func TestDefaultRegistryHasAllFormatters(t *testing.T) {
	available := Available()

	for _, name := range []string{"pretty", "plain", "json", "jsonl", "yaml"} {
		assert.Contains(t, available, name, "formatter %q not registered", name)
	}
}

func TestGetReturnsFreshInstances(t *testing.T) {
	f1, err := Get("json")
	require.NoError(t, err)
	f2, err := Get("json")
	require.NoError(t, err)
	assert.NotSame(t, f1, f2)
}

func TestBuild(t *testing.T) {
	modTime := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var digest types.Digest
	digest[0] = 0xab

	res := &types.ScanResult{
		Groups: []types.DuplicateGroup{
			{
				Digest: digest,
				Size:   4096,
				Files: []types.FileRecord{
					{Path: "/a", Size: 4096, ModTime: modTime, Digest: digest},
					{Path: "/b", Size: 4096, ModTime: modTime, Digest: digest},
				},
			},
		},
		Unreadable: []types.ScanError{
			{Path: "/locked", Error: "permission denied"},
		},
		DirsScanned:  3,
		FilesScanned: 10,
		FilesHashed:  2,
		BytesHashed:  8192,
		Elapsed:      time.Second,
	}

	r := Build("/root", res)

	require.Len(t, r.Groups, 1)
	g := r.Groups[0]
	assert.Equal(t, digest.String(), g.Digest)
	assert.Equal(t, int64(4096), g.Size)
	assert.Equal(t, "4.0 KiB", g.SizeHuman)
	assert.Equal(t, int64(4096), g.Wasted)
	require.Len(t, g.Files, 2)
	assert.Equal(t, "/a", g.Files[0].Path)
	assert.Equal(t, modTime, g.Files[0].ModTime)

	assert.Equal(t, "/root", r.Source)
	assert.Equal(t, 1, r.TotalGroups)
	assert.Equal(t, 2, r.DuplicateFiles)
	assert.Equal(t, int64(4096), r.WastedBytes)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "/locked")
	assert.Contains(t, r.Warnings[0], "permission denied")

	assert.Equal(t, int64(3), r.Stats.DirsScanned)
	assert.Equal(t, int64(10), r.Stats.FilesScanned)
	assert.Equal(t, int64(2), r.Stats.FilesHashed)
	assert.Equal(t, int64(8192), r.Stats.BytesHashed)
}

func TestAllFormattersHandleEmptyResult(t *testing.T) {
	empty := &Result{Source: "/empty"}

	for _, name := range Available() {
		f, err := Get(name)
		require.NoError(t, err)

		var buf bytes.Buffer
		err = f.Format(&buf, empty)
		assert.NoError(t, err, "formatter %q failed on empty result", name)
	}
}
