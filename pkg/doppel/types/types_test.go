package types

import (
	"strings"
	"testing"
	"time"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1024", 1024, false},
		{"0", 0, false},
		{"512B", 512, false},
		{"100K", 100 * KiB, false},
		{"100KiB", 100 * KiB, false},
		{"50M", 50 * MiB, false},
		{"50MB", 50 * MiB, false},
		{"2G", 2 * GiB, false},
		{"1T", 1 * TiB, false},
		{"1.5M", int64(1.5 * float64(MiB)), false},
		{"  10K  ", 10 * KiB, false},
		{"", 0, true},
		{"abc", 0, true},
		{"-5M", 0, true},
		{"10X", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseSize(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1024, "1.0 KiB"},
		{1536 * 1024, "1.5 MiB"},
	}

	for _, tt := range tests {
		got := FormatSize(tt.bytes)
		if got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestDigestRoundTrip(t *testing.T) {
	var d Digest
	for i := range d {
		d[i] = byte(i)
	}

	s := d.String()
	if len(s) != DigestSize*2 {
		t.Fatalf("digest string length = %d, want %d", len(s), DigestSize*2)
	}

	parsed, err := ParseDigest(s)
	if err != nil {
		t.Fatalf("ParseDigest error: %v", err)
	}
	if parsed != d {
		t.Error("parsed digest does not match original")
	}
}

func TestParseDigestInvalid(t *testing.T) {
	if _, err := ParseDigest("zz"); err == nil {
		t.Error("expected error for non-hex input")
	}
	if _, err := ParseDigest("abcd"); err == nil {
		t.Error("expected error for short input")
	}
}

func TestDigestIsZero(t *testing.T) {
	var d Digest
	if !d.IsZero() {
		t.Error("zero digest should report IsZero")
	}
	d[0] = 1
	if d.IsZero() {
		t.Error("non-zero digest should not report IsZero")
	}
}

func TestDuplicateGroupWasted(t *testing.T) {
	g := DuplicateGroup{
		Size: 100,
		Files: []FileRecord{
			{Path: "/a", Size: 100},
			{Path: "/b", Size: 100},
			{Path: "/c", Size: 100},
		},
	}
	if got := g.Wasted(); got != 200 {
		t.Errorf("Wasted() = %d, want 200", got)
	}

	single := DuplicateGroup{Size: 100, Files: []FileRecord{{Path: "/a"}}}
	if got := single.Wasted(); got != 0 {
		t.Errorf("Wasted() for single member = %d, want 0", got)
	}
}

func TestScanResultTotals(t *testing.T) {
	r := ScanResult{
		Groups: []DuplicateGroup{
			{Size: 10, Files: []FileRecord{{Path: "/a"}, {Path: "/b"}}},
			{Size: 5, Files: []FileRecord{{Path: "/c"}, {Path: "/d"}, {Path: "/e"}}},
		},
	}

	if got := r.DuplicateFiles(); got != 5 {
		t.Errorf("DuplicateFiles() = %d, want 5", got)
	}
	if got := r.WastedBytes(); got != 10+10 {
		t.Errorf("WastedBytes() = %d, want 20", got)
	}
}

func TestFileRecordHumanSize(t *testing.T) {
	f := FileRecord{Path: "/x", Size: 2 * MiB, ModTime: time.Now()}
	if got := f.HumanSize(); !strings.Contains(got, "MiB") {
		t.Errorf("HumanSize() = %q, want MiB units", got)
	}
}
