package output

import (
	"bytes"
	"encoding/json"
	"time"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Groups []jsonGroup `json:"groups"`
	Stats  jsonStats   `json:"stats"`
	Meta   jsonMeta    `json:"meta"`
}

// jsonGroup represents a duplicate group in JSON output.
type jsonGroup struct {
	Digest      string     `json:"digest"`
	Size        int64      `json:"size"`
	SizeHuman   string     `json:"size_human"`
	Wasted      int64      `json:"wasted"`
	WastedHuman string     `json:"wasted_human"`
	Files       []jsonFile `json:"files"`
}

// jsonFile represents a group member in JSON output.
type jsonFile struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"size_human"`
	ModTime   time.Time `json:"mod_time,omitempty"`
}

// jsonStats represents detection statistics in JSON output.
type jsonStats struct {
	DirsScanned  int64  `json:"dirs_scanned"`
	FilesScanned int64  `json:"files_scanned"`
	FilesHashed  int64  `json:"files_hashed"`
	BytesHashed  int64  `json:"bytes_hashed"`
	CacheHits    int64  `json:"cache_hits"`
	Duration     string `json:"duration"`
}

// jsonMeta represents metadata in JSON output.
type jsonMeta struct {
	Source         string   `json:"source"`
	TotalGroups    int      `json:"total_groups"`
	DuplicateFiles int      `json:"duplicate_files"`
	WastedBytes    int64    `json:"wasted_bytes"`
	Warnings       []string `json:"warnings,omitempty"`
}

// JSONFormatter formats output as a single indented JSON object.
// It produces a complete JSON document with groups, stats, and meta sections.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	output := f.buildOutput(r)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// buildOutput converts Result to the JSON output structure.
func (f *JSONFormatter) buildOutput(r *Result) jsonOutput {
	groups := make([]jsonGroup, len(r.Groups))
	for i, g := range r.Groups {
		groups[i] = buildJSONGroup(g)
	}

	stats := jsonStats{
		DirsScanned:  r.Stats.DirsScanned,
		FilesScanned: r.Stats.FilesScanned,
		FilesHashed:  r.Stats.FilesHashed,
		BytesHashed:  r.Stats.BytesHashed,
		CacheHits:    r.Stats.CacheHits,
		Duration:     formatDurationString(r.Stats.Duration),
	}

	meta := jsonMeta{
		Source:         r.Source,
		TotalGroups:    r.TotalGroups,
		DuplicateFiles: r.DuplicateFiles,
		WastedBytes:    r.WastedBytes,
		Warnings:       r.Warnings,
	}

	return jsonOutput{
		Groups: groups,
		Stats:  stats,
		Meta:   meta,
	}
}

// buildJSONGroup converts a GroupInfo to its JSON representation.
func buildJSONGroup(g GroupInfo) jsonGroup {
	files := make([]jsonFile, len(g.Files))
	for i, file := range g.Files {
		files[i] = jsonFile{
			Path:      file.Path,
			Size:      file.Size,
			SizeHuman: file.SizeHuman,
			ModTime:   file.ModTime,
		}
	}
	return jsonGroup{
		Digest:      g.Digest,
		Size:        g.Size,
		SizeHuman:   g.SizeHuman,
		Wasted:      g.Wasted,
		WastedHuman: g.WastedHuman,
		Files:       files,
	}
}

// formatDurationString formats a duration as a string for JSON output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter formats output as newline-delimited JSON (one group per
// line). Each duplicate group is written as a compact JSON object on its
// own line. This format is suitable for streaming processing with tools
// like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, g := range r.Groups {
		data, err := json.Marshal(buildJSONGroup(g))
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
