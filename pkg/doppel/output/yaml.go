package output

import (
	"bytes"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlOutput represents the full YAML output structure.
type yamlOutput struct {
	Groups []yamlGroup `yaml:"groups"`
	Stats  yamlStats   `yaml:"stats"`
	Meta   yamlMeta    `yaml:"meta"`
}

// yamlGroup represents a duplicate group in YAML output.
type yamlGroup struct {
	Digest      string     `yaml:"digest"`
	Size        int64      `yaml:"size"`
	SizeHuman   string     `yaml:"size_human"`
	Wasted      int64      `yaml:"wasted"`
	WastedHuman string     `yaml:"wasted_human"`
	Files       []yamlFile `yaml:"files"`
}

// yamlFile represents a group member in YAML output.
type yamlFile struct {
	Path      string    `yaml:"path"`
	Size      int64     `yaml:"size"`
	SizeHuman string    `yaml:"size_human"`
	ModTime   time.Time `yaml:"mod_time,omitempty"`
}

// yamlStats represents detection statistics in YAML output.
type yamlStats struct {
	DirsScanned  int64  `yaml:"dirs_scanned"`
	FilesScanned int64  `yaml:"files_scanned"`
	FilesHashed  int64  `yaml:"files_hashed"`
	BytesHashed  int64  `yaml:"bytes_hashed"`
	CacheHits    int64  `yaml:"cache_hits"`
	Duration     string `yaml:"duration"`
}

// yamlMeta represents metadata in YAML output.
type yamlMeta struct {
	Source         string   `yaml:"source"`
	TotalGroups    int      `yaml:"total_groups"`
	DuplicateFiles int      `yaml:"duplicate_files"`
	WastedBytes    int64    `yaml:"wasted_bytes"`
	Warnings       []string `yaml:"warnings,omitempty"`
}

// YAMLFormatter formats output as YAML.
// It produces the same structure as JSONFormatter but in YAML format.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	output := f.buildOutput(r)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(output); err != nil {
		return err
	}
	return encoder.Close()
}

// buildOutput converts Result to the YAML output structure.
func (f *YAMLFormatter) buildOutput(r *Result) yamlOutput {
	groups := make([]yamlGroup, len(r.Groups))
	for i, g := range r.Groups {
		files := make([]yamlFile, len(g.Files))
		for j, file := range g.Files {
			files[j] = yamlFile{
				Path:      file.Path,
				Size:      file.Size,
				SizeHuman: file.SizeHuman,
				ModTime:   file.ModTime,
			}
		}
		groups[i] = yamlGroup{
			Digest:      g.Digest,
			Size:        g.Size,
			SizeHuman:   g.SizeHuman,
			Wasted:      g.Wasted,
			WastedHuman: g.WastedHuman,
			Files:       files,
		}
	}

	stats := yamlStats{
		DirsScanned:  r.Stats.DirsScanned,
		FilesScanned: r.Stats.FilesScanned,
		FilesHashed:  r.Stats.FilesHashed,
		BytesHashed:  r.Stats.BytesHashed,
		CacheHits:    r.Stats.CacheHits,
		Duration:     formatDurationString(r.Stats.Duration),
	}

	meta := yamlMeta{
		Source:         r.Source,
		TotalGroups:    r.TotalGroups,
		DuplicateFiles: r.DuplicateFiles,
		WastedBytes:    r.WastedBytes,
		Warnings:       r.Warnings,
	}

	return yamlOutput{
		Groups: groups,
		Stats:  stats,
		Meta:   meta,
	}
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
