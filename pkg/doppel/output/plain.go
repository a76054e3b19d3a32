package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter formats output as simple tab-separated groups.
// It produces plain text output suitable for scripting and piping.
// No colors or styling are applied. Groups are separated by blank lines.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	// Use tabwriter for aligned columns
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	for i, g := range r.Groups {
		if i > 0 {
			if _, err := tw.Write([]byte("\n")); err != nil {
				return err
			}
		}
		header := fmt.Sprintf("# %s x%d %s\n", g.SizeHuman, len(g.Files), g.Digest)
		if _, err := tw.Write([]byte(header)); err != nil {
			return err
		}
		for _, file := range g.Files {
			if _, err := tw.Write([]byte(file.Path + "\n")); err != nil {
				return err
			}
		}
	}

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
