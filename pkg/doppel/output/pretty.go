package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	w.WriteString(f.formatGroups(r))

	w.WriteString(f.formatFooter(r))

	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r.Warnings))
	}

	return nil
}

// formatHeader builds the header box with scan metadata.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	sourceLabel := LabelStyle.Render("Source:")
	sourceValue := ValueStyle.Render(r.Source)
	lines = append(lines, fmt.Sprintf("%s %s", sourceLabel, sourceValue))

	scannedLabel := LabelStyle.Render("Scanned:")
	scannedValue := ValueStyle.Render(fmt.Sprintf("%d files in %s",
		r.Stats.FilesScanned, formatDuration(r.Stats.Duration)))

	hashedLabel := LabelStyle.Render("Hashed:")
	hashedValue := ValueStyle.Render(fmt.Sprintf("%d files (%s)",
		r.Stats.FilesHashed, humanize.IBytes(uint64(r.Stats.BytesHashed))))

	info := fmt.Sprintf("%s %s  %s %s", scannedLabel, scannedValue, hashedLabel, hashedValue)
	if r.Stats.CacheHits > 0 {
		cacheLabel := LabelStyle.Render("Cache:")
		cacheValue := MutedStyle.Render(fmt.Sprintf("%d hits", r.Stats.CacheHits))
		info += fmt.Sprintf("  %s %s", cacheLabel, cacheValue)
	}
	lines = append(lines, info)

	content := strings.Join(lines, "\n")
	return HeaderBox.Render(content)
}

// formatGroups builds the per-group listing.
func (f *PrettyFormatter) formatGroups(r *Result) string {
	if len(r.Groups) == 0 {
		return MutedStyle.Render("  No duplicate files found\n")
	}

	var sb strings.Builder

	for i, g := range r.Groups {
		title := TitleStyle.Render(fmt.Sprintf("Group %d", i+1))
		size := SizeStyle.Render(g.SizeHuman)
		digest := DigestStyle.Render(shortDigest(g.Digest))
		wasted := WastedStyle.Render(g.WastedHuman + " reclaimable")
		sb.WriteString(fmt.Sprintf("%s  %s x%d  %s  %s\n", title, size, len(g.Files), digest, wasted))

		for _, file := range g.Files {
			sb.WriteString("  " + PathStyle.Render(file.Path) + "\n")
		}

		if i < len(r.Groups)-1 {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// formatFooter builds the footer box with summary information.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	var parts []string

	groupsLabel := LabelStyle.Render("Groups:")
	groupsValue := ValueStyle.Render(fmt.Sprintf("%d", r.TotalGroups))
	parts = append(parts, fmt.Sprintf("%s %s", groupsLabel, groupsValue))

	filesLabel := LabelStyle.Render("Duplicates:")
	filesValue := ValueStyle.Render(fmt.Sprintf("%d", r.DuplicateFiles))
	parts = append(parts, fmt.Sprintf("%s %s", filesLabel, filesValue))

	wastedLabel := LabelStyle.Render("Reclaimable:")
	wastedValue := WastedStyle.Render(humanize.IBytes(uint64(r.WastedBytes)))
	parts = append(parts, fmt.Sprintf("%s %s", wastedLabel, wastedValue))

	hint := MutedStyle.Render("Use -o plain for unformatted output")
	parts = append(parts, hint)

	content := strings.Join(parts, "  ")
	return FooterBox.Render(content)
}

// formatWarnings builds a warning block.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	titleStyle := WarningStyle.Bold(true)
	sb.WriteString(titleStyle.Render("Warnings:"))
	sb.WriteString("\n")

	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}

	return sb.String()
}

// shortDigest abbreviates a hex digest for display.
func shortDigest(digest string) string {
	if len(digest) <= 12 {
		return digest
	}
	return digest[:12]
}

// formatDuration formats a time.Duration as a human-friendly string.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
