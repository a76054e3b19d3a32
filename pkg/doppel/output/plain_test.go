package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainFormatter_Format(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, sampleResult())
	require.NoError(t, err)

	out := buf.String()

	assert.Contains(t, out, "/data/a.bin")
	assert.Contains(t, out, "/data/b.bin")
	assert.Contains(t, out, "/data/z.txt")
	assert.Contains(t, out, "1.0 MiB")

	// Group headers carry the full digest for scripting.
	assert.Contains(t, out, "aaaa1111bbbb2222cccc3333dddd4444aaaa1111bbbb2222cccc3333dddd4444")

	// No ANSI escape codes in plain output.
	assert.NotContains(t, out, "\x1b[")

	// Groups are separated by a blank line.
	assert.Equal(t, 1, strings.Count(out, "\n\n"))
}

func TestPlainFormatter_EmptyResult(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Result{})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}
