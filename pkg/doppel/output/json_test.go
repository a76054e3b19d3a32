package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter_Format(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, sampleResult())
	require.NoError(t, err)

	var parsed jsonOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	require.Len(t, parsed.Groups, 2)
	assert.Equal(t, int64(1048576), parsed.Groups[0].Size)
	assert.Len(t, parsed.Groups[0].Files, 2)
	assert.Len(t, parsed.Groups[1].Files, 3)

	assert.Equal(t, int64(340), parsed.Stats.FilesScanned)
	assert.Equal(t, int64(5), parsed.Stats.FilesHashed)
	assert.Equal(t, "2s", parsed.Stats.Duration)

	assert.Equal(t, "/data", parsed.Meta.Source)
	assert.Equal(t, 2, parsed.Meta.TotalGroups)
	assert.Equal(t, 5, parsed.Meta.DuplicateFiles)
	assert.Equal(t, int64(1052672), parsed.Meta.WastedBytes)
}

func TestJSONFormatter_EmptyGroups(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Result{Source: "/empty"})
	require.NoError(t, err)

	var parsed jsonOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Empty(t, parsed.Groups)
	assert.Equal(t, "/empty", parsed.Meta.Source)
}

func TestJSONLFormatter_Format(t *testing.T) {
	formatter := &JSONLFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, sampleResult())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	for _, line := range lines {
		var g jsonGroup
		require.NoError(t, json.Unmarshal([]byte(line), &g))
		assert.NotEmpty(t, g.Digest)
		assert.NotEmpty(t, g.Files)
	}
}

func TestJSONLFormatter_EmptyResult(t *testing.T) {
	formatter := &JSONLFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Result{})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}
