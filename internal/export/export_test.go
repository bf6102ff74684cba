package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procman/internal/proc"
)

var sample = []proc.Record{
	{PID: 1, Name: "init", Owner: "root", CPUPercent: 0.5, MemoryKB: 1200},
	{PID: 42, Name: "editor", Owner: "alice", CPUPercent: 12.25, MemoryKB: 80_000},
}

func TestEncodeText(t *testing.T) {
	b, err := Encode(sample, FormatText)
	require.NoError(t, err)
	assert.Equal(t, "1: init\n42: editor\n", string(b))
}

func TestEncodeJSONFields(t *testing.T) {
	b, err := Encode(sample, FormatJSON)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	require.Len(t, got, 2)
	assert.Equal(t, map[string]any{
		"pid":               float64(42),
		"name":              "editor",
		"cpu_usage_percent": 12.25,
		"memory_kb":         float64(80_000),
		"owner":             "alice",
	}, got[1])
}

func TestEncodeJSONEmptyIsArray(t *testing.T) {
	b, err := Encode(nil, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(b))
}

func TestEncodeProm(t *testing.T) {
	b, err := Encode(sample, FormatProm)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, "# TYPE procman_process_cpu_usage_percent gauge")
	assert.Contains(t, out, `procman_process_memory_kb{name="editor",owner="alice",pid="42"} 80000`)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Encode(sample, Format("xml"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWriteFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "procs.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, WriteFile(sample, FormatText, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1: init\n42: editor\n", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover %s", e.Name())
	}
}

func TestWriteFileMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "procs.json")
	err := WriteFile(sample, FormatJSON, path)

	var exportErr *ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, path, exportErr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
