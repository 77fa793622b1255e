package ops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportJSON_RoundTripIsLossless(t *testing.T) {
	want := sampleResult()
	path := filepath.Join(t.TempDir(), "scan.json")

	require.NoError(t, ExportJSON(want, path))
	got, err := ImportJSON(path)
	require.NoError(t, err)

	assert.Equal(t, want.ScanPath, got.ScanPath)
	assert.Equal(t, want.TotalSize, got.TotalSize)
	assert.Equal(t, want.TotalFiles, got.TotalFiles)
	assert.Equal(t, want.TotalDirs, got.TotalDirs)
	assert.Equal(t, want.Duration, got.Duration)
	assert.Equal(t, want.Errors, got.Errors)
	assert.True(t, want.Timestamp.Equal(got.Timestamp))

	require.Len(t, got.Root.Children, 3)
	link := got.Root.Child("link")
	require.NotNil(t, link)
	assert.Equal(t, want.Root.Child("link").Type, link.Type)
	assert.Equal(t, uint64(43), link.Inode)
	sub := got.Root.Child("sub")
	require.NotNil(t, sub)
	assert.Equal(t, int64(30), sub.Size)
	assert.Equal(t, int64(1), sub.DirCount)
	assert.True(t, want.Root.Modified.Equal(got.Root.Modified))
}

func TestExportJSON_Stdout(t *testing.T) {
	out := captureStdout(t, func() error { return ExportJSON(sampleResult(), Stdout) })

	assert.Contains(t, out, `"disklens-scan"`)
	assert.Contains(t, out, `"scan_path"`)
	assert.Contains(t, out, `"permission_denied"`)

	got, err := DecodeResult(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, int64(49), got.TotalSize)
}

func TestExportJSON_OverwriteExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, ExportJSON(sampleResult(), path))
	got, err := ImportJSON(path)
	require.NoError(t, err)
	assert.Equal(t, "/root", got.ScanPath)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files left behind")
}

func TestExportJSON_RejectsEmptyResult(t *testing.T) {
	assert.Error(t, ExportJSON(nil, filepath.Join(t.TempDir(), "x.json")))
}

func TestDecodeResult_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"wrong format", `{"format":"other","version":1,"root":{}}`},
		{"wrong version", `{"format":"disklens-scan","version":9,"root":{}}`},
		{"no root", `{"format":"disklens-scan","version":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResult(strings.NewReader(tt.data))
			assert.Error(t, err)
		})
	}
}
