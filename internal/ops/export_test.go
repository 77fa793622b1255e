package ops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
)

func TestExportNcdu_Stdout(t *testing.T) {
	out := strings.TrimSpace(captureStdout(t, func() error {
		return ExportNcdu(sampleResult(), Stdout, "test-version")
	}))

	if !strings.Contains(out, `"progver":"test-version"`) {
		t.Fatalf("expected version in export output, got:\n%s", out)
	}
	if !strings.Contains(out, `"name":"a.txt"`) {
		t.Fatalf("expected file entry in export output, got:\n%s", out)
	}
	if !strings.Contains(out, `"name":"/root"`) {
		t.Fatalf("expected root entry to carry the full path, got:\n%s", out)
	}

	var raw []jsoniter.RawMessage
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		t.Fatalf("export output is not valid JSON: %v\n%s", err, out)
	}
	if len(raw) < 4 {
		t.Fatalf("expected ncdu format array with >=4 elements, got %d", len(raw))
	}
}

func TestExportNcdu_Flags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.json")
	if err := ExportNcdu(sampleResult(), path, "test"); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"name":"sub","asize":0,"mtime":1700000000,"read_error":true`) {
		t.Fatalf("expected read_error flag on sub in export: %s", data)
	}
	if !strings.Contains(string(data), `"symlink":true`) {
		t.Fatalf("expected symlink flag in export: %s", data)
	}
}

func TestExportNcdu_RoundTrip(t *testing.T) {
	want := sampleResult()
	path := filepath.Join(t.TempDir(), "scan.ncdu.json")
	if err := ExportNcdu(want, path, "test"); err != nil {
		t.Fatalf("export: %v", err)
	}

	got, err := ImportNcdu(path)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if got.TotalSize != want.TotalSize || got.TotalFiles != want.TotalFiles || got.TotalDirs != want.TotalDirs {
		t.Fatalf("totals differ: got %d/%d/%d want %d/%d/%d",
			got.TotalSize, got.TotalFiles, got.TotalDirs, want.TotalSize, want.TotalFiles, want.TotalDirs)
	}
	if got.ScanPath != "/root" {
		t.Fatalf("ScanPath = %q", got.ScanPath)
	}
	if b := got.Root.Child("sub"); b == nil || b.Child("b.txt") == nil || b.Child("b.txt").Path != filepath.Join("/root", "sub", "b.txt") {
		t.Fatalf("expected sub/b.txt with rebuilt path, got %+v", b)
	}
	if len(got.Errors) != 1 || got.Errors[0].Path != "/root/sub" {
		t.Fatalf("expected read_error to become a scan error, got %v", got.Errors)
	}
}
