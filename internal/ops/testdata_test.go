package ops

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/sadopc/disklens/internal/model"
)

// sampleResult builds /root with a.txt (12), link (7) and sub/b.txt (30),
// plus one recorded error on sub.
func sampleResult() *model.ScanResult {
	mtime := time.Unix(1700000000, 0)
	sub := model.NewDirectory("/root/sub", "sub", []*model.Node{
		model.NewFile("/root/sub/b.txt", "b.txt", 30, mtime, 42),
	})
	sub.Modified = mtime
	root := model.NewDirectory("/root", "root", []*model.Node{
		model.NewFile("/root/a.txt", "a.txt", 12, mtime, 41),
		model.NewSymlink("/root/link", "link", 7, mtime, 43),
		sub,
	})
	root.Modified = mtime
	errs := []model.ScanError{{Path: "/root/sub", Kind: model.ErrPermissionDenied, Message: "denied"}}
	return model.NewScanResult(root, "/root", 1500*time.Millisecond, errs, mtime)
}

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		data, _ := io.ReadAll(r)
		done <- data
	}()

	fnErr := fn()
	closeErr := w.Close()
	os.Stdout = oldStdout

	if fnErr != nil {
		t.Fatalf("export returned error: %v", fnErr)
	}
	if closeErr != nil {
		t.Fatalf("closing pipe writer failed: %v", closeErr)
	}
	return string(<-done)
}
