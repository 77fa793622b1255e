package ops

import (
	"bufio"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/sadopc/disklens/internal/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Stdout is the export target that writes to standard output.
const Stdout = "-"

// writeTarget runs write against path. Stdout goes straight to os.Stdout;
// any other path is replaced atomically, so a failed export never leaves a
// partial file behind.
func writeTarget(path string, write func(w io.Writer) error) error {
	if path == Stdout {
		bw := bufio.NewWriterSize(os.Stdout, 64*1024)
		if err := write(bw); err != nil {
			return err
		}
		return bw.Flush()
	}
	return util.WriteFileAtomic(path, 0o644, write)
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops, avoiding verbose per-call checks.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) WriteString(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) Write(data []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(data)
	if err != nil {
		ew.err = err
	}
	return n, err
}
