package ops

import (
	"io"
	"time"

	"github.com/sadopc/disklens/internal/model"
)

// ncdu-compatible JSON format:
// [1, 0, {"progname":"disklens","progver":"1.0","timestamp":1234567890},
//   [{"name":"/path","asize":123,"dsize":456},
//     {"name":"file1","asize":10,"dsize":20},
//     [{"name":"subdir","asize":30,"dsize":40},
//       {"name":"file2","asize":5,"dsize":10}
//     ]
//   ]
// ]

type ncduHeader struct {
	Progname  string `json:"progname"`
	Progver   string `json:"progver"`
	Timestamp int64  `json:"timestamp"`
}

type ncduEntry struct {
	Name    string `json:"name"`
	Asize   int64  `json:"asize"`
	Dsize   int64  `json:"dsize,omitempty"`
	Ino     uint64 `json:"ino,omitempty"`
	Mtime   int64  `json:"mtime,omitempty"`
	Err     bool   `json:"read_error,omitempty"`
	Symlink bool   `json:"symlink,omitempty"`
	NotReg  bool   `json:"notreg,omitempty"`
}

// ExportNcdu writes the tree of result in ncdu's JSON export format.
// Directories that failed to read are flagged with read_error.
func ExportNcdu(result *model.ScanResult, path string, version string) error {
	return writeTarget(path, func(w io.Writer) error {
		return exportNcduToWriter(result, w, version)
	})
}

func exportNcduToWriter(result *model.ScanResult, out io.Writer, version string) error {
	ew := &errWriter{w: out}

	// Write opening bracket and header
	ew.WriteString("[1, 0, ")
	if version == "" {
		version = "dev"
	}
	ts := result.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	header := ncduHeader{
		Progname:  "disklens",
		Progver:   version,
		Timestamp: ts.Unix(),
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return err
	}
	_, _ = ew.Write(headerJSON)
	ew.WriteString(",\n")

	failed := make(map[string]bool, len(result.Errors))
	for _, e := range result.Errors {
		failed[e.Path] = true
	}

	// The root entry carries the full path, as ncdu expects.
	writeDir(ew, result.Root, result.Root.Path, failed)

	ew.WriteString("\n]\n")
	return ew.err
}

func ncduEntryFor(n *model.Node, name string, failed map[string]bool) ncduEntry {
	entry := ncduEntry{
		Name:    name,
		Asize:   n.Size,
		Dsize:   n.SizeOnDisk,
		Ino:     n.Inode,
		Err:     failed[n.Path],
		Symlink: n.Type == model.TypeSymlink,
		NotReg:  n.Type == model.TypeOther || n.Type == model.TypeSymlink,
	}
	if !n.Modified.IsZero() {
		entry.Mtime = n.Modified.Unix()
	}
	if n.IsDir() {
		// ncdu recomputes directory totals from the children.
		entry.Asize = 0
		entry.Dsize = 0
	}
	return entry
}

func writeDir(ew *errWriter, dir *model.Node, name string, failed map[string]bool) {
	if ew.err != nil {
		return
	}

	// Open array for directory
	ew.WriteString("[")
	data, err := json.Marshal(ncduEntryFor(dir, name, failed))
	if err != nil {
		ew.err = err
		return
	}
	_, _ = ew.Write(data)

	for _, child := range dir.Children {
		if ew.err != nil {
			return
		}
		ew.WriteString(",\n")

		if child.IsDir() {
			writeDir(ew, child, child.Name, failed)
			continue
		}
		data, err := json.Marshal(ncduEntryFor(child, child.Name, failed))
		if err != nil {
			ew.err = err
			return
		}
		_, _ = ew.Write(data)
	}

	ew.WriteString("]")
}
