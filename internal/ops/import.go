package ops

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/sadopc/disklens/internal/model"
)

// Import reads either a lossless scan result document or an ncdu export,
// picking the parser from the first JSON token.
func Import(path string) (*model.ScanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open import file: %w", err)
	}
	trimmed := trimLeadingWhitespace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return parseNcdu(data)
	}
	return DecodeResult(bufio.NewReader(bytes.NewReader(data)))
}

// ImportNcdu imports a tree from ncdu-compatible JSON format. Aggregates
// are rebuilt from the leaves; entries flagged read_error become scan
// errors.
func ImportNcdu(path string) (*model.ScanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open import file: %w", err)
	}
	return parseNcdu(data)
}

func parseNcdu(data []byte) (*model.ScanResult, error) {
	// Parse the top-level array: [version, minor, header, rootDir]
	var raw []jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if len(raw) < 4 {
		return nil, fmt.Errorf("invalid ncdu format: expected at least 4 elements, got %d", len(raw))
	}

	var header ncduHeader
	if err := json.Unmarshal(raw[2], &header); err != nil {
		return nil, fmt.Errorf("cannot parse header: %w", err)
	}

	// raw[3] is the root directory array
	var errs []model.ScanError
	root, err := parseDir(raw[3], "", &errs)
	if err != nil {
		return nil, fmt.Errorf("cannot parse root directory: %w", err)
	}

	var ts time.Time
	if header.Timestamp > 0 {
		ts = time.Unix(header.Timestamp, 0)
	}
	return model.NewScanResult(root, root.Path, 0, errs, ts), nil
}

func parseDir(data jsoniter.RawMessage, parentPath string, errs *[]model.ScanError) (*model.Node, error) {
	// A directory is an array: [{dir_entry}, child1, child2, ...]
	var elements []jsoniter.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("directory is not an array: %w", err)
	}

	if len(elements) == 0 {
		return nil, fmt.Errorf("empty directory array")
	}

	// First element is the directory entry object
	var entry ncduEntry
	if err := json.Unmarshal(elements[0], &entry); err != nil {
		return nil, fmt.Errorf("cannot parse directory entry: %w", err)
	}

	dirPath, name := entryPath(parentPath, entry.Name)
	if entry.Err {
		*errs = append(*errs, model.ScanError{Path: dirPath, Kind: model.ErrIO, Message: "read error in imported tree"})
	}

	// Remaining elements are children (objects = files, arrays = subdirs)
	children := make([]*model.Node, 0, len(elements)-1)
	for i := 1; i < len(elements); i++ {
		child := elements[i]

		// Check if it starts with '[' (directory) or '{' (file)
		trimmed := trimLeadingWhitespace(child)
		if len(trimmed) == 0 {
			continue
		}

		switch trimmed[0] {
		case '[':
			subDir, err := parseDir(child, dirPath, errs)
			if err != nil {
				return nil, err
			}
			children = append(children, subDir)
		case '{':
			var fileEntry ncduEntry
			if err := json.Unmarshal(child, &fileEntry); err != nil {
				return nil, fmt.Errorf("cannot parse file entry: %w", err)
			}
			children = append(children, leafFromEntry(dirPath, fileEntry))
		default:
			return nil, fmt.Errorf("unexpected child element at index %d", i)
		}
	}

	dir := model.NewDirectory(dirPath, name, children)
	if entry.Mtime > 0 {
		dir.Modified = time.Unix(entry.Mtime, 0)
	}
	dir.Inode = entry.Ino
	return dir, nil
}

func leafFromEntry(dirPath string, e ncduEntry) *model.Node {
	p := filepath.Join(dirPath, e.Name)
	var mtime time.Time
	if e.Mtime > 0 {
		mtime = time.Unix(e.Mtime, 0)
	}
	switch {
	case e.Symlink:
		return model.NewSymlink(p, e.Name, e.Asize, mtime, e.Ino)
	case e.NotReg:
		return model.NewOther(p, e.Name, mtime, e.Ino)
	default:
		return model.NewFile(p, e.Name, e.Asize, mtime, e.Ino)
	}
}

// entryPath joins an entry name onto its parent's path. The root entry's
// name is already a full path.
func entryPath(parentPath, entryName string) (string, string) {
	if parentPath == "" {
		name := filepath.Base(entryName)
		if name == string(filepath.Separator) || name == "." {
			name = entryName
		}
		return entryName, name
	}
	return filepath.Join(parentPath, entryName), entryName
}

func trimLeadingWhitespace(data []byte) []byte {
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return data[i:]
		}
	}
	return nil
}
