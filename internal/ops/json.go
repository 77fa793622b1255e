package ops

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sadopc/disklens/internal/model"
)

// resultFormat identifies a lossless ScanResult document.
const (
	resultFormat        = "disklens-scan"
	resultFormatVersion = 1
)

type resultDoc struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
	*model.ScanResult
}

// ExportJSON writes result as a lossless JSON document. path "-" means
// standard output.
func ExportJSON(result *model.ScanResult, path string) error {
	if result == nil || result.Root == nil {
		return fmt.Errorf("export: empty scan result")
	}
	return writeTarget(path, func(w io.Writer) error {
		return EncodeResult(w, result)
	})
}

// EncodeResult writes the JSON document for result to w.
func EncodeResult(w io.Writer, result *model.ScanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resultDoc{
		Format:     resultFormat,
		Version:    resultFormatVersion,
		ScanResult: result,
	})
}

// ImportJSON reads a document written by ExportJSON.
func ImportJSON(path string) (*model.ScanResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open import file: %w", err)
	}
	defer f.Close()
	return DecodeResult(bufio.NewReader(f))
}

// DecodeResult reads one JSON scan result document from r.
func DecodeResult(r io.Reader) (*model.ScanResult, error) {
	doc := resultDoc{ScanResult: &model.ScanResult{}}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if doc.Format != resultFormat {
		return nil, fmt.Errorf("not a scan result document (format %q)", doc.Format)
	}
	if doc.Version != resultFormatVersion {
		return nil, fmt.Errorf("unsupported scan result version %d", doc.Version)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("scan result has no root")
	}
	return doc.ScanResult, nil
}
