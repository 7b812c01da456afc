package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/crawlytics/dashgeom/pkg/engine"
)

// WriteResult encodes a layout result as indented JSON and writes it to w.
// The output is the same document the HTTP API returns and the dashboard
// renderer consumes. This format can be re-imported with [ReadResult] for
// round-trip processing.
func WriteResult(res *engine.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportResult writes a layout result to a JSON file at path.
// This is a convenience wrapper around [WriteResult] for file-based output.
func ExportResult(res *engine.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteResult(res, f)
}

// ReadResult decodes a layout result from r. ReadResult does not close r.
func ReadResult(r io.Reader) (*engine.Result, error) {
	var res engine.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &res, nil
}

// ImportResult reads a layout result file at path. The error wraps the
// underlying cause with the file path for context.
func ImportResult(path string) (*engine.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadResult(f)
}
