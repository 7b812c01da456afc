package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crawlytics/dashgeom/pkg/metrics"
)

// ReadSnapshot decodes a JSON snapshot document from r.
//
// The input must be a JSON object with a "records" array; see the package
// documentation for the full document shape. Decoding goes through the
// tolerant coercions in [metrics.SnapshotFromDocument], so a malformed field
// degrades to its zero value instead of rejecting the whole snapshot.
//
// ReadSnapshot returns an error if:
//   - The JSON is malformed
//   - The document contains no record objects
//
// The returned snapshot is independent of r and can be modified safely after
// ReadSnapshot returns. ReadSnapshot does not close r.
func ReadSnapshot(r io.Reader) (metrics.Snapshot, error) {
	var doc map[string]any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return metrics.Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	return snapshotFromDoc(doc)
}

// ReadSnapshotYAML decodes a YAML snapshot document from r. The document
// shape, coercion rules, and error conditions match [ReadSnapshot].
func ReadSnapshotYAML(r io.Reader) (metrics.Snapshot, error) {
	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return metrics.Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	return snapshotFromDoc(doc)
}

// snapshotFromDoc runs the document coercions and rejects empty snapshots.
func snapshotFromDoc(doc map[string]any) (metrics.Snapshot, error) {
	snap := metrics.SnapshotFromDocument(doc)
	if len(snap.Records) == 0 {
		return metrics.Snapshot{}, fmt.Errorf("document has no records")
	}
	return snap, nil
}

// ImportSnapshot reads a snapshot file at path and returns the decoded
// snapshot.
//
// The decoder is picked by file extension: .yaml and .yml decode as YAML,
// everything else as JSON. If the file cannot be opened, or if decoding
// fails, ImportSnapshot returns an error wrapping the underlying cause with
// the file path for context.
func ImportSnapshot(path string) (metrics.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var snap metrics.Snapshot
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		snap, err = ReadSnapshotYAML(f)
	default:
		snap, err = ReadSnapshot(f)
	}
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return snap, nil
}
