package io

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crawlytics/dashgeom/pkg/engine"
)

const snapshotJSON = `{
  "captured_at": "2026-08-22T06:00:00Z",
  "records": [
    {
      "source_id": "newswire",
      "discovered": 1000,
      "fetched": 900,
      "extracted": 850,
      "written": 700,
      "filter_breakdown": {"duplicate_filter": 100, "too_short": 50},
      "length_samples": [120, 4300, 880],
      "success_rate": 0.9,
      "extraction_rate": 0.94,
      "quality_rate": 0.82,
      "throughput": 12.5
    }
  ]
}`

const snapshotYAML = `captured_at: 2026-08-22T06:00:00Z
records:
  - source_id: newswire
    discovered: 1000
    fetched: 900
    extracted: 850
    written: 700
    filter_breakdown:
      duplicate_filter: 100
    length_samples: [120, 4300]
    success_rate: 0.9
    extraction_rate: 0.94
    quality_rate: 0.82
    throughput: 12.5
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestImportSnapshotJSON(t *testing.T) {
	path := writeTemp(t, "snapshot.json", snapshotJSON)

	snap, err := ImportSnapshot(path)
	if err != nil {
		t.Fatalf("ImportSnapshot() error: %v", err)
	}

	if len(snap.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(snap.Records))
	}
	r := snap.Records[0]
	if r.SourceID != "newswire" {
		t.Errorf("SourceID = %q, want %q", r.SourceID, "newswire")
	}
	if r.Discovered != 1000 || r.Written != 700 {
		t.Errorf("counters = %d/%d, want 1000/700", r.Discovered, r.Written)
	}
	if r.FilterBreakdown["duplicate_filter"] != 100 {
		t.Errorf("filter_breakdown[duplicate_filter] = %d, want 100", r.FilterBreakdown["duplicate_filter"])
	}
	want := time.Date(2026, 8, 22, 6, 0, 0, 0, time.UTC)
	if !snap.CapturedAt.Equal(want) {
		t.Errorf("CapturedAt = %v, want %v", snap.CapturedAt, want)
	}
}

func TestImportSnapshotYAML(t *testing.T) {
	for _, name := range []string{"snapshot.yaml", "snapshot.yml"} {
		t.Run(name, func(t *testing.T) {
			path := writeTemp(t, name, snapshotYAML)

			snap, err := ImportSnapshot(path)
			if err != nil {
				t.Fatalf("ImportSnapshot() error: %v", err)
			}

			if len(snap.Records) != 1 {
				t.Fatalf("got %d records, want 1", len(snap.Records))
			}
			r := snap.Records[0]
			if r.Discovered != 1000 || r.Fetched != 900 {
				t.Errorf("counters = %d/%d, want 1000/900", r.Discovered, r.Fetched)
			}
			if r.Throughput != 12.5 {
				t.Errorf("Throughput = %v, want 12.5", r.Throughput)
			}
			// YAML decoders hand unquoted timestamps over as time.Time.
			if snap.CapturedAt.IsZero() {
				t.Error("CapturedAt should survive YAML decoding")
			}
		})
	}
}

func TestImportSnapshotNoRecords(t *testing.T) {
	path := writeTemp(t, "empty.json", `{"captured_at": "2026-08-22T06:00:00Z"}`)

	_, err := ImportSnapshot(path)
	if err == nil {
		t.Fatal("ImportSnapshot() should reject a document without records")
	}
	if !strings.Contains(err.Error(), "no records") {
		t.Errorf("error = %v, should mention missing records", err)
	}
}

func TestImportSnapshotMalformed(t *testing.T) {
	path := writeTemp(t, "broken.json", `{"records": [`)

	if _, err := ImportSnapshot(path); err == nil {
		t.Fatal("ImportSnapshot() should fail on malformed JSON")
	}
}

func TestImportSnapshotMissingFile(t *testing.T) {
	_, err := ImportSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("ImportSnapshot() should fail on a missing file")
	}
}

func TestResultRoundTrip(t *testing.T) {
	snapPath := writeTemp(t, "snapshot.json", snapshotJSON)
	snap, err := ImportSnapshot(snapPath)
	if err != nil {
		t.Fatalf("ImportSnapshot() error: %v", err)
	}

	result, err := engine.Compute(snap, engine.Options{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}

	outPath := filepath.Join(t.TempDir(), "snapshot.layout.json")
	if err := ExportResult(result, outPath); err != nil {
		t.Fatalf("ExportResult() error: %v", err)
	}

	got, err := ImportResult(outPath)
	if err != nil {
		t.Fatalf("ImportResult() error: %v", err)
	}

	if got.SnapshotHash != result.SnapshotHash {
		t.Errorf("SnapshotHash = %q, want %q", got.SnapshotHash, result.SnapshotHash)
	}
	if got.Flow == nil || got.Flow.Discovered != result.Flow.Discovered {
		t.Error("flow model should survive the round trip")
	}
	if got.Sankey == nil || got.Ridge == nil || got.Bullet == nil {
		t.Error("chart geometry should survive the round trip")
	}
}
