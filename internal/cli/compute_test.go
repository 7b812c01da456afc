package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crawlytics/dashgeom/pkg/io"
)

const testSnapshotJSON = `{
  "captured_at": "2026-08-22T06:00:00Z",
  "records": [
    {
      "source_id": "newswire",
      "discovered": 1000, "fetched": 900, "extracted": 850, "written": 700,
      "filter_breakdown": {"duplicate_filter": 100, "too_short": 50},
      "length_samples": [120, 4300, 880],
      "success_rate": 0.9, "extraction_rate": 0.94, "quality_rate": 0.82,
      "throughput": 12.5
    },
    {
      "source_id": "forum",
      "discovered": 400, "fetched": 300, "extracted": 260, "written": 200,
      "filter_breakdown": {"duplicate_filter": 40},
      "length_samples": [200, 2000],
      "success_rate": 0.75, "extraction_rate": 0.86, "quality_rate": 0.77,
      "throughput": 4.2
    }
  ]
}`

func writeTestSnapshot(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// runCLI executes the root command with args against an isolated cache dir.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestComputeCommand(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeTestSnapshot(t, dir, "snapshot.json", testSnapshotJSON)
	outPath := filepath.Join(dir, "out.layout.json")

	if err := runCLI(t, "compute", snapPath, "-o", outPath); err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	result, err := io.ImportResult(outPath)
	if err != nil {
		t.Fatalf("ImportResult() error: %v", err)
	}
	if result.Sankey == nil || result.Ridge == nil || result.Bullet == nil {
		t.Error("expected all three chart geometries")
	}
	if result.Stats.Sources != 2 {
		t.Errorf("Stats.Sources = %d, want 2", result.Stats.Sources)
	}
	if result.SnapshotHash == "" {
		t.Error("result should carry the snapshot hash")
	}
}

func TestComputeCommandDefaultOutputPath(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeTestSnapshot(t, dir, "snapshot.json", testSnapshotJSON)

	if err := runCLI(t, "compute", snapPath); err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "snapshot.layout.json")); err != nil {
		t.Errorf("default output file missing: %v", err)
	}
}

func TestComputeCommandChartSelection(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeTestSnapshot(t, dir, "snapshot.json", testSnapshotJSON)
	outPath := filepath.Join(dir, "out.layout.json")

	if err := runCLI(t, "compute", snapPath, "-o", outPath, "-t", "sankey"); err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	result, err := io.ImportResult(outPath)
	if err != nil {
		t.Fatalf("ImportResult() error: %v", err)
	}
	if result.Sankey == nil {
		t.Error("sankey geometry should be present")
	}
	if result.Ridge != nil || result.Bullet != nil {
		t.Error("unselected chart geometry should be absent")
	}
}

func TestComputeCommandInvalidChart(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeTestSnapshot(t, dir, "snapshot.json", testSnapshotJSON)

	err := runCLI(t, "compute", snapPath, "-t", "pie")
	if err == nil {
		t.Fatal("compute should reject unknown chart kinds")
	}
	if !strings.Contains(err.Error(), "invalid chart") {
		t.Errorf("error = %v, should mention the invalid chart", err)
	}
}

func TestComputeCommandZeroFrame(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeTestSnapshot(t, dir, "snapshot.json", testSnapshotJSON)

	if err := runCLI(t, "compute", snapPath, "--width", "0"); err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	// A frame without area yields no geometry, so nothing gets written.
	if _, err := os.Stat(filepath.Join(dir, "snapshot.layout.json")); !os.IsNotExist(err) {
		t.Error("zero frame should not produce an output file")
	}
}

func TestComputeCommandPolicyOverride(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeTestSnapshot(t, dir, "snapshot.json", testSnapshotJSON)
	polPath := writeTestSnapshot(t, dir, "policy.toml", "bullet_target = 95.0\n")
	outPath := filepath.Join(dir, "out.layout.json")

	if err := runCLI(t, "compute", snapPath, "-o", outPath, "--policy", polPath); err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	result, err := io.ImportResult(outPath)
	if err != nil {
		t.Fatalf("ImportResult() error: %v", err)
	}
	for _, s := range result.Scores {
		if s.Target != 95 {
			t.Errorf("score target for %s = %v, want 95", s.SourceID, s.Target)
		}
	}
}

func TestComputeCommandBadPolicy(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeTestSnapshot(t, dir, "snapshot.json", testSnapshotJSON)
	polPath := writeTestSnapshot(t, dir, "policy.toml", "bullet_target = -5.0\n")

	if err := runCLI(t, "compute", snapPath, "--policy", polPath); err == nil {
		t.Fatal("compute should reject an invalid policy file")
	}
}

func TestComputeCommandMissingSnapshot(t *testing.T) {
	if err := runCLI(t, "compute", filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("compute should fail on a missing snapshot file")
	}
}

func TestComputeCommandCachedRerun(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir := t.TempDir()
	snapPath := writeTestSnapshot(t, dir, "snapshot.json", testSnapshotJSON)
	outPath := filepath.Join(dir, "out.layout.json")

	c := New(&bytes.Buffer{}, LogInfo)
	for i := 0; i < 2; i++ {
		root := c.RootCommand()
		root.SetArgs([]string{"compute", snapPath, "-o", outPath})
		root.SetOut(&bytes.Buffer{})
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
	}

	result, err := io.ImportResult(outPath)
	if err != nil {
		t.Fatalf("ImportResult() error: %v", err)
	}
	if !result.CacheInfo.ResultHit {
		t.Error("second run should be served from the result cache")
	}
}

func TestListSnapshots(t *testing.T) {
	dir := t.TempDir()
	writeTestSnapshot(t, dir, "new.json", testSnapshotJSON)
	writeTestSnapshot(t, dir, "old.yaml", "captured_at: 2026-08-20T06:00:00Z\nrecords:\n  - source_id: forum\n    discovered: 10\n    written: 5\n")
	writeTestSnapshot(t, dir, "broken.json", "{")
	writeTestSnapshot(t, dir, "earlier.layout.json", "{}")
	writeTestSnapshot(t, dir, "notes.txt", "not a snapshot")

	choices, err := listSnapshots(dir)
	if err != nil {
		t.Fatalf("listSnapshots() error: %v", err)
	}

	if len(choices) != 3 {
		t.Fatalf("got %d choices, want 3 (layout outputs and non-snapshots skipped)", len(choices))
	}
	if choices[0].Name != "new.json" || choices[1].Name != "old.yaml" {
		t.Errorf("choices should sort newest first, got %s then %s", choices[0].Name, choices[1].Name)
	}
	if choices[0].Sources != 2 || choices[0].Records != 2 {
		t.Errorf("preview counts = %d sources / %d records, want 2/2", choices[0].Sources, choices[0].Records)
	}
	if choices[2].Err == nil {
		t.Error("undecodable file should carry its error")
	}
}
