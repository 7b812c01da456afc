package policy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestDefaultValues(t *testing.T) {
	p := Default()
	if p.BulletTarget != 80 {
		t.Errorf("BulletTarget = %v, want 80", p.BulletTarget)
	}
	if len(p.ControlBands) != 4 || p.ControlBands[3].Max != 100 {
		t.Errorf("ControlBands = %v, want 4 bands ending at 100", p.ControlBands)
	}
	if len(p.HistogramEdges) != 6 || p.HistogramEdges[0] != 10 || p.HistogramEdges[5] != 1000000 {
		t.Errorf("HistogramEdges = %v", p.HistogramEdges)
	}
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	doc := `
bullet_target = 85.0
histogram_edges = [1.0, 10.0, 100.0]

[source_targets]
"site-a" = 95.0
`
	p, err := Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if p.BulletTarget != 85 {
		t.Errorf("BulletTarget = %v, want 85", p.BulletTarget)
	}
	if len(p.HistogramEdges) != 3 {
		t.Errorf("HistogramEdges = %v, want 3 edges", p.HistogramEdges)
	}
	if len(p.ControlBands) != 4 {
		t.Errorf("ControlBands = %v, want defaults kept", p.ControlBands)
	}
	if got := p.TargetFor("site-a"); got != 95 {
		t.Errorf("TargetFor(site-a) = %v, want 95", got)
	}
	if got := p.TargetFor("site-b"); got != 85 {
		t.Errorf("TargetFor(site-b) = %v, want 85", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"descending bands", "[[control_bands]]\nmax = 70.0\nlabel = \"a\"\n[[control_bands]]\nmax = 40.0\nlabel = \"b\"\n", "control_bands"},
		{"unlabelled band", "[[control_bands]]\nmax = 100.0\nlabel = \"\"\n", "label"},
		{"too few edges", "histogram_edges = [10.0]", "histogram_edges"},
		{"descending edges", "histogram_edges = [100.0, 10.0]", "ascend"},
		{"negative target", "bullet_target = -1.0", "bullet_target"},
		{"bad overlap", "ridge_overlap = 1.5", "ridge_overlap"},
		{"malformed toml", "bullet_target = =", "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.toml")
	if err := os.WriteFile(path, []byte("sankey_node_width = 24.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() = %v", err)
	}
	if p.SankeyNodeWidth != 24 {
		t.Errorf("SankeyNodeWidth = %v, want 24", p.SankeyNodeWidth)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadFile() on missing file succeeded, want error")
	}
}
