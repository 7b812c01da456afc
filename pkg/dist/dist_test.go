package dist

import (
	"strings"
	"testing"

	"github.com/crawlytics/dashgeom/pkg/metrics"
)

func TestAnalyzeScenario(t *testing.T) {
	bySource := map[string][]float64{
		"alpha": {50, 150, 1500, 15000},
		"beta":  {200, 2000},
		"gamma": {},
	}

	models, err := Analyze(bySource, nil)
	if err != nil {
		t.Fatalf("Analyze() = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("len(models) = %d, want 2 (empty source omitted)", len(models))
	}
	if models[0].SourceID != "alpha" || models[1].SourceID != "beta" {
		t.Errorf("sources = %q, %q, want alpha, beta", models[0].SourceID, models[1].SourceID)
	}

	sum := func(counts []int) int {
		total := 0
		for _, c := range counts {
			total += c
		}
		return total
	}
	if got := sum(models[0].Counts); got != 4 {
		t.Errorf("alpha counts sum = %d, want 4", got)
	}
	if got := sum(models[1].Counts); got != 2 {
		t.Errorf("beta counts sum = %d, want 2", got)
	}

	// Default decade edges: [10,100) has 50; [100,1000) has 150 and 200.
	if models[0].Counts[0] != 1 || models[0].Counts[1] != 1 || models[0].Counts[2] != 1 || models[0].Counts[3] != 1 {
		t.Errorf("alpha counts = %v, want one sample per decade", models[0].Counts)
	}

	st := models[0].Stats
	if st.Count != 4 {
		t.Errorf("alpha count = %d, want 4", st.Count)
	}
	if st.Median != 825 {
		t.Errorf("alpha median = %v, want 825", st.Median)
	}
	if st.Q1 != 125 {
		t.Errorf("alpha q1 = %v, want 125", st.Q1)
	}
	if st.Min != 50 || st.Max != 15000 {
		t.Errorf("alpha min/max = %v/%v, want 50/15000", st.Min, st.Max)
	}
}

func TestAnalyzeDropsAndClamps(t *testing.T) {
	edges := []float64{10, 100, 1000}
	models, err := Analyze(map[string][]float64{
		"s": {5, 9.99, 10, 50, 999, 1000, 50000},
	}, edges)
	if err != nil {
		t.Fatalf("Analyze() = %v", err)
	}
	if len(models) != 1 {
		t.Fatalf("len(models) = %d, want 1", len(models))
	}
	m := models[0]

	// 5 and 9.99 fall below the first edge; 1000 and 50000 clamp into the
	// final bin.
	if m.Counts[0] != 2 || m.Counts[1] != 3 {
		t.Errorf("counts = %v, want [2 3]", m.Counts)
	}
	if m.Stats.Count != 5 {
		t.Errorf("count = %d, want 5", m.Stats.Count)
	}
	if m.Stats.Max != 50000 {
		t.Errorf("max = %v, want 50000 (clamping never coarsens stats)", m.Stats.Max)
	}

	var densitySum float64
	for _, d := range m.Densities {
		if d < 0 || d > 1 {
			t.Errorf("density %v outside [0,1]", d)
		}
		densitySum += d
	}
	if densitySum != 1 {
		t.Errorf("densities sum = %v, want 1", densitySum)
	}
}

func TestAnalyzeAllBelowRange(t *testing.T) {
	models, err := Analyze(map[string][]float64{"s": {1, 2, 3}}, []float64{10, 100})
	if err != nil {
		t.Fatalf("Analyze() = %v", err)
	}
	if len(models) != 0 {
		t.Errorf("len(models) = %d, want 0 when every sample is below range", len(models))
	}
}

func TestAnalyzeRejectsBadEdges(t *testing.T) {
	for _, edges := range [][]float64{{10}, {100, 10}, {10, 10, 100}} {
		if _, err := Analyze(map[string][]float64{"s": {50}}, edges); err == nil {
			t.Errorf("Analyze(edges=%v) succeeded, want error", edges)
		}
	}
}

func TestFromRecords(t *testing.T) {
	records := []metrics.Record{
		{SourceID: "a", LengthSamples: []float64{50, 150}},
		{SourceID: "a", LengthSamples: []float64{1500, 15000}},
		{SourceID: "b", LengthSamples: []float64{200, 2000}},
		{SourceID: "", LengthSamples: []float64{999}},
	}

	models, err := FromRecords(records, nil)
	if err != nil {
		t.Fatalf("FromRecords() = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("len(models) = %d, want 2", len(models))
	}
	if models[0].Stats.Count != 4 {
		t.Errorf("pooled count for a = %d, want 4", models[0].Stats.Count)
	}
}

func TestCheck(t *testing.T) {
	good := Model{
		SourceID:  "s",
		Edges:     []float64{10, 100, 1000},
		Counts:    []int{2, 1},
		Densities: []float64{2.0 / 3, 1.0 / 3},
		Stats:     Stats{Count: 3},
	}
	if err := Check(good); err != nil {
		t.Errorf("Check(good) = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(Model) Model
		want   string
	}{
		{"missing source", func(m Model) Model { m.SourceID = ""; return m }, "source id"},
		{"count mismatch", func(m Model) Model { m.Counts = []int{2}; return m }, "counts"},
		{"density mismatch", func(m Model) Model { m.Densities = []float64{1}; return m }, "densities"},
		{"negative count", func(m Model) Model { m.Counts = []int{-1, 4}; return m }, "negative"},
		{"stats mismatch", func(m Model) Model { m.Stats.Count = 5; return m }, "stats report"},
		{"density range", func(m Model) Model { m.Densities = []float64{1.5, -0.5}; return m }, "outside"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.mutate(good))
			if err == nil {
				t.Fatal("Check() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
