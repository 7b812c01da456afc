// Package dist bins per-source sample-length populations into the
// distribution models behind the ridge chart. Binning is histogram-based;
// summary statistics are computed on the unbinned samples so they stay exact
// regardless of bin width.
package dist

import (
	"fmt"
	"maps"
	"slices"

	"github.com/crawlytics/dashgeom/pkg/metrics"
	"github.com/crawlytics/dashgeom/pkg/policy"
	"github.com/crawlytics/dashgeom/pkg/stats"
)

// Model is one source's binned sample-length distribution.
type Model struct {
	SourceID string `json:"source_id" bson:"source_id"`

	// Edges are the ascending bin edges; Counts and Densities have
	// len(Edges)-1 entries.
	Edges     []float64 `json:"edges" bson:"edges"`
	Counts    []int     `json:"counts" bson:"counts"`
	Densities []float64 `json:"densities" bson:"densities"`

	Stats Stats `json:"stats" bson:"stats"`
}

// Stats summarizes the qualifying (unbinned) samples of one source.
type Stats struct {
	Mean   float64 `json:"mean" bson:"mean"`
	Median float64 `json:"median" bson:"median"`
	Q1     float64 `json:"q1" bson:"q1"`
	Q3     float64 `json:"q3" bson:"q3"`
	Min    float64 `json:"min" bson:"min"`
	Max    float64 `json:"max" bson:"max"`
	Count  int     `json:"count" bson:"count"`
}

// ValidateEdges checks that edges are usable for binning: at least two
// elements, strictly ascending.
func ValidateEdges(edges []float64) error {
	if len(edges) < 2 {
		return fmt.Errorf("need at least 2 bin edges, got %d", len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return fmt.Errorf("bin edges must ascend: edge %d (%v) ≤ edge %d (%v)",
				i, edges[i], i-1, edges[i-1])
		}
	}
	return nil
}

// Analyze bins each source's raw samples against the shared edges. Nil edges
// fall back to the policy defaults. Sources with zero qualifying samples are
// omitted, never zero-filled. Output is sorted by source ID.
func Analyze(bySource map[string][]float64, edges []float64) ([]Model, error) {
	if len(edges) == 0 {
		edges = policy.DefaultHistogramEdges
	}
	if err := ValidateEdges(edges); err != nil {
		return nil, err
	}

	var models []Model
	for _, id := range slices.Sorted(maps.Keys(bySource)) {
		if m, ok := analyzeSource(id, bySource[id], edges); ok {
			models = append(models, m)
		}
	}
	return models, nil
}

// FromRecords pools each source's length samples across its records and
// analyzes the pooled populations.
func FromRecords(records []metrics.Record, edges []float64) ([]Model, error) {
	bySource := make(map[string][]float64)
	for _, r := range records {
		if r.SourceID == "" || len(r.LengthSamples) == 0 {
			continue
		}
		bySource[r.SourceID] = append(bySource[r.SourceID], r.LengthSamples...)
	}
	return Analyze(bySource, edges)
}

// Check validates an externally supplied distribution so it can be adopted
// in place of a raw-sample analysis.
func Check(m Model) error {
	if m.SourceID == "" {
		return fmt.Errorf("distribution is missing a source id")
	}
	if err := ValidateEdges(m.Edges); err != nil {
		return err
	}
	bins := len(m.Edges) - 1
	if len(m.Counts) != bins {
		return fmt.Errorf("%s: got %d counts for %d bins", m.SourceID, len(m.Counts), bins)
	}
	if len(m.Densities) != bins {
		return fmt.Errorf("%s: got %d densities for %d bins", m.SourceID, len(m.Densities), bins)
	}
	total := 0
	for i, c := range m.Counts {
		if c < 0 {
			return fmt.Errorf("%s: negative count in bin %d", m.SourceID, i)
		}
		total += c
	}
	if total != m.Stats.Count {
		return fmt.Errorf("%s: counts sum to %d but stats report %d samples", m.SourceID, total, m.Stats.Count)
	}
	for i, d := range m.Densities {
		if d < 0 || d > 1 {
			return fmt.Errorf("%s: density %v in bin %d outside [0,1]", m.SourceID, d, i)
		}
	}
	return nil
}

// analyzeSource bins one source. It reports false when no sample qualifies.
func analyzeSource(id string, samples, edges []float64) (Model, bool) {
	bins := len(edges) - 1
	counts := make([]int, bins)

	// Samples below the first edge are dropped; samples at or beyond the
	// last edge are clamped into the final bin.
	var qualifying []float64
	for _, v := range samples {
		if v < edges[0] {
			continue
		}
		qualifying = append(qualifying, v)
		counts[binFor(v, edges)]++
	}
	if len(qualifying) == 0 {
		return Model{}, false
	}

	densities := make([]float64, bins)
	for i, c := range counts {
		densities[i] = float64(c) / float64(len(qualifying))
	}

	slices.Sort(qualifying)
	return Model{
		SourceID:  id,
		Edges:     append([]float64(nil), edges...),
		Counts:    counts,
		Densities: densities,
		Stats: Stats{
			Mean:   stats.Mean(qualifying),
			Median: stats.Median(qualifying),
			Q1:     stats.Quantile(qualifying, 0.25),
			Q3:     stats.Quantile(qualifying, 0.75),
			Min:    stats.Min(qualifying),
			Max:    stats.Max(qualifying),
			Count:  len(qualifying),
		},
	}, true
}

func binFor(v float64, edges []float64) int {
	for i := 0; i < len(edges)-1; i++ {
		if v >= edges[i] && v < edges[i+1] {
			return i
		}
	}
	return len(edges) - 2
}
