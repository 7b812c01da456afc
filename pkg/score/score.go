// Package score turns per-source pipeline rates into the performance models
// behind the bullet scorecard.
package score

import (
	"maps"
	"slices"

	"github.com/crawlytics/dashgeom/pkg/metrics"
	"github.com/crawlytics/dashgeom/pkg/policy"
	"github.com/crawlytics/dashgeom/pkg/stats"
)

// Model is one source's performance scorecard entry. Performance and Quality
// are percentages in [0,100]; Throughput is items per minute.
type Model struct {
	SourceID    string  `json:"source_id" bson:"source_id"`
	Performance float64 `json:"performance" bson:"performance"`
	Quality     float64 `json:"quality" bson:"quality"`
	Throughput  float64 `json:"throughput" bson:"throughput"`
	Target      float64 `json:"target" bson:"target"`
}

// FromRecords scores every source in the record collection, sorted by source
// ID. A source with multiple records averages its rates and throughput
// across them. Performance is the mean of the three rates scaled to 100; an
// absent rate contributes 0 but still divides by three.
func FromRecords(records []metrics.Record, pol policy.Policy) []Model {
	grouped := make(map[string][]metrics.Record)
	for _, r := range records {
		if r.SourceID == "" {
			continue
		}
		grouped[r.SourceID] = append(grouped[r.SourceID], r)
	}

	models := make([]Model, 0, len(grouped))
	for _, id := range slices.Sorted(maps.Keys(grouped)) {
		models = append(models, scoreSource(id, grouped[id], pol))
	}
	return models
}

func scoreSource(id string, records []metrics.Record, pol policy.Policy) Model {
	var success, extraction, quality, throughput []float64
	for _, r := range records {
		success = append(success, clamp01(r.SuccessRate))
		extraction = append(extraction, clamp01(r.ExtractionRate))
		quality = append(quality, clamp01(r.QualityRate))
		if r.Throughput > 0 {
			throughput = append(throughput, r.Throughput)
		}
	}

	q := stats.Mean(quality)
	perf := stats.Mean([]float64{stats.Mean(success), stats.Mean(extraction), q})
	return Model{
		SourceID:    id,
		Performance: perf * 100,
		Quality:     q * 100,
		Throughput:  stats.Mean(throughput),
		Target:      pol.TargetFor(id),
	}
}

// Rates are documented in [0,1]; out-of-range input pins to the range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
