// Package metrics defines the pipeline snapshot model consumed by the layout
// engine: per-source execution records, the snapshot envelope, and tolerant
// decoding of loosely typed snapshot documents.
package metrics

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"time"
)

// =============================================================================
// Record - Per-Source Pipeline Execution Counters
// =============================================================================

// Record holds the execution counters one pipeline run reported for one
// source. Counts follow the item through the stage order discovered →
// fetched → extracted → written; FilterBreakdown attributes removed items to
// the filter that claimed them.
type Record struct {
	SourceID string `json:"source_id" bson:"source_id"`

	Discovered int `json:"discovered" bson:"discovered"`
	Fetched    int `json:"fetched" bson:"fetched"`
	Extracted  int `json:"extracted" bson:"extracted"`
	Written    int `json:"written" bson:"written"`

	// FilterBreakdown maps a filter reason (e.g. "duplicate_filter") to the
	// number of items it removed during this run.
	FilterBreakdown map[string]int `json:"filter_breakdown,omitempty" bson:"filter_breakdown,omitempty"`

	// LengthSamples are text lengths of items written during this run. The
	// collector bounds the sample count upstream.
	LengthSamples []float64 `json:"length_samples,omitempty" bson:"length_samples,omitempty"`

	// Rates are fractions in [0,1] as reported by the pipeline.
	SuccessRate    float64 `json:"success_rate" bson:"success_rate"`
	ExtractionRate float64 `json:"extraction_rate" bson:"extraction_rate"`
	QualityRate    float64 `json:"quality_rate" bson:"quality_rate"`

	// Throughput is items per minute for this run.
	Throughput float64 `json:"throughput" bson:"throughput"`
}

// =============================================================================
// Snapshot - Snapshot Envelope
// =============================================================================

// Snapshot is one periodic statistics capture: every record the collector
// emitted for the interval, plus the capture timestamp.
type Snapshot struct {
	CapturedAt time.Time `json:"captured_at" bson:"captured_at"`
	Records    []Record  `json:"records" bson:"records"`
}

// Hash returns the SHA-256 content hash of the snapshot as a 64-character
// hex string. Identical snapshots hash identically, which makes the hash
// usable as a cache and archive key.
func (s Snapshot) Hash() string {
	data, _ := json.Marshal(s)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Sources returns the distinct source IDs in the snapshot, sorted. Layout
// builders iterate sources in this order so output is deterministic.
func (s Snapshot) Sources() []string {
	seen := make(map[string]bool, len(s.Records))
	var ids []string
	for _, r := range s.Records {
		if r.SourceID == "" || seen[r.SourceID] {
			continue
		}
		seen[r.SourceID] = true
		ids = append(ids, r.SourceID)
	}
	slices.Sort(ids)
	return ids
}

// BySource groups the snapshot's records by source ID. Records without a
// source ID are skipped.
func (s Snapshot) BySource() map[string][]Record {
	out := make(map[string][]Record)
	for _, r := range s.Records {
		if r.SourceID == "" {
			continue
		}
		out[r.SourceID] = append(out[r.SourceID], r)
	}
	return out
}
