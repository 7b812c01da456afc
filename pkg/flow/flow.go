// Package flow aggregates pipeline execution counts into the flow model
// behind the attrition (Sankey) chart: five ordered stage volumes plus three
// classified filtered totals.
//
// Snapshots arrive in two shapes, a pre-aggregated summary or a collection of
// raw per-run records. Both normalize into the same canonical Model through
// the Input interface, so every downstream consumer handles exactly one
// shape.
package flow

import (
	"errors"

	"github.com/crawlytics/dashgeom/pkg/metrics"
)

// ErrUnavailable reports that the input carried no flow data at all. It
// distinguishes "no data" from a legitimately zeroed model; callers render an
// empty state instead of an empty chart.
var ErrUnavailable = errors.New("flow data unavailable")

// =============================================================================
// Stages - Fixed Pipeline Order
// =============================================================================

// Stage identifies one pipeline hop in flow order.
type Stage string

const (
	StageDiscovered     Stage = "discovered"
	StageFetched        Stage = "fetched"
	StageExtracted      Stage = "extracted"
	StageQualityChecked Stage = "quality_checked"
	StageWritten        Stage = "written"
)

// StageOrder lists the five stages in pipeline order.
var StageOrder = []Stage{
	StageDiscovered,
	StageFetched,
	StageExtracted,
	StageQualityChecked,
	StageWritten,
}

// Label returns the display label for a stage.
func (s Stage) Label() string {
	switch s {
	case StageDiscovered:
		return "Discovered"
	case StageFetched:
		return "Fetched"
	case StageExtracted:
		return "Extracted"
	case StageQualityChecked:
		return "Quality Checked"
	case StageWritten:
		return "Written"
	}
	return string(s)
}

// =============================================================================
// Model - Canonical Flow Aggregation
// =============================================================================

// Model is the canonical flow aggregation both input shapes normalize into.
// Stage volumes are nonnegative. Filtered totals are best-effort attribution
// and are not required to reconcile exactly against stage deltas.
type Model struct {
	Discovered     int `json:"discovered" bson:"discovered"`
	Fetched        int `json:"fetched" bson:"fetched"`
	Extracted      int `json:"extracted" bson:"extracted"`
	QualityChecked int `json:"quality_checked" bson:"quality_checked"`
	Written        int `json:"written" bson:"written"`

	FilteredDuplicate int `json:"filtered_duplicate" bson:"filtered_duplicate"`
	FilteredQuality   int `json:"filtered_quality" bson:"filtered_quality"`
	FilteredOther     int `json:"filtered_other" bson:"filtered_other"`
}

// StageValue pairs a stage with its aggregated volume.
type StageValue struct {
	Stage Stage `json:"stage" bson:"stage"`
	Value int   `json:"value" bson:"value"`
}

// StageValues returns the five stage volumes in pipeline order.
func (m Model) StageValues() []StageValue {
	return []StageValue{
		{StageDiscovered, m.Discovered},
		{StageFetched, m.Fetched},
		{StageExtracted, m.Extracted},
		{StageQualityChecked, m.QualityChecked},
		{StageWritten, m.Written},
	}
}

// TotalFiltered returns the sum of the three filtered categories.
func (m Model) TotalFiltered() int {
	return m.FilteredDuplicate + m.FilteredQuality + m.FilteredOther
}

func (m Model) empty() bool {
	return m.Discovered == 0 && m.Fetched == 0 && m.Extracted == 0 &&
		m.QualityChecked == 0 && m.Written == 0 && m.TotalFiltered() == 0
}

// =============================================================================
// Input - Normalization Adapter
// =============================================================================

// Input is one snapshot's flow data in whichever shape the collector
// provides. Implementations normalize their shape into the canonical Model,
// classifying filter reasons with the supplied classifier.
type Input interface {
	Normalize(c Classifier) Model
}

// Aggregate is the pre-aggregated input shape: stage counts the collector
// already summed, plus a filter-reason breakdown.
type Aggregate struct {
	Discovered int            `json:"discovered" bson:"discovered"`
	Fetched    int            `json:"fetched" bson:"fetched"`
	Extracted  int            `json:"extracted" bson:"extracted"`
	Written    int            `json:"written" bson:"written"`
	Breakdown  map[string]int `json:"filter_breakdown,omitempty" bson:"filter_breakdown,omitempty"`
}

// Normalize adopts the given stage counts and reconstructs the
// quality-checked population as written plus the quality and other filtered
// totals. Duplicates drop at the dedup hop before the quality gate, so they
// are excluded from the reconstruction.
func (a Aggregate) Normalize(c Classifier) Model {
	f := classifyTotals(a.Breakdown, c)
	return Model{
		Discovered:        max(a.Discovered, 0),
		Fetched:           max(a.Fetched, 0),
		Extracted:         max(a.Extracted, 0),
		QualityChecked:    max(a.Written, 0) + f.quality + f.other,
		Written:           max(a.Written, 0),
		FilteredDuplicate: f.duplicate,
		FilteredQuality:   f.quality,
		FilteredOther:     f.other,
	}
}

// Records is the raw input shape: per-run records straight from the
// collector.
type Records []metrics.Record

// Normalize sums stage counts across records, falling back per record to
// discovered when fetched is absent and to written when extracted is absent.
// The quality-checked population reconstructs as written plus every filtered
// item: per-record data does not say which stage a filter fired at, so the
// reconstruction cannot exclude any category.
func (rs Records) Normalize(c Classifier) Model {
	var m Model
	merged := make(map[string]int)
	for _, r := range rs {
		m.Discovered += max(r.Discovered, 0)

		fetched := r.Fetched
		if fetched == 0 {
			fetched = r.Discovered
		}
		m.Fetched += max(fetched, 0)

		extracted := r.Extracted
		if extracted == 0 {
			extracted = r.Written
		}
		m.Extracted += max(extracted, 0)

		m.Written += max(r.Written, 0)

		for reason, count := range r.FilterBreakdown {
			merged[reason] += max(count, 0)
		}
	}

	f := classifyTotals(merged, c)
	m.FilteredDuplicate = f.duplicate
	m.FilteredQuality = f.quality
	m.FilteredOther = f.other
	m.QualityChecked = m.Written + m.TotalFiltered()
	return m
}

// =============================================================================
// Build - Aggregation Entry Point
// =============================================================================

// Build normalizes the input into a Model. A nil classifier falls back to
// keyword classification. Returns ErrUnavailable when every derived value is
// zero.
func Build(in Input, c Classifier) (Model, error) {
	if c == nil {
		c = KeywordClassifier{}
	}
	m := in.Normalize(c)
	if m.empty() {
		return Model{}, ErrUnavailable
	}
	return m, nil
}
