// Package engine provides the core layout computation for dashgeom.
//
// This package implements the complete aggregate → layout computation that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// A computation consists of two stages:
//
//  1. Aggregate: Normalize snapshot counters into the chart data models
//     (flow attrition, length distributions, performance scores)
//  2. Layout: Compute geometry for the selected charts within a frame
//     (sankey, ridge, bullet)
//
// Both stages are pure: identical snapshot and options always produce an
// identical result. Caching, logging, and hook instrumentation live in the
// Runner, never in the computation itself.
//
// # Usage
//
// Create a Runner and compute layouts:
//
//	runner := engine.NewRunner(cache, nil, logger)
//	opts := engine.Options{
//	    Width:  1180,
//	    Height: 640,
//	    Charts: []string{engine.ChartSankey, engine.ChartBullet},
//	}
//	result, err := runner.Compute(ctx, snapshot, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sankey := result.Sankey
//
// Or run the pure computation directly, without caching:
//
//	result, err := engine.Compute(snapshot, opts)
package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/crawlytics/dashgeom/pkg/cache"
	"github.com/crawlytics/dashgeom/pkg/dist"
	"github.com/crawlytics/dashgeom/pkg/flow"
	"github.com/crawlytics/dashgeom/pkg/layout"
	"github.com/crawlytics/dashgeom/pkg/policy"
	"github.com/crawlytics/dashgeom/pkg/score"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels. Surfaces use it as
	// their flag and request default; the engine itself never substitutes it,
	// because a zero-sized frame must yield a null result, not a chart.
	DefaultWidth = 800.0

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 600.0
)

// Chart kind constants, aliased from the layout package so callers can
// select charts without importing it.
const (
	ChartSankey = layout.KindSankey
	ChartRidge  = layout.KindRidge
	ChartBullet = layout.KindBullet
)

// ValidCharts is the set of supported chart kinds.
var ValidCharts = map[string]bool{
	ChartSankey: true,
	ChartRidge:  true,
	ChartBullet: true,
}

// DefaultCharts is the selection used when options name no charts.
var DefaultCharts = []string{ChartSankey, ChartRidge, ChartBullet}

// chartOrder fixes the canonical chart ordering for cache keys and results.
var chartOrder = []string{ChartSankey, ChartRidge, ChartBullet}

// =============================================================================
// Options - Computation Configuration
// =============================================================================

// Options contains all configuration for a layout computation.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Frame dimensions in pixels. A frame without positive area is the
	// empty-target condition: the computation reports it once and yields
	// a null result instead of partial geometry.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Charts selects which layouts to compute. Empty selects all of them.
	// The selection is deduplicated and put into canonical order during
	// validation so equivalent selections share cache keys.
	Charts []string `json:"charts,omitempty"`

	// Refresh bypasses the result cache and forces recomputation.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Policy     *policy.Policy  `json:"-"` // nil means policy.Default()
	Classifier flow.Classifier `json:"-"` // nil means flow.KeywordClassifier
	Logger     *log.Logger     `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a layout computation.
//
// Chart fields are nil when the chart was not selected or when its data
// model is absent from the snapshot; the renderer shows an empty state for
// nil charts. The whole struct serializes to JSON, which is also the cached
// representation.
type Result struct {
	// Flow is the normalized attrition model behind the sankey chart.
	// Nil when the snapshot carries no usable counters.
	Flow *flow.Model `json:"flow,omitempty" bson:"flow,omitempty"`

	// Distributions are the per-source histogram models behind the ridge.
	Distributions []dist.Model `json:"distributions,omitempty" bson:"distributions,omitempty"`

	// Scores are the per-source performance models behind the bullet chart.
	Scores []score.Model `json:"scores,omitempty" bson:"scores,omitempty"`

	// Sankey is the flow attrition geometry.
	Sankey *layout.SankeyLayout `json:"sankey,omitempty" bson:"sankey,omitempty"`

	// Ridge is the distribution comparison geometry.
	Ridge *layout.RidgeLayout `json:"ridge,omitempty" bson:"ridge,omitempty"`

	// Bullet is the performance scorecard geometry.
	Bullet *layout.BulletLayout `json:"bullet,omitempty" bson:"bullet,omitempty"`

	// SnapshotHash is the content hash of the input snapshot.
	SnapshotHash string `json:"snapshot_hash,omitempty" bson:"snapshot_hash,omitempty"`

	// Stats contains timing and size information.
	Stats Stats `json:"stats" bson:"stats"`

	// CacheInfo tracks cache participation.
	CacheInfo CacheInfo `json:"cache_info" bson:"cache_info"`
}

// Null reports whether the result carries no output at all, which is what a
// computation against an empty frame returns.
func (r *Result) Null() bool {
	return r.Flow == nil && len(r.Distributions) == 0 && len(r.Scores) == 0 &&
		r.Sankey == nil && r.Ridge == nil && r.Bullet == nil
}

// Stats contains computation statistics.
type Stats struct {
	Sources       int           `json:"sources" bson:"sources"`
	AggregateTime time.Duration `json:"aggregate_time" bson:"aggregate_time"`
	LayoutTime    time.Duration `json:"layout_time" bson:"layout_time"`
	ComputeTime   time.Duration `json:"compute_time" bson:"compute_time"`
}

// CacheInfo tracks cache participation for a computation.
type CacheInfo struct {
	ResultHit bool `json:"result_hit" bson:"result_hit"` // Whether the whole result came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateChart checks that a chart kind is valid.
func ValidateChart(kind string) error {
	if !ValidCharts[kind] {
		return fmt.Errorf("invalid chart: %q (must be one of: sankey, ridge, bullet)", kind)
	}
	return nil
}

// ValidateCharts checks that all chart kinds are valid.
func ValidateCharts(kinds []string) error {
	for _, k := range kinds {
		if err := ValidateChart(k); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the chart selection and policy and applies
// defaults. Frame dimensions are deliberately left alone: a missing frame is
// handled by the computation, not papered over with defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := ValidateCharts(o.Charts); err != nil {
		return err
	}
	if len(o.Charts) == 0 {
		o.Charts = slices.Clone(DefaultCharts)
	} else {
		o.Charts = normalizeCharts(o.Charts)
	}
	if o.Policy == nil {
		p := policy.Default()
		o.Policy = &p
	}
	if err := o.Policy.Validate(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Frame returns the render frame described by the options.
func (o *Options) Frame() layout.Frame {
	return layout.Frame{Width: o.Width, Height: o.Height}
}

// Wants reports whether a chart kind is part of the selection.
// Valid only after ValidateAndSetDefaults.
func (o *Options) Wants(kind string) bool {
	return slices.Contains(o.Charts, kind)
}

// ResultKeyOpts returns cache key options for result caching. The policy is
// folded in by content hash so a policy edit invalidates cached results.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		Width:      o.Width,
		Height:     o.Height,
		Charts:     o.Charts,
		PolicyHash: o.policyHash(),
	}
}

// policyHash returns the content hash of the effective policy.
func (o *Options) policyHash() string {
	pol := o.Policy
	if pol == nil {
		p := policy.Default()
		pol = &p
	}
	data, err := json.Marshal(pol)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// normalizeCharts dedupes a chart selection and fixes its order so that
// equivalent selections produce equal cache keys.
func normalizeCharts(kinds []string) []string {
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	out := make([]string, 0, len(want))
	for _, k := range chartOrder {
		if want[k] {
			out = append(out, k)
		}
	}
	return out
}
