package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/crawlytics/dashgeom/pkg/dist"
	"github.com/crawlytics/dashgeom/pkg/flow"
	"github.com/crawlytics/dashgeom/pkg/layout"
	"github.com/crawlytics/dashgeom/pkg/metrics"
	"github.com/crawlytics/dashgeom/pkg/score"
)

// =============================================================================
// Pure Computation
// =============================================================================

// Compute runs the full computation without caching or instrumentation.
// It is the deterministic core that Runner.Compute wraps: identical snapshot
// and options always yield an identical result. Safe for concurrent use.
func Compute(snap metrics.Snapshot, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	frame := opts.Frame()
	if !frame.Valid() {
		warnEmptyFrame(opts.Logger, opts.Width, opts.Height)
		return &Result{}, nil
	}

	result := &Result{SnapshotHash: snap.Hash()}
	result.Stats.Sources = len(snap.Sources())

	if err := aggregate(snap, opts, result); err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	for _, kind := range opts.Charts {
		if err := buildChart(result, kind, frame, opts); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
	}
	return result, nil
}

// emptyFrameOnce collapses repeated empty-frame reports into one warning.
// Chart surfaces recompute on every refresh tick, so a dashboard with a
// collapsed panel would otherwise warn forever.
var emptyFrameOnce sync.Once

func warnEmptyFrame(logger *log.Logger, width, height float64) {
	emptyFrameOnce.Do(func() {
		logger.Warn("render frame has no area, yielding null result",
			"width", width,
			"height", height)
	})
}

// =============================================================================
// Stage 1: Aggregate
// =============================================================================

// aggregate normalizes the snapshot into the three chart data models.
//
// A snapshot whose counters are all zero leaves result.Flow nil: flow
// attrition is unavailable rather than wrong, and the renderer shows an
// empty state. Distribution and score models simply come out empty when no
// source qualifies.
func aggregate(snap metrics.Snapshot, opts Options, result *Result) error {
	m, err := flow.Build(flow.Records(snap.Records), opts.Classifier)
	switch {
	case errors.Is(err, flow.ErrUnavailable):
		// Flow stays nil.
	case err != nil:
		return err
	default:
		result.Flow = &m
	}

	dists, err := dist.FromRecords(snap.Records, opts.Policy.HistogramEdges)
	if err != nil {
		return err
	}
	result.Distributions = dists
	result.Scores = score.FromRecords(snap.Records, *opts.Policy)
	return nil
}

// =============================================================================
// Stage 2: Layout
// =============================================================================

// buildChart computes one chart kind's geometry into the result. A kind
// whose data model is absent stays nil - an empty state, not an error.
func buildChart(result *Result, kind string, frame layout.Frame, opts Options) error {
	pol := *opts.Policy
	switch kind {
	case ChartSankey:
		if result.Flow == nil {
			return nil
		}
		l, err := layout.BuildSankey(*result.Flow, frame, pol)
		if err != nil {
			return err
		}
		result.Sankey = &l
	case ChartRidge:
		if len(result.Distributions) == 0 {
			return nil
		}
		l, err := layout.BuildRidge(result.Distributions, nil, frame, pol)
		if err != nil {
			return err
		}
		result.Ridge = &l
	case ChartBullet:
		if len(result.Scores) == 0 {
			return nil
		}
		l, err := layout.BuildBullet(result.Scores, frame, pol)
		if err != nil {
			return err
		}
		result.Bullet = &l
	default:
		return ValidateChart(kind)
	}
	return nil
}
