package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/crawlytics/dashgeom/pkg/cache"
	"github.com/crawlytics/dashgeom/pkg/metrics"
	"github.com/crawlytics/dashgeom/pkg/observability"
)

// Runner encapsulates layout computation with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store computation results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Compute runs the complete aggregate → layout computation with caching.
//
// Each call is one-shot: there is no incremental recomputation and no retry.
// A caller that issues a newer computation simply discards the older result.
func (r *Runner) Compute(ctx context.Context, snap metrics.Snapshot, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	frame := opts.Frame()
	if !frame.Valid() {
		warnEmptyFrame(r.Logger, opts.Width, opts.Height)
		return &Result{}, nil
	}

	hooks := observability.Engine()
	cacheHooks := observability.Cache()
	start := time.Now()
	snapshotHash := snap.Hash()
	sources := snap.Sources()

	hooks.OnComputeStart(ctx, snapshotHash, len(sources))

	// Try the result cache first (unless refresh requested)
	resultKey := r.Keyer.ResultKey(snapshotHash, opts.ResultKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, resultKey); err == nil && hit {
			var cached Result
			if err := json.Unmarshal(data, &cached); err == nil {
				cacheHooks.OnCacheHit(ctx, "result")
				cached.CacheInfo.ResultHit = true
				cached.Stats.ComputeTime = time.Since(start)
				hooks.OnComputeComplete(ctx, snapshotHash, time.Since(start), nil)
				r.Logger.Debug("result served from cache", "snapshot", snapshotHash)
				return &cached, nil
			}
			// If deserialization fails, fall through to recompute
		}
		cacheHooks.OnCacheMiss(ctx, "result")
	}

	// Keep the raw snapshot around so a computation can be replayed later.
	if data, err := json.Marshal(snap); err == nil {
		_ = r.Cache.Set(ctx, r.Keyer.SnapshotKey(snapshotHash), data, cache.TTLSnapshot)
	}

	result := &Result{SnapshotHash: snapshotHash}
	result.Stats.Sources = len(sources)

	// Stage 1: Aggregate
	aggStart := time.Now()
	hooks.OnAggregateStart(ctx, len(sources))
	err := aggregate(snap, opts, result)
	hooks.OnAggregateComplete(ctx, len(sources), time.Since(aggStart), err)
	if err != nil {
		hooks.OnComputeComplete(ctx, snapshotHash, time.Since(start), err)
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	result.Stats.AggregateTime = time.Since(aggStart)

	r.Logger.Info("aggregated snapshot",
		"sources", len(sources),
		"flow", result.Flow != nil,
		"distributions", len(result.Distributions),
		"duration", result.Stats.AggregateTime)

	// Stage 2: Layout, one pass per selected chart
	layoutStart := time.Now()
	for _, kind := range opts.Charts {
		kindStart := time.Now()
		hooks.OnLayoutStart(ctx, kind)
		err := buildChart(result, kind, frame, opts)
		hooks.OnLayoutComplete(ctx, kind, time.Since(kindStart), err)
		if err != nil {
			hooks.OnComputeComplete(ctx, snapshotHash, time.Since(start), err)
			return nil, fmt.Errorf("%s layout: %w", kind, err)
		}
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.ComputeTime = time.Since(start)

	r.Logger.Info("computed layouts",
		"charts", opts.Charts,
		"duration", result.Stats.LayoutTime)

	// Cache the result
	if data, err := json.Marshal(result); err == nil {
		_ = r.Cache.Set(ctx, resultKey, data, cache.TTLResult)
		cacheHooks.OnCacheSet(ctx, "result", len(data))
	}

	hooks.OnComputeComplete(ctx, snapshotHash, time.Since(start), nil)
	return result, nil
}

// Snapshot retrieves a previously computed-over snapshot by content hash.
// Returns cache.ErrCacheMiss when the snapshot is unknown or expired.
func (r *Runner) Snapshot(ctx context.Context, hash string) (metrics.Snapshot, error) {
	data, hit, err := r.Cache.Get(ctx, r.Keyer.SnapshotKey(hash))
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("snapshot lookup: %w", err)
	}
	if !hit {
		return metrics.Snapshot{}, cache.ErrCacheMiss
	}
	var snap metrics.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return metrics.Snapshot{}, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return snap, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
