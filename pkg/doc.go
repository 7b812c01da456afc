// Package pkg provides the core libraries for dashgeom layout computation.
//
// # Overview
//
// Dashgeom turns the operational metrics of a multi-source text-collection
// pipeline into renderable chart geometry for a monitoring dashboard. It
// computes three chart families: a sankey diagram of flow attrition across
// pipeline stages, a ridge plot comparing document-length distributions
// between sources, and a bullet-chart scorecard of per-source performance.
// The pkg directory is organized into four main areas:
//
//  1. Data models (metrics normalization, flow/dist/score aggregation)
//  2. Layout (chart geometry computed inside a pixel frame)
//  3. Orchestration (engine: aggregate → layout, with caching)
//  4. Infrastructure (cache, archive, observability, file IO)
//
// # Architecture
//
// The typical data flow through dashgeom:
//
//	Pipeline Metrics Snapshot (JSON/YAML document)
//	         ↓
//	    [metrics] package (coerce loosely typed counters)
//	         ↓
//	    [flow] / [dist] / [score] packages (chart data models)
//	         ↓
//	    [layout] package (sankey / ridge / bullet geometry)
//	         ↓
//	    JSON layout document → external renderer
//
// The [engine] package orchestrates the full computation and is the only
// entry point the CLI and HTTP API use, so every surface computes identical
// geometry for identical inputs.
//
// # Quick Start
//
// Compute chart geometry for a snapshot:
//
//	import (
//	    "context"
//	    "github.com/crawlytics/dashgeom/pkg/engine"
//	    dgio "github.com/crawlytics/dashgeom/pkg/io"
//	)
//
//	// 1. Load a metrics snapshot
//	snap, _ := dgio.ImportSnapshot("snapshot.json")
//
//	// 2. Compute layouts
//	result, _ := engine.Compute(snap, engine.Options{
//	    Width:  1180,
//	    Height: 640,
//	})
//
//	// 3. Hand the geometry to the renderer
//	dgio.ExportResult(result, "snapshot.layout.json")
//
// # Main Packages
//
// ## Data Models
//
// [metrics] - Snapshot and per-source record types, plus tolerant coercion
// from loosely typed collector documents (string counts, float counters).
// Metric-data problems degrade instead of erroring.
//
// [flow] - Aggregates per-source counters into the pipeline-wide attrition
// model: discovered → fetched → extracted → quality-checked → written, with
// filtered volume classified into duplicate, quality, and other.
//
// [dist] - Per-source document-length distributions: log-scale histogram
// counts with median and quartile positions.
//
// [score] - Per-source performance scores on a 0-100 scale, averaging the
// success, extraction, and quality rates that are actually present.
//
// [stats] - The small numeric kit behind the models: mean, median, linear
// interpolation quantiles, and range-clamped histograms.
//
// ## Layout
//
// [layout] - Chart geometry builders. Each takes a data model, a frame, and
// the policy, and returns plain positioned shapes (rectangles, ribbons,
// polylines, markers) with annotation records. No painting, no interaction.
//
// [policy] - Tunable layout constants (bullet targets, control bands,
// histogram edges, chart spacing) with TOML overrides per deployment.
//
// ## Orchestration
//
// [engine] - The aggregate → layout computation used by every surface.
// Runner adds result caching, snapshot write-through, structured logging,
// and hook instrumentation around the pure computation.
//
// ## Infrastructure
//
// [cache] - Result cache with file, Redis, memory, and null backends, plus
// content-hash key derivation. Identical snapshot, frame, charts, and policy
// share one cache entry.
//
// [archive] - Optional Mongo-backed store of computed layouts keyed by
// snapshot hash and computation id. The HTTP API replays archived layouts.
//
// [observability] - Engine and cache hook interfaces with no-op defaults.
// Surfaces install their own implementations (the API installs Prometheus
// collectors); the engine never depends on a metrics backend.
//
// [io] - Snapshot import (JSON/YAML) and layout result export.
//
// [buildinfo] - Version metadata stamped at build time.
//
// # Common Workflows
//
// Compute only selected charts:
//
//	result, _ := engine.Compute(snap, engine.Options{
//	    Width: 1180, Height: 640,
//	    Charts: []string{engine.ChartSankey, engine.ChartBullet},
//	})
//
// Override the layout policy:
//
//	pol, _ := policy.LoadFile("policy.toml")
//	result, _ := engine.Compute(snap, engine.Options{
//	    Width: 1180, Height: 640, Policy: &pol,
//	})
//
// Compute with caching and logging:
//
//	runner := engine.NewRunner(cache, nil, logger)
//	defer runner.Close()
//	result, _ := runner.Compute(ctx, snap, opts)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/layout/...    # Specific package
//	go test -run Example        # Examples only
//
// [metrics]: https://pkg.go.dev/github.com/crawlytics/dashgeom/pkg/metrics
// [flow]: https://pkg.go.dev/github.com/crawlytics/dashgeom/pkg/flow
// [dist]: https://pkg.go.dev/github.com/crawlytics/dashgeom/pkg/dist
// [score]: https://pkg.go.dev/github.com/crawlytics/dashgeom/pkg/score
// [stats]: https://pkg.go.dev/github.com/crawlytics/dashgeom/pkg/stats
// [layout]: https://pkg.go.dev/github.com/crawlytics/dashgeom/pkg/layout
// [policy]: https://pkg.go.dev/github.com/crawlytics/dashgeom/pkg/policy
// [engine]: https://pkg.go.dev/github.com/crawlytics/dashgeom/pkg/engine
// [cache]: https://pkg.go.dev/github.com/crawlytics/dashgeom/pkg/cache
// [archive]: https://pkg.go.dev/github.com/crawlytics/dashgeom/pkg/archive
// [observability]: https://pkg.go.dev/github.com/crawlytics/dashgeom/pkg/observability
// [io]: https://pkg.go.dev/github.com/crawlytics/dashgeom/pkg/io
// [buildinfo]: https://pkg.go.dev/github.com/crawlytics/dashgeom/pkg/buildinfo
package pkg
