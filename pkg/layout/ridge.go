package layout

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/crawlytics/dashgeom/pkg/dist"
	"github.com/crawlytics/dashgeom/pkg/policy"
)

// RidgeBand is one source's filled distribution silhouette.
type RidgeBand struct {
	SourceID string `json:"source_id" bson:"source_id"`

	// Baseline is the y coordinate the silhouette rises from and closes to.
	Baseline float64 `json:"baseline" bson:"baseline"`

	// Outline starts and ends on the baseline; the renderer fills the
	// enclosed region.
	Outline []Point `json:"outline" bson:"outline"`

	Median Marker `json:"median" bson:"median"`
}

// RidgeLayout is the stacked distribution comparison geometry.
type RidgeLayout struct {
	Kind  string      `json:"kind" bson:"kind"`
	Frame Frame       `json:"frame" bson:"frame"`
	Bands []RidgeBand `json:"bands" bson:"bands"`
}

// BuildRidge stacks one silhouette per distribution, top to bottom in source
// order, overlapping by the policy's ridge overlap. Bin centers map through
// a base-10 logarithm onto the frame width, with the domain spanning the
// shared edges. Every silhouette is normalized by the single maximum density
// across all sources, so relative magnitudes stay comparable; low-volume
// sources flatten rather than rescale.
//
// Nil edges adopt the first distribution's. An empty model set produces a
// layout with no bands.
func BuildRidge(models []dist.Model, edges []float64, f Frame, pol policy.Policy) (RidgeLayout, error) {
	if !f.Valid() {
		return RidgeLayout{}, ErrEmptyFrame
	}
	if len(models) == 0 {
		return RidgeLayout{Kind: KindRidge, Frame: f}, nil
	}

	if len(edges) == 0 {
		edges = models[0].Edges
	}
	if err := dist.ValidateEdges(edges); err != nil {
		return RidgeLayout{}, err
	}
	if edges[0] <= 0 {
		return RidgeLayout{}, fmt.Errorf("ridge: log scale needs positive edges, got first edge %v", edges[0])
	}
	bins := len(edges) - 1
	for _, m := range models {
		if len(m.Densities) != bins {
			return RidgeLayout{}, fmt.Errorf("ridge: %s has %d bins, shared edges define %d",
				m.SourceID, len(m.Densities), bins)
		}
	}

	ordered := append([]dist.Model(nil), models...)
	slices.SortFunc(ordered, func(a, b dist.Model) int {
		return strings.Compare(a.SourceID, b.SourceID)
	})

	maxDensity := 0.0
	for _, m := range ordered {
		for _, d := range m.Densities {
			if d > maxDensity {
				maxDensity = d
			}
		}
	}
	if maxDensity == 0 {
		return RidgeLayout{}, fmt.Errorf("ridge: every density is zero")
	}

	logMin := math.Log10(edges[0])
	logSpan := math.Log10(edges[len(edges)-1]) - logMin
	xFor := func(v float64) float64 {
		x := (math.Log10(v) - logMin) / logSpan * f.Width
		return math.Min(math.Max(x, 0), f.Width)
	}

	// With n bands overlapping by fraction o, band k's baseline sits at
	// amp + k·amp·(1−o); the last baseline lands on the frame bottom.
	n := len(ordered)
	amp := f.Height / (1 + float64(n-1)*(1-pol.RidgeOverlap))
	step := amp * (1 - pol.RidgeOverlap)

	bands := make([]RidgeBand, n)
	for k, m := range ordered {
		baseline := amp + float64(k)*step

		outline := make([]Point, 0, bins+2)
		outline = append(outline, Point{X: xFor(edges[0]), Y: baseline})
		for i, d := range m.Densities {
			center := (edges[i] + edges[i+1]) / 2
			outline = append(outline, Point{
				X: xFor(center),
				Y: baseline - d/maxDensity*amp,
			})
		}
		outline = append(outline, Point{X: xFor(edges[len(edges)-1]), Y: baseline})

		bands[k] = RidgeBand{
			SourceID: m.SourceID,
			Baseline: baseline,
			Outline:  outline,
			Median: Marker{
				X:      xFor(m.Stats.Median),
				Top:    baseline - amp,
				Bottom: baseline,
				Dashed: true,
			},
		}
	}

	return RidgeLayout{Kind: KindRidge, Frame: f, Bands: bands}, nil
}
