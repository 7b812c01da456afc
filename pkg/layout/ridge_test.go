package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/crawlytics/dashgeom/pkg/dist"
	"github.com/crawlytics/dashgeom/pkg/policy"
)

func ridgeModels() []dist.Model {
	edges := []float64{10, 100, 1000}
	return []dist.Model{
		{
			SourceID:  "beta",
			Edges:     edges,
			Counts:    []int{1, 1},
			Densities: []float64{0.5, 0.5},
			Stats:     dist.Stats{Median: 100, Count: 2},
		},
		{
			SourceID:  "alpha",
			Edges:     edges,
			Counts:    []int{4, 0},
			Densities: []float64{1, 0},
			Stats:     dist.Stats{Median: 40, Count: 4},
		},
	}
}

func TestBuildRidgeBands(t *testing.T) {
	f := Frame{Width: 600, Height: 320}
	pol := policy.Default()

	l, err := BuildRidge(ridgeModels(), []float64{10, 100, 1000}, f, pol)
	if err != nil {
		t.Fatalf("BuildRidge() = %v", err)
	}
	if l.Kind != KindRidge {
		t.Errorf("Kind = %q, want %q", l.Kind, KindRidge)
	}
	if len(l.Bands) != 2 {
		t.Fatalf("len(Bands) = %d, want 2", len(l.Bands))
	}

	// Sources stack alphabetically regardless of input order.
	if l.Bands[0].SourceID != "alpha" || l.Bands[1].SourceID != "beta" {
		t.Errorf("order = %q, %q, want alpha, beta", l.Bands[0].SourceID, l.Bands[1].SourceID)
	}

	amp := f.Height / (1 + (1 - pol.RidgeOverlap))
	if got := l.Bands[0].Baseline; math.Abs(got-amp) > 1e-9 {
		t.Errorf("first baseline = %v, want %v", got, amp)
	}
	// The last band's baseline lands on the frame bottom.
	if got := l.Bands[1].Baseline; math.Abs(got-f.Height) > 1e-9 {
		t.Errorf("last baseline = %v, want %v", got, f.Height)
	}
}

func TestBuildRidgeSilhouette(t *testing.T) {
	f := Frame{Width: 600, Height: 320}
	l, err := BuildRidge(ridgeModels(), []float64{10, 100, 1000}, f, policy.Default())
	if err != nil {
		t.Fatalf("BuildRidge() = %v", err)
	}

	for _, b := range l.Bands {
		outline := b.Outline
		// Two bins plus the two baseline anchors.
		if len(outline) != 4 {
			t.Fatalf("%s outline has %d points, want 4", b.SourceID, len(outline))
		}
		if outline[0].Y != b.Baseline || outline[len(outline)-1].Y != b.Baseline {
			t.Errorf("%s silhouette does not close to its baseline", b.SourceID)
		}
		if outline[0].X != 0 || math.Abs(outline[len(outline)-1].X-f.Width) > 1e-9 {
			t.Errorf("%s silhouette spans %v..%v, want 0..%v",
				b.SourceID, outline[0].X, outline[len(outline)-1].X, f.Width)
		}
		for i := 1; i < len(outline); i++ {
			if outline[i].X < outline[i-1].X {
				t.Errorf("%s outline x not monotone at %d: %v < %v",
					b.SourceID, i, outline[i].X, outline[i-1].X)
			}
		}
	}

	amp := f.Height / (1 + (1 - policy.DefaultRidgeOverlap))

	// alpha holds the global maximum density: its peak reaches exactly one
	// amplitude above its baseline.
	alpha := l.Bands[0]
	if got, want := alpha.Outline[1].Y, alpha.Baseline-amp; math.Abs(got-want) > 1e-9 {
		t.Errorf("alpha peak = %v, want %v", got, want)
	}

	// beta's densities are half the shared maximum, so its peaks rise half
	// an amplitude. Shared normalization keeps magnitudes comparable.
	beta := l.Bands[1]
	for _, i := range []int{1, 2} {
		if got, want := beta.Outline[i].Y, beta.Baseline-amp/2; math.Abs(got-want) > 1e-9 {
			t.Errorf("beta point %d = %v, want %v", i, got, want)
		}
	}
}

func TestBuildRidgeMedianMarker(t *testing.T) {
	f := Frame{Width: 600, Height: 320}
	l, err := BuildRidge(ridgeModels(), []float64{10, 100, 1000}, f, policy.Default())
	if err != nil {
		t.Fatalf("BuildRidge() = %v", err)
	}

	// beta's median of 100 sits at the midpoint of the log domain [10,1000].
	beta := l.Bands[1]
	if got := beta.Median.X; math.Abs(got-f.Width/2) > 1e-9 {
		t.Errorf("beta median X = %v, want %v", got, f.Width/2)
	}
	for _, b := range l.Bands {
		if !b.Median.Dashed {
			t.Errorf("%s median marker not dashed", b.SourceID)
		}
		if b.Median.Bottom != b.Baseline {
			t.Errorf("%s median marker bottom = %v, want baseline %v", b.SourceID, b.Median.Bottom, b.Baseline)
		}
	}
}

func TestBuildRidgeEmpty(t *testing.T) {
	l, err := BuildRidge(nil, nil, Frame{Width: 600, Height: 320}, policy.Default())
	if err != nil {
		t.Fatalf("BuildRidge() = %v", err)
	}
	if len(l.Bands) != 0 {
		t.Errorf("len(Bands) = %d, want 0", len(l.Bands))
	}
}

func TestBuildRidgeErrors(t *testing.T) {
	pol := policy.Default()
	models := ridgeModels()

	if _, err := BuildRidge(models, nil, Frame{}, pol); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("zero frame error = %v, want ErrEmptyFrame", err)
	}
	if _, err := BuildRidge(models, []float64{1000, 10}, Frame{Width: 600, Height: 320}, pol); err == nil {
		t.Error("descending edges succeeded, want error")
	}
	if _, err := BuildRidge(models, []float64{0, 100, 1000}, Frame{Width: 600, Height: 320}, pol); err == nil {
		t.Error("zero first edge succeeded, want error (log scale)")
	}
	if _, err := BuildRidge(models, []float64{10, 100, 1000, 10000}, Frame{Width: 600, Height: 320}, pol); err == nil {
		t.Error("mismatched bin count succeeded, want error")
	}
}
