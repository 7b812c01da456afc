package layout

import (
	"math"
	"slices"
	"strings"

	"github.com/crawlytics/dashgeom/pkg/policy"
	"github.com/crawlytics/dashgeom/pkg/score"
)

// Row proportions within one bullet slot.
const (
	bulletBandFrac    = 0.7
	bulletBarFrac     = 0.35
	bulletQualityFrac = 0.5
)

// BulletBand is one background control-band rectangle.
type BulletBand struct {
	Label string  `json:"label" bson:"label"`
	From  float64 `json:"from" bson:"from"`
	To    float64 `json:"to" bson:"to"`
	Rect  Rect    `json:"rect" bson:"rect"`
}

// BulletRow is one source's scorecard row: background bands, the performance
// bar, a target marker, and an independently positioned quality marker on
// the same axis.
type BulletRow struct {
	SourceID    string       `json:"source_id" bson:"source_id"`
	Performance float64      `json:"performance" bson:"performance"`
	Quality     float64      `json:"quality" bson:"quality"`
	Throughput  float64      `json:"throughput" bson:"throughput"`
	Bands       []BulletBand `json:"bands" bson:"bands"`
	Bar         Rect         `json:"bar" bson:"bar"`
	Target      Marker       `json:"target" bson:"target"`
	QualityMark Marker       `json:"quality_mark" bson:"quality_mark"`
}

// BulletLayout is the stacked scorecard geometry. AxisMax is the shared axis
// domain end; the domain always starts at 0.
type BulletLayout struct {
	Kind    string      `json:"kind" bson:"kind"`
	Frame   Frame       `json:"frame" bson:"frame"`
	AxisMax float64     `json:"axis_max" bson:"axis_max"`
	Rows    []BulletRow `json:"rows" bson:"rows"`
}

// BuildBullet stacks one row per performance model, sorted by source ID,
// each spanning the frame width on a linear [0, last control band] axis.
// Values beyond the axis end pin to it.
func BuildBullet(models []score.Model, f Frame, pol policy.Policy) (BulletLayout, error) {
	if !f.Valid() {
		return BulletLayout{}, ErrEmptyFrame
	}

	bands := pol.ControlBands
	if len(bands) == 0 {
		bands = policy.DefaultControlBands
	}
	axisMax := bands[len(bands)-1].Max

	out := BulletLayout{Kind: KindBullet, Frame: f, AxisMax: axisMax}
	if len(models) == 0 {
		return out, nil
	}

	ordered := append([]score.Model(nil), models...)
	slices.SortFunc(ordered, func(a, b score.Model) int {
		return strings.Compare(a.SourceID, b.SourceID)
	})

	slot := f.Height / float64(len(ordered))
	xFor := func(v float64) float64 {
		return math.Min(math.Max(v, 0), axisMax) / axisMax * f.Width
	}

	out.Rows = make([]BulletRow, len(ordered))
	for i, m := range ordered {
		top := float64(i) * slot

		bandH := slot * bulletBandFrac
		bandY := top + (slot-bandH)/2
		rowBands := make([]BulletBand, len(bands))
		from := 0.0
		for j, b := range bands {
			rowBands[j] = BulletBand{
				Label: b.Label,
				From:  from,
				To:    b.Max,
				Rect: Rect{
					X:      xFor(from),
					Y:      bandY,
					Width:  xFor(b.Max) - xFor(from),
					Height: bandH,
				},
			}
			from = b.Max
		}

		barH := slot * bulletBarFrac
		qualityH := slot * bulletQualityFrac
		out.Rows[i] = BulletRow{
			SourceID:    m.SourceID,
			Performance: m.Performance,
			Quality:     m.Quality,
			Throughput:  m.Throughput,
			Bands:       rowBands,
			Bar: Rect{
				X:      0,
				Y:      top + (slot-barH)/2,
				Width:  xFor(m.Performance),
				Height: barH,
			},
			Target: Marker{
				X:      xFor(m.Target),
				Top:    bandY,
				Bottom: bandY + bandH,
			},
			QualityMark: Marker{
				X:      xFor(m.Quality),
				Top:    top + (slot-qualityH)/2,
				Bottom: top + (slot+qualityH)/2,
				Dashed: true,
			},
		}
	}
	return out, nil
}
