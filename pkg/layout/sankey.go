package layout

import (
	"fmt"

	"github.com/crawlytics/dashgeom/pkg/flow"
	"github.com/crawlytics/dashgeom/pkg/policy"
)

// annotationLineHeight is the vertical space one filtered-total text line
// reserves beneath the stage band.
const annotationLineHeight = 14.0

// SankeyNode is one positioned stage column.
type SankeyNode struct {
	Stage flow.Stage `json:"stage" bson:"stage"`
	Label string     `json:"label" bson:"label"`
	Value int        `json:"value" bson:"value"`
	Rect  Rect       `json:"rect" bson:"rect"`
}

// SankeyLink is the band connecting two adjacent stages. The renderer fills
// the region between the top and bottom curves.
type SankeyLink struct {
	From   flow.Stage `json:"from" bson:"from"`
	To     flow.Stage `json:"to" bson:"to"`
	Value  int        `json:"value" bson:"value"`
	Top    Curve      `json:"top" bson:"top"`
	Bottom Curve      `json:"bottom" bson:"bottom"`
}

// SankeyLayout is the complete attrition diagram geometry.
type SankeyLayout struct {
	Kind        string       `json:"kind" bson:"kind"`
	Frame       Frame        `json:"frame" bson:"frame"`
	Nodes       []SankeyNode `json:"nodes" bson:"nodes"`
	Links       []SankeyLink `json:"links" bson:"links"`
	Annotations []Annotation `json:"annotations,omitempty" bson:"annotations,omitempty"`
}

// BuildSankey lays the flow model out into the frame. Node heights are
// proportional to stage volume under one shared scale, so a stage with a
// larger volume never gets a shorter node. Filtered totals become annotation
// text beneath the quality-checked column: per-edge attribution of filtered
// items is not recoverable from the input, so they are never drawn as routed
// bands.
func BuildSankey(m flow.Model, f Frame, pol policy.Policy) (SankeyLayout, error) {
	if !f.Valid() {
		return SankeyLayout{}, ErrEmptyFrame
	}

	stages := m.StageValues()
	maxVal := 0
	for _, sv := range stages {
		if sv.Value > maxVal {
			maxVal = sv.Value
		}
	}
	if maxVal == 0 {
		return SankeyLayout{}, fmt.Errorf("sankey: all stage volumes are zero")
	}

	nodeW := pol.SankeyNodeWidth
	gap := (f.Width - float64(len(stages))*nodeW) / float64(len(stages)-1)
	if gap < 0 {
		return SankeyLayout{}, fmt.Errorf("sankey: frame width %v cannot fit %d nodes of width %v",
			f.Width, len(stages), nodeW)
	}

	annotations := annotationLines(m)
	bandHeight := f.Height - float64(len(annotations))*annotationLineHeight
	if bandHeight <= 0 {
		return SankeyLayout{}, fmt.Errorf("sankey: frame height %v leaves no room above annotations", f.Height)
	}

	scale := bandHeight / float64(maxVal)

	nodes := make([]SankeyNode, len(stages))
	for i, sv := range stages {
		h := float64(sv.Value) * scale
		nodes[i] = SankeyNode{
			Stage: sv.Stage,
			Label: sv.Stage.Label(),
			Value: sv.Value,
			Rect: Rect{
				X:      float64(i) * (nodeW + gap),
				Y:      (bandHeight - h) / 2,
				Width:  nodeW,
				Height: h,
			},
		}
	}

	links := make([]SankeyLink, 0, len(stages)-1)
	for i := 0; i < len(nodes)-1; i++ {
		links = append(links, linkBetween(nodes[i], nodes[i+1], scale))
	}

	// The annotation strip sits under the quality-checked column.
	qc := nodes[3]
	for k := range annotations {
		annotations[k].X = qc.Rect.X + qc.Rect.Width/2
		annotations[k].Y = bandHeight + float64(k+1)*annotationLineHeight
	}

	return SankeyLayout{
		Kind:        KindSankey,
		Frame:       f,
		Nodes:       nodes,
		Links:       links,
		Annotations: annotations,
	}, nil
}

// linkBetween builds the band carrying the downstream stage's volume. The
// band is vertically centered on the smaller of the two connected
// rectangles, which keeps its edges inside both nodes whenever volumes
// shrink stage over stage.
func linkBetween(from, to SankeyNode, scale float64) SankeyLink {
	smaller := from.Rect
	if to.Rect.Height < smaller.Height {
		smaller = to.Rect
	}

	h := float64(to.Value) * scale
	top := smaller.CenterY() - h/2
	bottom := smaller.CenterY() + h/2

	x0, x1 := from.Rect.Right(), to.Rect.X
	return SankeyLink{
		From:   from.Stage,
		To:     to.Stage,
		Value:  to.Value,
		Top:    symmetricCurve(Point{X: x0, Y: top}, Point{X: x1, Y: top}),
		Bottom: symmetricCurve(Point{X: x0, Y: bottom}, Point{X: x1, Y: bottom}),
	}
}

func annotationLines(m flow.Model) []Annotation {
	var lines []Annotation
	add := func(label string, n int) {
		if n > 0 {
			lines = append(lines, Annotation{Text: fmt.Sprintf("%s: %d", label, n)})
		}
	}
	add("filtered duplicate", m.FilteredDuplicate)
	add("filtered quality", m.FilteredQuality)
	add("filtered other", m.FilteredOther)
	return lines
}
