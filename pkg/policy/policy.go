// Package policy holds the tunable layout constants (bullet targets, control
// bands, histogram edges, chart spacing) as one explicit value passed into
// every layout call. Built-in defaults can be overridden per deployment from
// a TOML file, including per-source bullet targets.
package policy

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Built-in defaults, used when no policy file overrides them.
const (
	DefaultBulletTarget    = 80.0
	DefaultSankeyNodeWidth = 18.0
	DefaultRidgeOverlap    = 0.4
)

// DefaultHistogramEdges are the sample-length bin edges covering the usual
// span of collected text lengths, one decade per bin.
var DefaultHistogramEdges = []float64{10, 100, 1000, 10000, 100000, 1000000}

// DefaultControlBands are the qualitative score ranges behind a bullet row.
var DefaultControlBands = []Band{
	{Max: 40, Label: "Poor"},
	{Max: 70, Label: "Fair"},
	{Max: 90, Label: "Good"},
	{Max: 100, Label: "Excellent"},
}

// Band is one qualitative control-band range. A band spans from the previous
// band's Max (or 0 for the first) up to its own Max.
type Band struct {
	Max   float64 `toml:"max" json:"max" bson:"max"`
	Label string  `toml:"label" json:"label" bson:"label"`
}

// Policy is the layout configuration passed into each compute call.
type Policy struct {
	// BulletTarget is the performance target marker position, uniform across
	// sources unless overridden in SourceTargets.
	BulletTarget  float64            `toml:"bullet_target" json:"bullet_target" bson:"bullet_target"`
	SourceTargets map[string]float64 `toml:"source_targets" json:"source_targets,omitempty" bson:"source_targets,omitempty"`

	ControlBands   []Band    `toml:"control_bands" json:"control_bands" bson:"control_bands"`
	HistogramEdges []float64 `toml:"histogram_edges" json:"histogram_edges" bson:"histogram_edges"`

	// SankeyNodeWidth is the fixed horizontal thickness of a stage node.
	SankeyNodeWidth float64 `toml:"sankey_node_width" json:"sankey_node_width" bson:"sankey_node_width"`

	// RidgeOverlap is the fraction of a ridge band that overlaps the band
	// below it, in [0,1).
	RidgeOverlap float64 `toml:"ridge_overlap" json:"ridge_overlap" bson:"ridge_overlap"`
}

// Default returns the built-in policy.
func Default() Policy {
	return Policy{
		BulletTarget:    DefaultBulletTarget,
		ControlBands:    append([]Band(nil), DefaultControlBands...),
		HistogramEdges:  append([]float64(nil), DefaultHistogramEdges...),
		SankeyNodeWidth: DefaultSankeyNodeWidth,
		RidgeOverlap:    DefaultRidgeOverlap,
	}
}

// TargetFor returns the bullet target for a source, preferring a per-source
// override when one is configured.
func (p Policy) TargetFor(sourceID string) float64 {
	if t, ok := p.SourceTargets[sourceID]; ok {
		return t
	}
	return p.BulletTarget
}

// Validate checks the policy for structural problems. A policy that fails
// validation is a configuration error, not a data error.
func (p Policy) Validate() error {
	if p.BulletTarget < 0 {
		return fmt.Errorf("bullet_target must be nonnegative, got %v", p.BulletTarget)
	}
	for id, t := range p.SourceTargets {
		if t < 0 {
			return fmt.Errorf("source_targets[%s] must be nonnegative, got %v", id, t)
		}
	}
	if len(p.ControlBands) == 0 {
		return fmt.Errorf("control_bands must not be empty")
	}
	prev := 0.0
	for i, b := range p.ControlBands {
		if b.Max <= prev {
			return fmt.Errorf("control_bands[%d].max %v must exceed %v", i, b.Max, prev)
		}
		if b.Label == "" {
			return fmt.Errorf("control_bands[%d] is missing a label", i)
		}
		prev = b.Max
	}
	if len(p.HistogramEdges) < 2 {
		return fmt.Errorf("histogram_edges needs at least 2 elements, got %d", len(p.HistogramEdges))
	}
	for i := 1; i < len(p.HistogramEdges); i++ {
		if p.HistogramEdges[i] <= p.HistogramEdges[i-1] {
			return fmt.Errorf("histogram_edges must ascend: edge %d (%v) ≤ edge %d (%v)",
				i, p.HistogramEdges[i], i-1, p.HistogramEdges[i-1])
		}
	}
	if p.SankeyNodeWidth <= 0 {
		return fmt.Errorf("sankey_node_width must be positive, got %v", p.SankeyNodeWidth)
	}
	if p.RidgeOverlap < 0 || p.RidgeOverlap >= 1 {
		return fmt.Errorf("ridge_overlap must be in [0,1), got %v", p.RidgeOverlap)
	}
	return nil
}

// Load decodes TOML overrides on top of the defaults and validates the
// result. Fields absent from the document keep their default values.
func Load(data []byte) (Policy, error) {
	p := Default()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("decode policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid policy: %w", err)
	}
	return p, nil
}

// LoadFile reads and decodes a policy file.
func LoadFile(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	return Load(data)
}
