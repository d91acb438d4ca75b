package imop

import (
	"fmt"
	"math"

	"github.com/esimov/seamcarver/utils"
)

// Blend modes.
const (
	Darken   = "darken"
	Lighten  = "lighten"
	Multiply = "multiply"
	Screen   = "screen"
	Overlay  = "overlay"
)

var blendModes = []string{Darken, Lighten, Multiply, Screen, Overlay}

// Blend holds the currently active blend mode.
type Blend struct {
	OpType string
}

// NewBlend initializes a new Blend.
func NewBlend() *Blend {
	return &Blend{}
}

// Set activates one of the supported blend modes.
func (o *Blend) Set(opType string) error {
	if !utils.Contains(blendModes, opType) {
		return fmt.Errorf("unsupported blend mode: %q", opType)
	}
	o.OpType = opType
	return nil
}

// Get returns the currently active blend mode.
func (o *Blend) Get() string {
	return o.OpType
}

// apply blends the source color s into the composited backdrop b. Alpha is kept from b.
func (o *Blend) apply(b, s rgba) rgba {
	var fn func(cb, cs float64) float64
	switch o.OpType {
	case Darken:
		fn = math.Min
	case Lighten:
		fn = math.Max
	case Multiply:
		fn = func(cb, cs float64) float64 { return cb * cs }
	case Screen:
		fn = func(cb, cs float64) float64 { return 1 - (1-cb)*(1-cs) }
	case Overlay:
		fn = func(cb, cs float64) float64 {
			if cb <= 0.5 {
				return 2 * cb * cs
			}
			return 1 - 2*(1-cb)*(1-cs)
		}
	default:
		return b
	}
	return rgba{r: fn(b.r, s.r), g: fn(b.g, s.g), b: fn(b.b, s.b), a: b.a}
}
