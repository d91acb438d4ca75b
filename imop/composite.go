// Package imop implements the Porter-Duff composition operations
// used for mixing a graphic element with its backdrop.
//
// It is used by the preview renderers to lay the removed seam
// over the carved image or over the energy map.
package imop

import (
	"fmt"
	"image"
	"image/color"

	"github.com/esimov/seamcarver/utils"
)

// Composition operations.
const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

var compositeOps = []string{Clear, Copy, Dst, SrcOver, DstOver, SrcIn, DstIn, SrcOut, DstOut, SrcAtop, DstAtop, Xor}

// Composite holds the currently active composition operation.
type Composite struct {
	current string
}

// InitOp returns a Composite using the source-over-destination operation.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// Set activates one of the supported composition operations.
func (op *Composite) Set(cop string) error {
	if !utils.Contains(compositeOps, cop) {
		return fmt.Errorf("unsupported composite operation: %q", cop)
	}
	op.current = cop
	return nil
}

// Get returns the active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// Draw composites src over the backdrop dst in place, aligning src.Bounds().Min with dst.Bounds().Min.
// When blend is not nil, the blend mode is applied on top of the composited color.
func (op *Composite) Draw(dst *image.NRGBA, src image.Image, blend *Blend) {
	sb, db := src.Bounds(), dst.Bounds()
	dx, dy := utils.Min(sb.Dx(), db.Dx()), utils.Min(sb.Dy(), db.Dy())

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			s := normalize(color.NRGBAModel.Convert(src.At(sb.Min.X+x, sb.Min.Y+y)).(color.NRGBA))
			b := normalize(dst.NRGBAAt(db.Min.X+x, db.Min.Y+y))

			c := op.mix(s, b)
			if blend != nil {
				c = blend.apply(c, s)
			}
			dst.SetNRGBA(db.Min.X+x, db.Min.Y+y, c.toNRGBA())
		}
	}
}

// mix applies the alpha composition formula of the active operation.
// Color channels are returned as straight, non-premultiplied values.
func (op *Composite) mix(s, b rgba) rgba {
	var fs, fb float64
	switch op.current {
	case Clear:
		fs, fb = 0, 0
	case Copy:
		fs, fb = 1, 0
	case Dst:
		fs, fb = 0, 1
	case SrcOver:
		fs, fb = 1, 1-s.a
	case DstOver:
		fs, fb = 1-b.a, 1
	case SrcIn:
		fs, fb = b.a, 0
	case DstIn:
		fs, fb = 0, s.a
	case SrcOut:
		fs, fb = 1-b.a, 0
	case DstOut:
		fs, fb = 0, 1-s.a
	case SrcAtop:
		fs, fb = b.a, 1-s.a
	case DstAtop:
		fs, fb = 1-b.a, s.a
	case Xor:
		fs, fb = 1-b.a, 1-s.a
	}

	a := s.a*fs + b.a*fb
	if a == 0 {
		return rgba{}
	}
	return rgba{
		r: (s.a*fs*s.r + b.a*fb*b.r) / a,
		g: (s.a*fs*s.g + b.a*fb*b.g) / a,
		b: (s.a*fs*s.b + b.a*fb*b.b) / a,
		a: a,
	}
}

// rgba is a straight alpha color with channels in the [0, 1] range.
type rgba struct {
	r, g, b, a float64
}

func normalize(c color.NRGBA) rgba {
	return rgba{
		r: float64(c.R) / 255,
		g: float64(c.G) / 255,
		b: float64(c.B) / 255,
		a: float64(c.A) / 255,
	}
}

func (c rgba) toNRGBA() color.NRGBA {
	conv := func(v float64) uint8 {
		return uint8(utils.Clamp(v, 0, 1)*255 + 0.5)
	}
	return color.NRGBA{R: conv(c.r), G: conv(c.g), B: conv(c.b), A: conv(c.a)}
}
