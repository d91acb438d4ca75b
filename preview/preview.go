// Package preview implements terminal renderers for the carving process.
// Every renderer is a seamcarver.RenderSink which redraws the frame in place,
// so the terminal shows the image shrinking seam after seam.
package preview

import (
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"golang.org/x/term"

	"github.com/esimov/seamcarver"
	"github.com/esimov/seamcarver/imop"
	"github.com/esimov/seamcarver/utils"
)

const (
	defaultCols = 80
	defaultRows = 24
)

// DefaultSeamColor is the color of the removed seam overlaid on carved frames.
var DefaultSeamColor = color.NRGBA{R: 0xff, G: 0x20, B: 0x20, A: 0xc0}

type options struct {
	cols, rows int
	seamColor  color.NRGBA
	showSeam   bool
	blend      *imop.Blend
	every      int
}

// Option configures a renderer.
type Option func(*options)

// WithSize sets the terminal size in character cells instead of querying the terminal.
func WithSize(cols, rows int) Option {
	return func(o *options) {
		o.cols, o.rows = cols, rows
	}
}

// WithSeamColor changes the color of the overlaid seam.
func WithSeamColor(c color.Color) Option {
	return func(o *options) {
		o.seamColor = color.NRGBAModel.Convert(c).(color.NRGBA)
	}
}

// WithSeamBlend mixes the seam with the image using one of the imop blend modes
// instead of painting it over. Unknown modes are ignored.
func WithSeamBlend(mode string) Option {
	return func(o *options) {
		b := imop.NewBlend()
		if err := b.Set(mode); err == nil {
			o.blend = b
		}
	}
}

// WithoutSeam disables the seam overlay on carved frames.
func WithoutSeam() Option {
	return func(o *options) {
		o.showSeam = false
	}
}

// WithFrameSkip renders only one carved frame out of n, plus the last one of each axis.
// Energy frames are always rendered.
func WithFrameSkip(n int) Option {
	return func(o *options) {
		o.every = utils.Max(1, n)
	}
}

func newOptions(w io.Writer, opts []Option) options {
	o := options{
		seamColor: DefaultSeamColor,
		showSeam:  true,
		every:     1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cols <= 0 || o.rows <= 0 {
		o.cols, o.rows = TerminalSize(w)
	}
	return o
}

// skip reports whether the frame is dropped because of WithFrameSkip.
func (o options) skip(f seamcarver.Frame) bool {
	if f.Kind != seamcarver.FrameCarved || o.every <= 1 {
		return false
	}
	return f.Step%o.every != 0 && f.Step != f.Total
}

// TerminalSize returns the size in cells of the terminal behind w,
// falling back to 80x24 when w is not a terminal.
func TerminalSize(w io.Writer) (cols, rows int) {
	if f, ok := w.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) {
		if c, r, err := term.GetSize(int(f.Fd())); err == nil && c > 0 && r > 0 {
			return c, r
		}
	}
	return defaultCols, defaultRows
}

// FrameImage returns a copy of the frame content ready to be displayed:
// the energy map for debug frames, otherwise the carved image with the removed seam overlaid.
func FrameImage(f seamcarver.Frame, opts ...Option) *image.NRGBA {
	o := options{seamColor: DefaultSeamColor, showSeam: true}
	for _, opt := range opts {
		opt(&o)
	}
	return frameImage(f, o)
}

func frameImage(f seamcarver.Frame, o options) *image.NRGBA {
	if f.Kind == seamcarver.FrameEnergy && f.Energy != nil {
		return imaging.Clone(seamcarver.EnergyImage(f.Energy, f.Seam, f.Axis))
	}

	dst := imaging.Clone(f.Image)
	if !o.showSeam || len(f.Seam) == 0 {
		return dst
	}

	// The seam is given in the coordinates of the image before the removal,
	// so the points past the new edge are clamped onto it.
	b := dst.Bounds()
	points := f.Seam.Points(f.Axis)
	for i, p := range points {
		points[i] = image.Pt(utils.Clamp(p.X, 0, b.Dx()-1), utils.Clamp(p.Y, 0, b.Dy()-1))
	}

	if o.blend != nil {
		// A blend mode mixes every pixel it is drawn on, so only the seam points are drawn.
		op := imop.InitOp()
		_ = op.Set(imop.Dst)
		dot := image.NewNRGBA(image.Rect(0, 0, 1, 1))
		dot.SetNRGBA(0, 0, o.seamColor)
		for _, p := range points {
			op.Draw(dst.SubImage(image.Rect(p.X, p.Y, p.X+1, p.Y+1)).(*image.NRGBA), dot, o.blend)
		}
		return dst
	}

	mask := image.NewNRGBA(b)
	for _, p := range points {
		mask.SetNRGBA(p.X, p.Y, o.seamColor)
	}
	imop.InitOp().Draw(dst, mask, nil)
	return dst
}

// fit scales img down, preserving its aspect ratio, so that it is not larger than maxW x maxH.
func fit(img *image.NRGBA, maxW, maxH int) *image.NRGBA {
	b := img.Bounds()
	if maxW <= 0 || maxH <= 0 || (b.Dx() <= maxW && b.Dy() <= maxH) {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.NearestNeighbor)
}
