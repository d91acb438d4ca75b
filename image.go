package seamcarver

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// alphaThreshold is the highest alpha value still treated as transparent by the carver.
const alphaThreshold = 244

// Pixel holds the four non-premultiplied 8-bit channels of an image point.
type Pixel struct {
	R, G, B, A uint8
}

// Transparent reports whether the pixel should be removed before any opaque content.
func (p Pixel) Transparent() bool {
	return p.A <= alphaThreshold
}

// PixelView is a read-only accessor over a two dimensional RGBA8 buffer.
// Coordinates outside of [0, Width()) x [0, Height()) are a programming error.
type PixelView interface {
	Width() int
	Height() int
	Get(x, y int) Pixel
}

// Image is a mutable RGBA8 buffer which shrinks in place when seams are removed.
// The backing Pix slice keeps its original stride, only the reported extent changes.
type Image struct {
	Pix    []uint8
	Stride int

	width  int
	height int
}

var (
	_ PixelView   = (*Image)(nil)
	_ image.Image = (*Image)(nil)
)

// NewImage allocates a fully transparent image with the given dimensions.
func NewImage(width, height int) *Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Image{
		Pix:    make([]uint8, width*height*4),
		Stride: width * 4,
		width:  width,
		height: height,
	}
}

// NewImageFromPix wraps an already decoded row-major RGBA8 buffer without copying it.
// The image takes ownership of pix, which is modified as seams are removed.
func NewImageFromPix(width, height int, pix []uint8) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidImage, "empty %dx%d buffer", width, height)
	}
	if len(pix) != width*height*4 {
		return nil, errors.Wrapf(ErrInvalidImage, "%d bytes given for a %dx%d buffer", len(pix), width, height)
	}
	return &Image{
		Pix:    pix,
		Stride: width * 4,
		width:  width,
		height: height,
	}, nil
}

// FromImage copies any image.Image into a new Image with its origin at (0, 0).
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	dst := NewImage(b.Dx(), b.Dy())

	switch src := src.(type) {
	case *image.NRGBA:
		rowSize := b.Dx() * 4
		for y := 0; y < dst.height; y++ {
			di := y * dst.Stride
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for y := 0; y < dst.height; y++ {
			di := y * dst.Stride
			for x := 0; x < dst.width; x++ {
				siy := src.YOffset(b.Min.X+x, b.Min.Y+y)
				sic := src.COffset(b.Min.X+x, b.Min.Y+y)
				r, g, bl := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = bl
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		draw.Draw(dst.NRGBA(), dst.Bounds(), src, b.Min, draw.Src)
	}
	return dst
}

// Width returns the current logical width.
func (img *Image) Width() int { return img.width }

// Height returns the current logical height.
func (img *Image) Height() int { return img.height }

// Get returns the pixel at (x, y).
func (img *Image) Get(x, y int) Pixel {
	i := y*img.Stride + x*4
	s := img.Pix[i : i+4 : i+4]
	return Pixel{R: s[0], G: s[1], B: s[2], A: s[3]}
}

// Set overwrites the pixel at (x, y).
func (img *Image) Set(x, y int, p Pixel) {
	i := y*img.Stride + x*4
	s := img.Pix[i : i+4 : i+4]
	s[0], s[1], s[2], s[3] = p.R, p.G, p.B, p.A
}

// ColorModel implements image.Image.
func (img *Image) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (img *Image) Bounds() image.Rectangle { return image.Rect(0, 0, img.width, img.height) }

// At implements image.Image.
func (img *Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(img.Bounds())) {
		return color.NRGBA{}
	}
	p := img.Get(x, y)
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}
}

// NRGBA returns an *image.NRGBA sharing the pixel buffer of img.
// Changes made through one are visible through the other.
func (img *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    img.Pix,
		Stride: img.Stride,
		Rect:   img.Bounds(),
	}
}

// Clone returns a compact deep copy of img.
func (img *Image) Clone() *Image {
	dst := NewImage(img.width, img.height)
	rowSize := img.width * 4
	for y := 0; y < img.height; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowSize], img.Pix[y*img.Stride:y*img.Stride+rowSize])
	}
	return dst
}
