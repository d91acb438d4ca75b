package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/muesli/termenv"
	"github.com/pkg/errors"

	"github.com/esimov/seamcarver"
)

// upperHalfBlock paints the upper pixel with the foreground and the lower one with the background.
const upperHalfBlock = "▀"

// Blocks renders frames with colored half block characters, two image rows per terminal line.
type Blocks struct {
	out    *termenv.Output
	opts   options
	buf    bytes.Buffer
	inited bool
}

var _ seamcarver.RenderSink = (*Blocks)(nil)

// NewBlocks returns a half block renderer writing to w.
// The color profile is detected from w unless profile options are given to termenv.
func NewBlocks(w io.Writer, opts ...Option) *Blocks {
	return &Blocks{
		out:  termenv.NewOutput(w),
		opts: newOptions(w, opts),
	}
}

// NewBlocksWithProfile is like NewBlocks but forces the terminal color profile.
func NewBlocksWithProfile(w io.Writer, profile termenv.Profile, opts ...Option) *Blocks {
	return &Blocks{
		out:  termenv.NewOutput(w, termenv.WithProfile(profile)),
		opts: newOptions(w, opts),
	}
}

// Render draws the frame from the top left corner of the terminal.
func (b *Blocks) Render(f seamcarver.Frame) error {
	if b.opts.skip(f) {
		return nil
	}
	if !b.inited {
		b.out.HideCursor()
		b.out.ClearScreen()
		b.inited = true
	}

	// Keep the last terminal line free for the cursor.
	img := fit(frameImage(f, b.opts), b.opts.cols, (b.opts.rows-1)*2)

	b.buf.Reset()
	fmt.Fprintf(&b.buf, termenv.CSI+termenv.CursorPositionSeq, 1, 1)
	b.encode(&b.buf, img)
	fmt.Fprintf(&b.buf, termenv.CSI+termenv.EraseDisplaySeq, 0)

	if _, err := b.out.Write(b.buf.Bytes()); err != nil {
		return errors.Wrap(err, "could not write the preview frame")
	}
	return nil
}

// Close makes the cursor visible again.
func (b *Blocks) Close() error {
	if b.inited {
		b.out.ShowCursor()
	}
	return nil
}

func (b *Blocks) encode(w *bytes.Buffer, img *image.NRGBA) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			style := b.out.String(upperHalfBlock).Foreground(b.color(img.NRGBAAt(x, y)))
			if y+1 < bounds.Max.Y {
				style = style.Background(b.color(img.NRGBAAt(x, y+1)))
			}
			w.WriteString(style.String())
		}
		w.WriteString(termenv.CSI + termenv.EraseLineRightSeq + "\r\n")
	}
}

// color converts c to a terminal color, blending it over black according to its alpha.
func (b *Blocks) color(c color.NRGBA) termenv.Color {
	a := uint32(c.A)
	r, g, bl := uint32(c.R)*a/0xff, uint32(c.G)*a/0xff, uint32(c.B)*a/0xff
	return b.out.Color(fmt.Sprintf("#%02x%02x%02x", r, g, bl))
}
