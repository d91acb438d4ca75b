package preview

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mattn/go-sixel"
	"github.com/pkg/errors"

	"github.com/esimov/seamcarver"
)

// Approximate size in pixels of a terminal cell, used to bound the sixel image.
const (
	cellWidth  = 8
	cellHeight = 16
)

// Sixel renders frames as sixel graphics, for terminals supporting them.
type Sixel struct {
	w      io.Writer
	opts   options
	buf    bytes.Buffer
	inited bool
}

var _ seamcarver.RenderSink = (*Sixel)(nil)

// NewSixel returns a sixel renderer writing to w.
func NewSixel(w io.Writer, opts ...Option) *Sixel {
	return &Sixel{w: w, opts: newOptions(w, opts)}
}

// Render draws the frame from the top left corner of the terminal.
func (s *Sixel) Render(f seamcarver.Frame) error {
	if s.opts.skip(f) {
		return nil
	}

	img := fit(frameImage(f, s.opts), s.opts.cols*cellWidth, (s.opts.rows-1)*cellHeight)

	s.buf.Reset()
	if !s.inited {
		// clear the screen once, then only move the cursor home.
		s.buf.WriteString("\x1b[2J")
		s.inited = true
	}
	fmt.Fprint(&s.buf, "\x1b[H")

	enc := sixel.NewEncoder(&s.buf)
	enc.Dither = true
	if err := enc.Encode(img); err != nil {
		return errors.Wrap(err, "could not encode the sixel frame")
	}
	if _, err := s.w.Write(s.buf.Bytes()); err != nil {
		return errors.Wrap(err, "could not write the preview frame")
	}
	return nil
}
