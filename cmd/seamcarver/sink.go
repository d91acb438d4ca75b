package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/esimov/seamcarver"
	"github.com/esimov/seamcarver/preview"
	"github.com/esimov/seamcarver/utils"
)

// Preview modes accepted by the --preview flag.
const (
	previewAuto   = "auto"
	previewBlocks = "blocks"
	previewSixel  = "sixel"
	previewNone   = "none"
)

// progressWidth is the width in characters of the spinner progress bar.
const progressWidth = 24

type closer interface {
	Close() error
}

// cliSink shows the carving either as a terminal preview or,
// when no preview is drawn, as a spinner with a progress bar.
// Close may be called from a signal handler while a frame is rendered.
type cliSink struct {
	mu      sync.Mutex
	closed  bool
	preview seamcarver.RenderSink
	spinner *utils.Spinner
}

var _ seamcarver.RenderSink = (*cliSink)(nil)

// newSink selects the renderer for the preview mode.
// The preview is drawn on out and the spinner on status, both only when they are terminals.
func newSink(mode string, out, status io.Writer) (*cliSink, error) {
	s := &cliSink{}
	switch mode {
	case previewAuto:
		if isTerminal(out) {
			s.preview = preview.NewBlocks(out)
		}
	case previewBlocks:
		s.preview = preview.NewBlocks(out)
	case previewSixel:
		s.preview = preview.NewSixel(out)
	case previewNone:
	default:
		return nil, errors.Wrapf(seamcarver.ErrInvalidArgument, "unknown preview mode %q", mode)
	}

	if s.preview == nil && isTerminal(status) {
		msg := fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ SEAMCARVER", utils.StatusMessage),
			utils.DecorateText("⇢ resizing image (be patient, it may take a while)...", utils.DefaultMessage),
		)
		s.spinner = utils.NewSpinner(status, msg, 80*time.Millisecond, true)
	}
	return s, nil
}

// Render forwards the frame to the preview, or updates the spinner progress.
func (s *cliSink) Render(f seamcarver.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if s.preview != nil {
		return s.preview.Render(f)
	}
	if s.spinner != nil && f.Kind == seamcarver.FrameCarved {
		s.spinner.SetSuffix(fmt.Sprintf("%s seams %s %d/%d",
			f.Axis, utils.ProgressBar(f.Step, f.Total, progressWidth), f.Step, f.Total))
	}
	return nil
}

// Start starts the spinner, if any.
func (s *cliSink) Start() {
	if s.spinner != nil {
		s.spinner.Start()
	}
}

// Pause stops the spinner so that a status line can be printed. Start resumes it.
func (s *cliSink) Pause() {
	if s.spinner != nil {
		s.spinner.Stop()
	}
}

// Close stops the spinner and restores the terminal state changed by the preview.
func (s *cliSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.spinner != nil {
		s.spinner.Stop()
	}
	if c, ok := s.preview.(closer); ok {
		return c.Close()
	}
	return nil
}

// isTerminal reports whether w is attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
