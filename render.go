package seamcarver

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// FrameKind tells what a Frame carries.
type FrameKind int

const (
	// FrameCarved is emitted once per removed seam, right after the removal.
	FrameCarved FrameKind = iota
	// FrameEnergy is emitted before a removal in debug mode and carries the energy map.
	FrameEnergy
)

// Frame is a snapshot of the carving process handed to a RenderSink.
// Image and Energy are owned by the Processor: a sink must not modify them
// nor keep them after Render returns.
type Frame struct {
	Kind FrameKind
	// Step counts the seams removed so far along Axis, starting from 1.
	Step  int
	Total int
	Axis  Axis
	// Image is the carved image for FrameCarved and the image about to be carved for FrameEnergy.
	Image *Image
	// Seam is expressed in the coordinates of the image before the removal.
	Seam   Seam
	Energy *EnergyMap
}

// RenderSink observes the carving process, typically to preview it.
type RenderSink interface {
	Render(Frame) error
}

// RenderFunc adapts an ordinary function to the RenderSink interface.
type RenderFunc func(Frame) error

// Render calls f(frame).
func (f RenderFunc) Render(frame Frame) error { return f(frame) }

type multiSink []RenderSink

// MultiSink forwards every frame to each sink in order.
// All sinks are invoked even if one of them fails; the errors are combined.
func MultiSink(sinks ...RenderSink) RenderSink {
	var ms multiSink
	for _, s := range sinks {
		if s != nil {
			ms = append(ms, s)
		}
	}
	return ms
}

func (ms multiSink) Render(frame Frame) error {
	var errs []error
	for _, s := range ms {
		if err := s.Render(frame); err != nil {
			errs = append(errs, err)
		}
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.WithStack(stderrors.Join(errs...))
	}
}
