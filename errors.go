package seamcarver

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument is returned for percentages outside of [1, 100].
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidImage is returned for a nil image or one with a zero dimension.
	ErrInvalidImage = errors.New("invalid image")
	// ErrRenderFailed is matched by every error reported by a RenderSink.
	ErrRenderFailed = errors.New("render failed")
)

// RenderError records the step at which a RenderSink failed.
// The carving itself is not affected by it.
type RenderError struct {
	Step int
	Axis Axis
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%v after %s seam %d: %v", ErrRenderFailed, e.Axis, e.Step, e.Err)
}

// Unwrap returns the error reported by the sink.
func (e *RenderError) Unwrap() error { return e.Err }

// Is makes every RenderError match ErrRenderFailed.
func (e *RenderError) Is(target error) bool { return target == ErrRenderFailed }
