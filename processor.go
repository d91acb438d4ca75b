package seamcarver

import (
	"context"
	"log/slog"
	"time"

	"github.com/esimov/seamcarver/utils"
	"github.com/pkg/errors"
)

// Processor options
type Processor struct {
	// WidthPercent and HeightPercent are the target sizes relative to the source, in [1, 100].
	WidthPercent  int
	HeightPercent int
	// Debug additionally emits a FrameEnergy before each seam removal.
	Debug bool
	// Sink, when set, observes every removed seam.
	Sink RenderSink
	// Logger receives the carving progress. Nil disables logging.
	Logger *slog.Logger
}

// Resize shrinks img in place by removing seams with the given percentages.
// It is a shorthand for a Processor without logging.
func Resize(img *Image, widthPercent, heightPercent int, sink RenderSink) error {
	p := &Processor{
		WidthPercent:  widthPercent,
		HeightPercent: heightPercent,
		Sink:          sink,
	}
	return p.Resize(img)
}

// TargetSize returns the dimensions an image of width x height is reduced to.
// The sizes are floored and never go below one pixel.
func TargetSize(width, height, widthPercent, heightPercent int) (int, int) {
	return utils.Max(1, width*widthPercent/100), utils.Max(1, height*heightPercent/100)
}

// Validate checks the percentages of the processor.
func (p *Processor) Validate() error {
	if err := validatePercent("width", p.WidthPercent); err != nil {
		return err
	}
	return validatePercent("height", p.HeightPercent)
}

func validatePercent(name string, pct int) error {
	if pct < 1 || pct > 100 {
		return errors.Wrapf(ErrInvalidArgument, "%s percentage %d is not between 1 and 100", name, pct)
	}
	return nil
}

// Resize is the main entry point of the carving operation.
// The width is reduced first by removing vertical seams, then the height by removing
// horizontal seams. The image is modified in place.
//
// A failing sink does not stop the carving: it is not called anymore and
// its error, matching ErrRenderFailed, is returned once the image has its final size.
func (p *Processor) Resize(img *Image) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if img == nil || img.Width() <= 0 || img.Height() <= 0 {
		return errors.WithStack(ErrInvalidImage)
	}

	var (
		now                 = time.Now()
		width, height       = img.Width(), img.Height()
		newWidth, newHeight = TargetSize(width, height, p.WidthPercent, p.HeightPercent)
	)
	p.log(slog.LevelInfo, "carving image",
		slog.Int("width", width), slog.Int("height", height),
		slog.Int("newWidth", newWidth), slog.Int("newHeight", newHeight),
	)

	r := &run{proc: p, carver: NewCarver(), sink: p.Sink}
	r.shrink(img, Vertical, width-newWidth)
	r.shrink(img, Horizontal, height-newHeight)

	p.log(slog.LevelInfo, "carving done",
		slog.Int("seams", r.removed), slog.Duration("elapsed", time.Since(now)),
	)
	if r.renderErr != nil {
		return errors.WithStack(r.renderErr)
	}
	return nil
}

// run holds the state of a single Resize call.
type run struct {
	proc      *Processor
	carver    *Carver
	sink      RenderSink
	removed   int
	renderErr *RenderError
}

// shrink removes count seams along axis.
func (r *run) shrink(img *Image, axis Axis, count int) {
	for step := 1; step <= count; step++ {
		energy, seam := r.carver.ComputeSeam(img, axis)

		if r.proc.Debug {
			r.render(Frame{
				Kind:   FrameEnergy,
				Step:   step,
				Total:  count,
				Axis:   axis,
				Image:  img,
				Seam:   seam,
				Energy: energy,
			})
		}

		RemoveSeam(img, seam, axis)
		r.removed++
		if r.proc.Logger != nil {
			r.proc.log(slog.LevelDebug, "seam removed",
				slog.String("axis", axis.String()), slog.Int("step", step), slog.Int("total", count),
				slog.Int64("energy", seam.Energy(energy, axis)),
			)
		}

		r.render(Frame{
			Kind:  FrameCarved,
			Step:  step,
			Total: count,
			Axis:  axis,
			Image: img,
			Seam:  seam,
		})
	}
}

func (r *run) render(frame Frame) {
	if r.sink == nil {
		return
	}
	if err := r.sink.Render(frame); err != nil {
		r.renderErr = &RenderError{Step: frame.Step, Axis: frame.Axis, Err: err}
		r.sink = nil
		r.proc.log(slog.LevelWarn, "preview disabled", slog.String("error", err.Error()))
	}
}

func (p *Processor) log(lvl slog.Level, msg string, attrs ...slog.Attr) {
	if p.Logger == nil {
		return
	}
	p.Logger.LogAttrs(context.Background(), lvl, msg, attrs...)
}
