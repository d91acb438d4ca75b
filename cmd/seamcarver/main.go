package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/esimov/seamcarver"
	"github.com/esimov/seamcarver/utils"
)

const HelpBanner = `
┌─┐┌─┐┌─┐┌┬┐┌─┐┌─┐┬─┐┬  ┬┌─┐┬─┐
└─┐├┤ ├─┤│││├┤ ├─┤├┬┘└┐┌┘├┤ ├┬┘
└─┘└─┘┴ ┴┴ ┴└─┘┴ ┴┴└─ └┘ └─┘┴└─

Content aware image resize tool.
    Version: %s
`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

type options struct {
	file    string
	out     string
	width   int
	height  int
	preview string
	debug   bool
	verbose bool
	workers int
}

func main() {
	opts := &options{}
	if err := newRootCmd(opts).Execute(); err != nil {
		printError(os.Stderr, err, opts.debug)
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           filepath.Base(os.Args[0]),
		Short:         "seamcarver shrinks images by removing their least noticeable seams",
		Long:          fmt.Sprintf(HelpBanner, Version),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "source image: a file, a directory, an URL or - for stdin")
	flags.StringVarP(&opts.out, "out", "o", "", "destination: a file, a directory or - for stdout (only previewed when empty)")
	flags.IntVar(&opts.width, "width", 100, "target width in percent of the source width (1-100)")
	flags.IntVar(&opts.height, "height", 100, "target height in percent of the source height (1-100)")
	flags.StringVar(&opts.preview, "preview", previewAuto, "terminal preview: auto, blocks, sixel or none")
	flags.BoolVar(&opts.debug, "debug", false, "preview the energy map and print the error stacks")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every removed seam")
	flags.IntVar(&opts.workers, "conc", runtime.NumCPU(), "number of files to process concurrently")
	_ = cmd.MarkFlagRequired("file")
	// Malformed values, like a fractional percentage, are invalid arguments too.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Wrap(seamcarver.ErrInvalidArgument, err.Error())
	})

	return cmd
}

// run carves the requested images. Images go to stdout, everything else to stderr.
func (o *options) run(stdout, stderr io.Writer) error {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	proc := &seamcarver.Processor{
		WidthPercent:  o.width,
		HeightPercent: o.height,
		Debug:         o.debug,
		Logger:        slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	}
	if err := proc.Validate(); err != nil {
		return err
	}

	// The preview shares the terminal with the image written on stdout, so it moves to stderr.
	previewOut := stdout
	if o.out == pipeName {
		previewOut = stderr
	}
	s, err := newSink(o.preview, previewOut, stderr)
	if err != nil {
		return err
	}
	proc.Sink = s

	// Capture CTRL-C signal and restores back the cursor visibility.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	defer func() {
		signal.Stop(signalChan)
		close(done)
	}()
	go watchInterrupt(signalChan, done, s, os.Exit)

	now := time.Now()
	s.Start()
	err = proc.Execute(&seamcarver.Ops{
		Src:      o.file,
		Dst:      o.out,
		PipeName: pipeName,
		Workers:  o.workers,
	}, func(res seamcarver.Result) {
		s.Pause()
		printStatus(stderr, res)
		s.Start()
	})
	s.Close()

	if errors.Is(err, seamcarver.ErrRenderFailed) {
		fmt.Fprintln(stderr, utils.DecorateText(fmt.Sprintf("The preview has been disabled: %v", err), utils.ErrorMessage))
		err = nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return nil
}

// watchInterrupt closes the sink and exits when a signal is received.
// It returns without doing anything once done is closed.
func watchInterrupt(sig <-chan os.Signal, done <-chan struct{}, s *cliSink, exit func(int)) {
	select {
	case <-sig:
		s.Close()
		exit(1)
	case <-done:
	}
}

// printStatus displays the relevant information about one processed image.
func printStatus(w io.Writer, res seamcarver.Result) {
	switch {
	case res.Err != nil && !errors.Is(res.Err, seamcarver.ErrRenderFailed):
		fmt.Fprintf(w, "%s %s\n",
			utils.DecorateText("✘ "+filepath.Base(res.Src), utils.ErrorMessage),
			utils.DecorateText(res.Err.Error(), utils.DefaultMessage),
		)
	case res.Dst == "" || res.Dst == pipeName:
	default:
		fmt.Fprintf(w, "%s %s\n",
			utils.DecorateText("✔ the image has been saved as:", utils.StatusMessage),
			utils.DecorateText(res.Dst, utils.SuccessMessage),
		)
	}
}

// printError prints err, along with its stack trace in debug mode.
func printError(w io.Writer, err error, debug bool) {
	if debug {
		fmt.Fprintf(w, "%+v\n", err)
		return
	}
	fmt.Fprintln(w, utils.DecorateText("Error resizing the image: "+err.Error(), utils.ErrorMessage))
}
