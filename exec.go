package seamcarver

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/esimov/seamcarver/utils"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// isTerminal reports whether f is attached to a terminal.
var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Ops describes where Execute reads the images from and where it writes the results.
type Ops struct {
	// Src is a file, a directory, an image URL or PipeName for stdin.
	Src string
	// Dst is a file, a directory or PipeName for stdout.
	// An empty Dst discards the result, which is useful when only the preview matters.
	Dst      string
	PipeName string
	// Workers is the number of images processed concurrently in directory mode.
	Workers int
}

// Result holds the relevant information about one processed image.
type Result struct {
	Src, Dst string
	Err      error
}

// Execute carves the image, or every supported image of the directory, named by op.Src.
// report, when not nil, is called once per processed image from the calling goroutine.
//
// In directory mode the images are processed concurrently by op.Workers workers,
// each with its own copy of the Processor. The render sink is not used in this mode.
func (p *Processor) Execute(op *Ops, report func(Result)) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if report == nil {
		report = func(Result) {}
	}

	// Check if source path is a local image or URL.
	if utils.IsValidUrl(op.Src) {
		src, err := utils.DownloadImage(op.Src)
		if src != nil {
			defer os.Remove(src.Name())
			defer src.Close()
		}
		if err != nil {
			return errors.Wrap(err, "failed to load the source image")
		}
		res := Result{Src: op.Src, Dst: op.Dst}
		res.Err = p.processFile(op, src, op.Dst)
		report(res)
		return res.Err
	}

	var (
		fs  os.FileInfo
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if op.Src == op.PipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(op.Src)
	}
	if err != nil {
		return errors.Wrap(err, "failed to load the source image")
	}

	switch mode := fs.Mode(); {
	case mode.IsDir():
		if sameFile(op.Src, op.Dst) {
			return errors.Wrapf(ErrInvalidArgument, "the destination directory %q is the source directory", op.Dst)
		}
		return p.executeDir(op, report)
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0 || op.Src == op.PipeName:
		res := Result{Src: op.Src, Dst: op.Dst}
		res.Err = p.process(op, op.Src, op.Dst)
		report(res)
		return res.Err
	default:
		return errors.Errorf("unsupported source %q", op.Src)
	}
}

// executeDir processes recursively the image files of op.Src concurrently.
// The first error met is returned once every image has been processed.
func (p *Processor) executeDir(op *Ops, report func(Result)) error {
	if op.Dst == "" || op.Dst == op.PipeName {
		return errors.Wrap(ErrInvalidArgument, "a destination directory is required for a source directory")
	}
	if err := os.MkdirAll(op.Dst, 0755); err != nil {
		return errors.Wrap(err, "unable to create the destination directory")
	}

	workers := op.Workers
	// Limit the concurrently running workers to maxWorkers.
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
	}

	var wg sync.WaitGroup
	ch := make(chan Result)
	done := make(chan struct{})
	defer close(done)

	paths, errc := walkDir(done, op.Src, op.Dst, SupportedExtensions)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			proc := *p
			proc.Sink = nil
			proc.consumer(op, ch, done, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	var firstErr error
	for res := range ch {
		if res.Err != nil && firstErr == nil {
			firstErr = errors.Wrapf(res.Err, "could not process %s", res.Src)
		}
		report(res)
	}
	if err := <-errc; err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "could not walk the source directory")
	}
	return firstErr
}

// consumer reads the path names from the paths channel and carves the source images.
func (p *Processor) consumer(
	op *Ops,
	res chan<- Result,
	done <-chan struct{},
	paths <-chan string,
) {
	for src := range paths {
		rel, err := filepath.Rel(op.Src, src)
		if err != nil {
			rel = filepath.Base(src)
		}
		dst := filepath.Join(op.Dst, rel)
		if err = os.MkdirAll(filepath.Dir(dst), 0755); err == nil {
			err = p.process(op, src, dst)
		}

		select {
		case <-done:
			return
		case res <- Result{Src: src, Dst: dst, Err: err}:
		}
	}
}

// process opens the source path and carves the image into out.
// The destination is truncated before the source is decoded, so both must differ.
func (p *Processor) process(op *Ops, in, out string) error {
	if in != op.PipeName && out != op.PipeName && sameFile(in, out) {
		return errors.Wrapf(ErrInvalidArgument, "the destination %q would overwrite the source image", out)
	}
	src, err := op.openSource(in)
	if err != nil {
		return err
	}
	if f, ok := src.(*os.File); ok && f != os.Stdin {
		defer f.Close()
	}
	return p.processFile(op, src, out)
}

// processFile carves the image read from src into the out path.
// The destination file is removed if the image could not be produced.
func (p *Processor) processFile(op *Ops, src io.Reader, out string) error {
	format, err := FormatFromFilename(op.outputName(out))
	if err != nil {
		return err
	}
	dst, err := op.openDestination(out)
	if err != nil {
		return err
	}

	err = p.Process(src, dst, format)
	if f, ok := dst.(*os.File); ok && f != os.Stdout {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "could not close the destination file")
		}
		if err != nil && !errors.Is(err, ErrRenderFailed) {
			// remove the generated image file in case of an error
			if rerr := os.Remove(f.Name()); rerr != nil {
				p.log(slog.LevelWarn, "could not remove the destination file", slog.String("error", rerr.Error()))
			}
		}
	}
	return err
}

// outputName is the name the output format is derived from: empty for pipes and discarded results.
func (op *Ops) outputName(out string) string {
	if out == op.PipeName {
		return ""
	}
	return out
}

// openSource converts the source path to a readable file.
func (op *Ops) openSource(in string) (io.Reader, error) {
	if in == op.PipeName {
		if isTerminal(os.Stdin) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return os.Stdin, nil
	}
	src, err := os.Open(in)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open the source file")
	}
	return src, nil
}

// openDestination converts the destination path to a writable file.
func (op *Ops) openDestination(out string) (io.Writer, error) {
	switch out {
	case "":
		return io.Discard, nil
	case op.PipeName:
		if isTerminal(os.Stdout) {
			return nil, errors.New("`-` should be used with a pipe for stdout")
		}
		return os.Stdout, nil
	}
	dst, err := os.Create(out)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create the destination file")
	}
	return dst, nil
}

// sameFile reports whether the paths a and b name the same existing file or directory.
func sameFile(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	fa, err := os.Stat(a)
	if err != nil {
		return false
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported image on the returned channel.
// The skip directory, holding the results, is not visited.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan struct{},
	src, skip string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if f.IsDir() && path != src && filepath.Clean(path) == filepath.Clean(skip) {
				return filepath.SkipDir
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			if !utils.Contains(srcExts, strings.ToLower(filepath.Ext(f.Name()))) {
				return nil
			}

			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}
