package main

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esimov/seamcarver"
	"github.com/esimov/seamcarver/preview"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&options{})
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stderr.String(), err
}

func writeSource(t *testing.T, dir string) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 32), B: 0x40, A: 0xff})
		}
	}
	path := filepath.Join(dir, "src.png")
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestCLI_Resize(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir)
	dst := filepath.Join(dir, "dst.png")

	stderr, err := execute(t, "--file", src, "--out", dst, "--width", "50", "--height", "75", "--preview", "none")
	require.NoError(t, err)
	assert.Contains(t, stderr, "dst.png")
	assert.Contains(t, stderr, "Execution time")

	img, err := imaging.Open(dst)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestCLI_PercentageValidation(t *testing.T) {
	src := writeSource(t, t.TempDir())

	for _, args := range [][]string{
		{"--width", "0"},
		{"--width", "101"},
		{"--height=-5"},
		{"--height", "200"},
		{"--width", "12.5"},
	} {
		_, err := execute(t, append([]string{"--file", src}, args...)...)
		assert.True(t, errors.Is(err, seamcarver.ErrInvalidArgument), "%v: %v", args, err)
	}
}

func TestCLI_FileIsRequired(t *testing.T) {
	_, err := execute(t, "--width", "50")
	assert.Error(t, err)
}

func TestCLI_UnknownPreviewMode(t *testing.T) {
	src := writeSource(t, t.TempDir())
	_, err := execute(t, "--file", src, "--preview", "kitty")
	assert.True(t, errors.Is(err, seamcarver.ErrInvalidArgument))
}

func TestCLI_NewSink(t *testing.T) {
	var out, status bytes.Buffer

	s, err := newSink(previewAuto, &out, &status)
	require.NoError(t, err)
	// Neither writer is a terminal: nothing is drawn.
	assert.Nil(t, s.preview)
	assert.Nil(t, s.spinner)

	s, err = newSink(previewBlocks, &out, &status)
	require.NoError(t, err)
	assert.IsType(t, &preview.Blocks{}, s.preview)

	s, err = newSink(previewSixel, &out, &status)
	require.NoError(t, err)
	assert.IsType(t, &preview.Sixel{}, s.preview)

	s, err = newSink(previewNone, &out, &status)
	require.NoError(t, err)
	assert.Nil(t, s.preview)
	assert.NoError(t, s.Render(seamcarver.Frame{Kind: seamcarver.FrameCarved, Step: 1, Total: 2}))
	assert.NoError(t, s.Close())
}

func TestCLI_PrintError(t *testing.T) {
	var buf bytes.Buffer
	err := errors.Wrap(seamcarver.ErrInvalidImage, "loading")

	printError(&buf, err, false)
	assert.Contains(t, buf.String(), "loading: invalid image")

	buf.Reset()
	printError(&buf, err, true)
	// The debug output carries the stack trace.
	assert.Contains(t, buf.String(), "TestCLI_PrintError")
}

func TestCLI_WatchInterrupt(t *testing.T) {
	s, err := newSink(previewNone, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)

	done := make(chan struct{})
	returned := make(chan struct{})
	go func() {
		defer close(returned)
		watchInterrupt(make(chan os.Signal), done, s, func(int) { t.Error("unexpected exit") })
	}()
	close(done)
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("the interrupt watcher is still running")
	}

	sig := make(chan os.Signal, 1)
	sig <- os.Interrupt
	code := -1
	watchInterrupt(sig, make(chan struct{}), s, func(c int) { code = c })
	assert.Equal(t, 1, code)
	assert.True(t, s.closed)
}

func TestCLI_SinkCloseWhileRendering(t *testing.T) {
	var out bytes.Buffer
	s, err := newSink(previewBlocks, &out, &bytes.Buffer{})
	require.NoError(t, err)

	img := seamcarver.NewImage(4, 4)
	frame := seamcarver.Frame{Kind: seamcarver.FrameCarved, Image: img, Total: 50}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 50; i++ {
			frame.Step = i
			assert.NoError(t, s.Render(frame))
		}
	}()
	assert.NoError(t, s.Close())
	wg.Wait()

	// Nothing is drawn once the sink is closed.
	n := out.Len()
	assert.NoError(t, s.Render(frame))
	assert.Equal(t, n, out.Len())
}
