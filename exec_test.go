package seamcarver

import (
	"bytes"
	"image/jpeg"
	"image/png"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, path string, seed int64, width, height int) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	img := randomImage(rand.New(rand.NewSource(seed)), width, height)
	require.NoError(t, imaging.Save(img, path))
}

func TestExec_File(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")
	writeTestImage(t, src, 1, 12, 10)

	p := &Processor{WidthPercent: 50, HeightPercent: 50}
	var results []Result
	err := p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-"}, func(r Result) {
		results = append(results, r)
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, dst, results[0].Dst)

	img, err := imaging.Open(dst)
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
	assert.Equal(t, 5, img.Bounds().Dy())
}

func TestExec_DiscardsResultWithoutDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writeTestImage(t, src, 2, 6, 6)

	var frames int
	p := &Processor{
		WidthPercent:  50,
		HeightPercent: 100,
		Sink: RenderFunc(func(Frame) error {
			frames++
			return nil
		}),
	}
	require.NoError(t, p.Execute(&Ops{Src: src, PipeName: "-"}, nil))
	assert.Equal(t, 3, frames)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExec_UnsupportedDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writeTestImage(t, src, 3, 4, 4)

	p := &Processor{WidthPercent: 50, HeightPercent: 50}
	err := p.Execute(&Ops{Src: src, Dst: filepath.Join(dir, "dst.svg"), PipeName: "-"}, nil)
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "dst.svg"))
}

func TestExec_InvalidSourceImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0644))

	p := &Processor{WidthPercent: 50, HeightPercent: 50}
	assert.Error(t, p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-"}, nil))
	// No partial output is left behind.
	assert.NoFileExists(t, dst)
}

func TestExec_MissingSource(t *testing.T) {
	p := &Processor{WidthPercent: 50, HeightPercent: 50}
	err := p.Execute(&Ops{Src: filepath.Join(t.TempDir(), "missing.png"), PipeName: "-"}, nil)
	assert.Error(t, err)
}

func TestExec_InvalidPercentage(t *testing.T) {
	p := &Processor{WidthPercent: 0, HeightPercent: 50}
	err := p.Execute(&Ops{Src: "whatever.png", PipeName: "-"}, nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestExec_Directory(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	writeTestImage(t, filepath.Join(src, "a.png"), 4, 10, 8)
	writeTestImage(t, filepath.Join(src, "b.jpg"), 5, 8, 10)
	writeTestImage(t, filepath.Join(src, "nested", "c.png"), 6, 4, 4)
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("skip me"), 0644))

	var sinkCalls int
	p := &Processor{
		WidthPercent:  50,
		HeightPercent: 50,
		Sink: RenderFunc(func(Frame) error {
			sinkCalls++
			return nil
		}),
	}

	var got []string
	err := p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-", Workers: 2}, func(r Result) {
		assert.NoError(t, r.Err)
		rel, err := filepath.Rel(dst, r.Dst)
		require.NoError(t, err)
		got = append(got, rel)
	})
	require.NoError(t, err)

	sort.Strings(got)
	assert.Equal(t, []string{"a.png", "b.jpg", filepath.Join("nested", "c.png")}, got)
	// The preview is not used in directory mode.
	assert.Zero(t, sinkCalls)

	img, err := imaging.Open(filepath.Join(dst, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
	assert.NoFileExists(t, filepath.Join(dst, "notes.txt"))
}

func TestExec_DirectoryRequiresDestination(t *testing.T) {
	src := t.TempDir()
	writeTestImage(t, filepath.Join(src, "a.png"), 7, 4, 4)

	p := &Processor{WidthPercent: 50, HeightPercent: 50}
	err := p.Execute(&Ops{Src: src, PipeName: "-"}, nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestExec_URL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, randomImage(rand.New(rand.NewSource(8)), 10, 10)))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
	defer ts.Close()

	dst := filepath.Join(t.TempDir(), "dst.png")
	p := &Processor{WidthPercent: 70, HeightPercent: 100}
	require.NoError(t, p.Execute(&Ops{Src: ts.URL + "/image.png", Dst: dst, PipeName: "-"}, nil))

	img, err := imaging.Open(dst)
	require.NoError(t, err)
	assert.Equal(t, 7, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
}

func TestExec_DestinationIsSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writeTestImage(t, src, 10, 6, 6)

	p := &Processor{WidthPercent: 50, HeightPercent: 50}
	for _, dst := range []string{src, filepath.Join(dir, ".", "src.png")} {
		err := p.Execute(&Ops{Src: src, Dst: dst, PipeName: "-"}, nil)
		assert.True(t, errors.Is(err, ErrInvalidArgument), "%s: %v", dst, err)
	}

	err := p.Execute(&Ops{Src: dir, Dst: dir + string(filepath.Separator), PipeName: "-"}, nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument), "%v", err)

	// The source image is left untouched.
	img, err := imaging.Open(src)
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestExec_Pipes(t *testing.T) {
	var in bytes.Buffer
	require.NoError(t, png.Encode(&in, randomImage(rand.New(rand.NewSource(12)), 12, 6)))

	stdinR, stdinW, err := os.Pipe()
	require.NoError(t, err)
	stdoutR, stdoutW, err := os.Pipe()
	require.NoError(t, err)
	defer stdinR.Close()
	defer stdoutR.Close()

	stdin, stdout := os.Stdin, os.Stdout
	os.Stdin, os.Stdout = stdinR, stdoutW
	defer func() { os.Stdin, os.Stdout = stdin, stdout }()

	go func() {
		stdinW.Write(in.Bytes())
		stdinW.Close()
	}()
	outc := make(chan []byte, 1)
	go func() {
		b, _ := io.ReadAll(stdoutR)
		outc <- b
	}()

	p := &Processor{WidthPercent: 50, HeightPercent: 50}
	var results []Result
	err = p.Execute(&Ops{Src: "-", Dst: "-", PipeName: "-"}, func(r Result) {
		results = append(results, r)
	})
	stdoutW.Close()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "-", results[0].Dst)

	// Without a file name the result is encoded as JPEG.
	img, err := jpeg.Decode(bytes.NewReader(<-outc))
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
}

func TestExec_PipeRequiresRedirection(t *testing.T) {
	isTerm := isTerminal
	isTerminal = func(*os.File) bool { return true }
	defer func() { isTerminal = isTerm }()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writeTestImage(t, src, 13, 4, 4)

	p := &Processor{WidthPercent: 50, HeightPercent: 50}
	err := p.Execute(&Ops{Src: src, Dst: "-", PipeName: "-"}, nil)
	assert.ErrorContains(t, err, "with a pipe for stdout")

	err = p.Execute(&Ops{Src: "-", Dst: filepath.Join(dir, "dst.png"), PipeName: "-"}, nil)
	assert.ErrorContains(t, err, "with a pipe for stdin")
	assert.NoFileExists(t, filepath.Join(dir, "dst.png"))
}
