package seamcarver

import (
	"io"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// SupportedExtensions lists the file extensions the decoder recognizes.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Decode reads an image, applying its EXIF orientation, and converts it to an Image.
func Decode(r io.Reader) (*Image, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "could not decode the source image")
	}
	return FromImage(src), nil
}

// FormatFromFilename returns the output format matching the file extension.
// An empty name selects JPEG, the format used for pipes.
func FormatFromFilename(name string) (imaging.Format, error) {
	if name == "" {
		return imaging.JPEG, nil
	}
	f, err := imaging.FormatFromFilename(name)
	if err != nil {
		return f, errors.Wrapf(err, "unsupported output file %q", name)
	}
	return f, nil
}

// Encode writes img in the given format. JPEG images are encoded at full quality.
func Encode(w io.Writer, img *Image, format imaging.Format) error {
	if err := imaging.Encode(w, img, format, imaging.JPEGQuality(100)); err != nil {
		return errors.Wrapf(err, "could not encode the image as %v", format)
	}
	return nil
}

// Process decodes the image read from r, carves it and encodes the result into w.
// Render failures are returned after the image has been encoded.
func (p *Processor) Process(r io.Reader, w io.Writer, format imaging.Format) error {
	img, err := Decode(r)
	if err != nil {
		return err
	}

	resizeErr := p.Resize(img)
	if resizeErr != nil && !errors.Is(resizeErr, ErrRenderFailed) {
		return resizeErr
	}
	if err := Encode(w, img, format); err != nil {
		return err
	}
	return resizeErr
}
