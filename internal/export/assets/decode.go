package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

type decoder struct {
	ext    string
	config func(io.Reader) (image.Config, error)
}

// decoders are tried in this order when the extension does not pick one.
// TGA has no magic number and accepts almost anything, so it comes last.
var decoders = []decoder{
	{".png", png.DecodeConfig},
	{".jpg", jpeg.DecodeConfig},
	{".gif", gif.DecodeConfig},
	{".bmp", bmp.DecodeConfig},
	{".tif", tiff.DecodeConfig},
	{".webp", webp.DecodeConfig},
	{".tga", tga.DecodeConfig},
}

var aliases = map[string]string{
	".jpeg": ".jpg",
	".tiff": ".tif",
}

// decoderFor returns the decoder registered for a file extension.
func decoderFor(ext string) (decoder, bool) {
	if a, ok := aliases[ext]; ok {
		ext = a
	}
	for _, d := range decoders {
		if d.ext == ext {
			return d, true
		}
	}
	return decoder{}, false
}

// probe decodes the image header of data with the decoder of ext, or with
// each known decoder in turn when ext is unknown. It returns the extension
// of the decoder that succeeded.
func probe(data []byte, ext string) (string, image.Config, error) {
	if d, ok := decoderFor(ext); ok {
		cfg, err := d.config(bytes.NewReader(data))
		if err != nil {
			return "", image.Config{}, fmt.Errorf("not a valid %s image: %w", d.ext, err)
		}
		return d.ext, cfg, nil
	}
	for _, d := range decoders {
		if cfg, err := d.config(bytes.NewReader(data)); err == nil {
			return d.ext, cfg, nil
		}
	}
	return "", image.Config{}, fmt.Errorf("unrecognized image data")
}

// validate checks that the file at p holds an image of the type its
// extension names.
func validate(p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	// Headers are small; decoders never need more than the first block.
	head := make([]byte, 64<<10)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return err
	}
	if _, cfg, err := probe(head[:n], extension(p)); err != nil {
		return fmt.Errorf("validating %s: %w", filepath.Base(p), err)
	} else if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("validating %s: empty image", filepath.Base(p))
	}
	return nil
}

// sniff guesses an extension for packed data without a file name.
func sniff(data []byte) string {
	ext, _, err := probe(data, "")
	if err != nil {
		return ".bin"
	}
	return ext
}
