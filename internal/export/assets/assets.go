// Package assets writes the image files referenced by exported materials
// and the environment next to the metadata document.
//
// Every image is handled on its own: a failure is returned in that image's
// Result and never stops the others.
package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"

	"github.com/Faultbox/export3dy/internal/diag"
	"github.com/Faultbox/export3dy/pkg/scene"
)

// Source is where the pixels of an image come from.
type Source string

const (
	SourceFile      Source = "file"
	SourcePacked    Source = "packed"
	SourceGenerated Source = "generated"
)

// Generated image encodings.
const (
	EncodePNG  = "png"
	EncodeWebP = "webp"
)

// Options control where and how images are written.
type Options struct {
	// OutputDir is the directory holding the metadata document.
	OutputDir string
	// SubDir is the directory, relative to OutputDir, receiving the images.
	SubDir string
	// SourceDir resolves relative image paths of the scene. A leading "//"
	// also refers to it.
	SourceDir string
	// Encoding is EncodePNG or EncodeWebP, used for generated images.
	Encoding string
	// Validate decodes the header of every written file.
	Validate bool
	// Claimed holds the lower cased paths already written in this run. A
	// name that is taken gets a numeric suffix, and the path finally used is
	// added. Nil disables the check.
	Claimed map[string]bool
}

// Result is the outcome of exporting one image.
type Result struct {
	Image  string
	Source Source
	// Path is relative to OutputDir, with forward slashes.
	Path string
	Err  error
}

// OK reports whether the image was written.
func (r Result) OK() bool {
	return r.Err == nil
}

// Warning converts a failed result into a warning.
func (r Result) Warning() diag.Warning {
	return diag.Warning{Kind: diag.KindAssetExport, Subject: "image " + r.Image, Err: r.Err}
}

// Export writes one image. Packed data wins over the file path; generated
// images are encoded.
func Export(img *scene.Image, opts Options) Result {
	res := Result{Image: img.Name}
	fail := func(err error) Result {
		res.Err = fmt.Errorf("%w: %w", diag.ErrAssetExport, err)
		return res
	}

	var (
		data []byte
		ext  string
		err  error
	)
	switch {
	case img.Packed != "":
		res.Source = SourcePacked
		data, err = img.PackedBytes()
		if err != nil {
			return fail(err)
		}
		ext = extension(img.FilePath)
		if ext == "" {
			ext = sniff(data)
		}
	case img.Generated != nil:
		res.Source = SourceGenerated
		data, err = encodeGenerated(img.Generated, opts.Encoding)
		if err != nil {
			return fail(err)
		}
		ext = "." + opts.Encoding
	case img.FilePath != "":
		res.Source = SourceFile
		ext = extension(img.FilePath)
	default:
		return fail(fmt.Errorf("image has no file, packed data or generator"))
	}

	base := fileName(img.Name)
	if strings.EqualFold(path.Ext(base), ext) {
		base = base[:len(base)-len(ext)]
	}
	rel := freePath(filepath.ToSlash(opts.SubDir), base, ext, opts.Claimed)
	dst := filepath.Join(opts.OutputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fail(err)
	}

	if res.Source == SourceFile {
		err = copyFile(resolve(img.FilePath, opts.SourceDir), dst)
	} else {
		err = os.WriteFile(dst, data, 0o644)
	}
	if err != nil {
		return fail(err)
	}

	if opts.Validate {
		if err := validate(dst); err != nil {
			_ = os.Remove(dst)
			return fail(err)
		}
	}
	if opts.Claimed != nil {
		opts.Claimed[strings.ToLower(rel)] = true
	}
	res.Path = rel
	return res
}

// freePath returns dir/base+ext, or dir/base_N+ext with the smallest N > 0
// when that path is claimed. Claims compare case-insensitively.
func freePath(dir, base, ext string, claimed map[string]bool) string {
	rel := path.Join(dir, base+ext)
	for n := 1; claimed[strings.ToLower(rel)]; n++ {
		rel = path.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
	}
	return rel
}

// resolve turns a scene image path into a file system path.
func resolve(p, sourceDir string) string {
	if rest, ok := strings.CutPrefix(p, "//"); ok {
		return filepath.Join(sourceDir, filepath.FromSlash(rest))
	}
	if filepath.IsAbs(p) || sourceDir == "" {
		return p
	}
	return filepath.Join(sourceDir, p)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func encodeGenerated(g *scene.GeneratedImage, encoding string) ([]byte, error) {
	if g.Width <= 0 || g.Height <= 0 {
		return nil, fmt.Errorf("generated image size %dx%d", g.Width, g.Height)
	}
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	c := color.NRGBA{R: channel(g.Color[0]), G: channel(g.Color[1]), B: channel(g.Color[2]), A: channel(g.Color[3])}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	switch encoding {
	case EncodePNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("png encode: %w", err)
		}
	case EncodeWebP:
		if err := nativewebp.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("webp encode: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown image encoding %q", encoding)
	}
	return buf.Bytes(), nil
}

func channel(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

func extension(p string) string {
	return strings.ToLower(path.Ext(filepath.ToSlash(p)))
}

// fileName makes an image name safe to use as a file name.
func fileName(name string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	if s := r.Replace(name); s != "" && s != "." && s != ".." {
		return s
	}
	return "image"
}
