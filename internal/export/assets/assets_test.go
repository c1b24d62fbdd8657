package assets

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"

	"github.com/Faultbox/export3dy/internal/diag"
	"github.com/Faultbox/export3dy/pkg/scene"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestExportFile(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	data := pngBytes(t, 4, 2)
	require.NoError(t, os.MkdirAll(filepath.Join(src, "tex"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "tex", "brick.png"), data, 0o644))

	res := Export(&scene.Image{Name: "Brick.png", FilePath: "//tex/brick.png"},
		Options{OutputDir: out, SubDir: "textures", SourceDir: src, Validate: true})
	require.NoError(t, res.Err)
	assert.True(t, res.OK())
	assert.Equal(t, SourceFile, res.Source)
	assert.Equal(t, "textures/Brick.png", res.Path)

	got, err := os.ReadFile(filepath.Join(out, "textures", "Brick.png"))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestExportPacked(t *testing.T) {
	out := t.TempDir()
	data := pngBytes(t, 3, 3)
	img := &scene.Image{Name: "Embedded", Packed: base64.StdEncoding.EncodeToString(data)}

	res := Export(img, Options{OutputDir: out, SubDir: "textures", Validate: true})
	require.NoError(t, res.Err)
	assert.Equal(t, SourcePacked, res.Source)
	assert.Equal(t, "textures/Embedded.png", res.Path)

	got, err := os.ReadFile(filepath.Join(out, "textures", "Embedded.png"))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestExportPackedWinsOverFile(t *testing.T) {
	out := t.TempDir()
	img := &scene.Image{
		Name:     "Both",
		FilePath: "/does/not/exist.png",
		Packed:   base64.StdEncoding.EncodeToString(pngBytes(t, 1, 1)),
	}
	res := Export(img, Options{OutputDir: out})
	require.NoError(t, res.Err)
	assert.Equal(t, SourcePacked, res.Source)
	assert.Equal(t, "Both.png", res.Path)
}

func TestExportClaimedNames(t *testing.T) {
	out := t.TempDir()
	claimed := make(map[string]bool)
	opts := Options{OutputDir: out, SubDir: "textures", Encoding: EncodePNG, Claimed: claimed}

	one := Export(&scene.Image{Name: "wood/oak", Packed: base64.StdEncoding.EncodeToString([]byte("ONE"))}, opts)
	two := Export(&scene.Image{Name: "wood_oak", Packed: base64.StdEncoding.EncodeToString([]byte("TWO"))}, opts)
	three := Export(&scene.Image{Name: "WOOD_OAK", Packed: base64.StdEncoding.EncodeToString([]byte("THREE"))}, opts)
	require.NoError(t, one.Err)
	require.NoError(t, two.Err)
	require.NoError(t, three.Err)

	assert.Equal(t, "textures/wood_oak.bin", one.Path)
	assert.Equal(t, "textures/wood_oak_1.bin", two.Path)
	assert.Equal(t, "textures/WOOD_OAK_2.bin", three.Path)
	assert.Len(t, claimed, 3)

	for want, p := range map[string]string{"ONE": one.Path, "TWO": two.Path} {
		got, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(p)))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestExportGenerated(t *testing.T) {
	gen := &scene.GeneratedImage{Width: 8, Height: 4, Color: [4]float32{1, 0.5, 0, 1}}

	t.Run("png", func(t *testing.T) {
		out := t.TempDir()
		res := Export(&scene.Image{Name: "Untitled", Generated: gen},
			Options{OutputDir: out, Encoding: EncodePNG, Validate: true})
		require.NoError(t, res.Err)
		assert.Equal(t, SourceGenerated, res.Source)
		assert.Equal(t, "Untitled.png", res.Path)

		f, err := os.Open(filepath.Join(out, res.Path))
		require.NoError(t, err)
		defer f.Close()
		img, err := png.Decode(f)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
		r, g, b, a := img.At(3, 2).RGBA()
		assert.Equal(t, []uint32{0xffff, 0x8080, 0, 0xffff}, []uint32{r, g, b, a})
	})

	t.Run("webp", func(t *testing.T) {
		out := t.TempDir()
		res := Export(&scene.Image{Name: "Untitled", Generated: gen},
			Options{OutputDir: out, Encoding: EncodeWebP, Validate: true})
		require.NoError(t, res.Err)
		assert.Equal(t, "Untitled.webp", res.Path)

		f, err := os.Open(filepath.Join(out, res.Path))
		require.NoError(t, err)
		defer f.Close()
		cfg, err := webp.DecodeConfig(f)
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.Width)
		assert.Equal(t, 4, cfg.Height)
	})

	t.Run("bad size", func(t *testing.T) {
		res := Export(&scene.Image{Name: "Empty", Generated: &scene.GeneratedImage{}},
			Options{OutputDir: t.TempDir(), Encoding: EncodePNG})
		assert.ErrorIs(t, res.Err, diag.ErrAssetExport)
	})

	t.Run("unknown encoding", func(t *testing.T) {
		res := Export(&scene.Image{Name: "X", Generated: gen},
			Options{OutputDir: t.TempDir(), Encoding: "exr"})
		assert.ErrorContains(t, res.Err, "exr")
	})
}

func TestExportFailures(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "bad.png"), []byte("not an image at all"), 0o644))

	tests := []struct {
		name string
		img  scene.Image
	}{
		{"invalid data", scene.Image{Name: "Bad", FilePath: "bad.png"}},
		{"missing file", scene.Image{Name: "Gone", FilePath: "gone.png"}},
		{"no source", scene.Image{Name: "Nothing"}},
		{"bad base64", scene.Image{Name: "Broken", Packed: "!!!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			res := Export(&tt.img, Options{OutputDir: out, SourceDir: src, Validate: true})
			require.Error(t, res.Err)
			assert.False(t, res.OK())
			assert.ErrorIs(t, res.Err, diag.ErrAssetExport)
			assert.Empty(t, res.Path)

			w := res.Warning()
			assert.Equal(t, diag.KindAssetExport, w.Kind)
			assert.Equal(t, "image "+tt.img.Name, w.Subject)

			entries, err := os.ReadDir(out)
			require.NoError(t, err)
			assert.Empty(t, entries, "failed export must not leave files behind")
		})
	}
}

func TestSniff(t *testing.T) {
	assert.Equal(t, ".png", sniff(pngBytes(t, 1, 1)))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	ext, cfg, err := probe(buf.Bytes(), ".png")
	require.NoError(t, err)
	assert.Equal(t, ".png", ext)
	assert.Equal(t, 1, cfg.Width)

	_, _, err = probe([]byte("GIF89a"), ".jpeg")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		path, dir, want string
	}{
		{"//tex/a.png", "/src", filepath.Join("/src", "tex", "a.png")},
		{"tex/a.png", "/src", filepath.Join("/src", "tex/a.png")},
		{"tex/a.png", "", "tex/a.png"},
		{"/abs/a.png", "/src", "/abs/a.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolve(tt.path, tt.dir), tt.path)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "a_b_c", fileName("a/b:c"))
	assert.Equal(t, "image", fileName(""))
	assert.Equal(t, "image", fileName(".."))
	assert.Equal(t, "Wall Paint", fileName("Wall Paint"))
}
