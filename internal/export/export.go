// Package export runs a complete export of a scene snapshot: it owns the
// blob and the metadata document of one run and sequences the conversion
// stages that fill them.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/export3dy/internal/diag"
	"github.com/Faultbox/export3dy/internal/export/anim"
	"github.com/Faultbox/export3dy/internal/export/assets"
	"github.com/Faultbox/export3dy/internal/export/hierarchy"
	"github.com/Faultbox/export3dy/internal/export/lights"
	"github.com/Faultbox/export3dy/internal/export/mesh"
	"github.com/Faultbox/export3dy/internal/export/shader"
	"github.com/Faultbox/export3dy/internal/export/skeleton"
	"github.com/Faultbox/export3dy/internal/logger"
	"github.com/Faultbox/export3dy/pkg/blob"
	"github.com/Faultbox/export3dy/pkg/formats"
	"github.com/Faultbox/export3dy/pkg/scene"
)

// ErrNoOutput is returned when Options do not name an output.
var ErrNoOutput = errors.New("no output directory or base name")

// Options control one export run.
type Options struct {
	// OutputDir receives the document, the blob and the texture directory.
	OutputDir string
	// BaseName is the file name of the document and blob, without extension.
	BaseName string
	Format   formats.Format
	Indent   int

	// TextureDir is relative to OutputDir.
	TextureDir string
	// SourceDir resolves relative image paths of the scene.
	SourceDir      string
	ImageEncoding  string
	ValidateImages bool

	Materials  bool
	Lights     bool
	Animations bool

	// Progress, when set, is called after every skeleton and surface.
	Progress func(done, total int)
}

// DefaultOptions exports everything as JSON into the current directory.
func DefaultOptions() Options {
	return Options{
		OutputDir:     ".",
		BaseName:      "scene",
		Format:        formats.FormatJSON,
		Indent:        1,
		TextureDir:    "textures",
		ImageEncoding: assets.EncodePNG,
		Materials:     true,
		Lights:        true,
		Animations:    true,
	}
}

// Result describes a finished run.
type Result struct {
	Document     *formats.Document
	Warnings     diag.Warnings
	DocumentPath string
	BlobPath     string
}

// exporter holds the state of one run. It is never shared.
type exporter struct {
	snap *scene.Snapshot
	opts Options
	w    *blob.Writer
	doc  *formats.Document
	log  *zap.Logger

	warnings  diag.Warnings
	skeletons map[string]*skeleton.Skeleton // by armature object name
	materials []string                      // in first use order
	images    map[string]string             // written image paths by image name
	claimed   map[string]bool
	done      int
	total     int
}

// Run exports snap. Structural failures abort the run and are returned;
// the partial files written so far are left in place. Recoverable problems
// are listed in Result.Warnings.
func Run(snap *scene.Snapshot, opts Options) (*Result, error) {
	if opts.OutputDir == "" || opts.BaseName == "" {
		return nil, ErrNoOutput
	}
	if opts.Format == "" {
		opts.Format = formats.FormatJSON
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene: %w", err)
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, diag.IOError("creating output directory", err)
	}

	res := &Result{
		DocumentPath: filepath.Join(opts.OutputDir, opts.BaseName+opts.Format.Ext()),
		BlobPath:     filepath.Join(opts.OutputDir, opts.BaseName+".bin"),
	}
	w, err := blob.Create(res.BlobPath)
	if err != nil {
		return nil, diag.IOError("opening blob", err)
	}

	e := &exporter{
		snap:      snap,
		opts:      opts,
		w:         w,
		doc:       formats.New(),
		log:       logger.Named("export").With(zap.String("scene", snap.Name)),
		skeletons: make(map[string]*skeleton.Skeleton),
		images:    make(map[string]string),
		claimed:   make(map[string]bool),
	}
	e.log.Info("export started", zap.String("document", res.DocumentPath))

	if err := e.run(); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, diag.IOError("closing blob", err)
	}
	e.doc.DataBlocksFile = formats.DataBlocksFile{
		Path:  filepath.Base(res.BlobPath),
		Bytes: w.Offset(),
	}
	if err := formats.WriteFile(res.DocumentPath, e.doc, opts.Indent); err != nil {
		return nil, diag.IOError("writing document", err)
	}

	e.warnings.Log(e.log)
	e.log.Info("export finished",
		zap.Int("surfaces", len(e.doc.Surfaces)),
		zap.Int("skeletons", len(e.doc.Skeletons)),
		zap.Int("materials", len(e.doc.Materials)),
		zap.Int("textures", len(e.doc.Textures)),
		zap.Int("actions", len(e.doc.Actions)),
		zap.Uint64("bytes", w.Offset()),
		zap.Int("warnings", len(e.warnings)))

	res.Document = e.doc
	res.Warnings = e.warnings
	return res, nil
}

func (e *exporter) run() error {
	for i := range e.snap.Objects {
		if hierarchy.Exported(&e.snap.Objects[i]) {
			e.total++
		}
	}

	if err := e.exportSkeletons(); err != nil {
		return err
	}
	if err := e.exportSurfaces(); err != nil {
		return err
	}
	if e.opts.Materials {
		if err := e.exportMaterials(); err != nil {
			return err
		}
		e.exportTextures()
		e.exportEnvironment()
	}
	if e.opts.Lights {
		e.doc.Lights = lights.Collect(e.snap, func(name string, err error) {
			e.warnings.Add("light "+name, err)
		})
	}
	if e.opts.Animations {
		e.exportActions()
	}
	e.doc.TransformHierarchy = hierarchy.Build(e.snap)
	for _, name := range hierarchy.Drifted(e.snap) {
		e.log.Warn("world matrix does not follow the hierarchy", zap.String("object", name))
	}
	return nil
}

func (e *exporter) step() {
	e.done++
	if e.opts.Progress != nil {
		e.opts.Progress(e.done, e.total)
	}
}

func (e *exporter) exportSkeletons() error {
	for i := range e.snap.Objects {
		obj := &e.snap.Objects[i]
		if obj.Kind != scene.KindArmature || !hierarchy.Exported(obj) {
			continue
		}
		arm, _ := e.snap.Armature(obj.Data)
		sk, err := skeleton.Build(obj, arm)
		if err != nil {
			return fmt.Errorf("armature object %s: %w", obj.Name, err)
		}
		e.skeletons[obj.Name] = sk
		e.doc.Skeletons = append(e.doc.Skeletons, sk.Doc)
		e.log.Debug("skeleton built", zap.String("object", obj.Name), zap.Int("bones", len(sk.Doc.Bones)))
		e.step()
	}
	return nil
}

func (e *exporter) exportSurfaces() error {
	used := make(map[string]bool)
	for i := range e.snap.Objects {
		obj := &e.snap.Objects[i]
		if obj.Kind != scene.KindMesh || !hierarchy.Exported(obj) {
			continue
		}
		m, _ := e.snap.Mesh(obj.Data)

		var bones map[string]int
		var skelName *string
		if obj.Armature != "" {
			if sk, ok := e.skeletons[obj.Armature]; ok {
				bones = sk.Index
				name := obj.Armature
				skelName = &name
			} else {
				e.warnings.Add("object "+obj.Name,
					fmt.Errorf("%w: armature %s is not exported", diag.ErrMissingBoneReference, obj.Armature))
			}
		}

		enc, err := mesh.Encode(e.w, m, bones)
		if err != nil {
			return fmt.Errorf("object %s: %w", obj.Name, err)
		}
		if len(enc.Unresolved) > 0 {
			e.log.Debug("vertex groups without bone", zap.String("object", obj.Name), zap.Strings("groups", enc.Unresolved))
		}

		surface := formats.Surface{
			Name:               obj.Name,
			CenterInLocal:      enc.Bounds.Center().Array(),
			Mesh:               enc.Mesh,
			WorldToLocalMatrix: formats.Matrix(obj.MatrixWorld.Mat4().Affine()),
			Skeleton:           skelName,
		}
		if mat := firstMaterial(obj); mat != "" {
			surface.Material = &mat
			if !used[mat] {
				used[mat] = true
				e.materials = append(e.materials, mat)
			}
		}
		e.doc.Surfaces = append(e.doc.Surfaces, surface)
		e.step()
	}
	return nil
}

// firstMaterial returns the material of the first filled slot. Surfaces
// carry a single material.
func firstMaterial(obj *scene.Object) string {
	for _, m := range obj.Materials {
		if m != "" {
			return m
		}
	}
	return ""
}

func (e *exporter) exportMaterials() error {
	for _, name := range e.materials {
		mat, ok := e.snap.Material(name)
		if !ok {
			e.warnings.Add("material "+name, fmt.Errorf("material %s not in scene", name))
			continue
		}
		out, warnings, err := shader.Flatten(e.w, e.snap, mat)
		e.warnings.Merge(warnings)
		if err != nil {
			return fmt.Errorf("material %s: %w", name, err)
		}
		e.doc.Materials = append(e.doc.Materials, *out)
	}
	return nil
}

func (e *exporter) exportTextures() {
	seen := make(map[string]bool)
	for _, mat := range e.doc.Materials {
		for _, n := range mat.Nodes {
			if n.Image == "" || seen[n.Image] {
				continue
			}
			seen[n.Image] = true
			if path, ok := e.exportImage(n.Image); ok {
				e.doc.Textures = append(e.doc.Textures, formats.Texture{Name: n.Image, Path: path})
			}
		}
	}
}

func (e *exporter) exportEnvironment() {
	world := e.snap.World
	if world == nil || world.Image == "" {
		return
	}
	if path, ok := e.exportImage(world.Image); ok {
		e.doc.Environment = &formats.Environment{Name: world.Name, Path: path}
	}
}

// exportImage writes one image and records a warning when it fails. An
// image is written once per run; later calls return its first path.
func (e *exporter) exportImage(name string) (string, bool) {
	if p, ok := e.images[name]; ok {
		return p, true
	}
	img, ok := e.snap.Image(name)
	if !ok {
		e.warnings.Add("image "+name, fmt.Errorf("%w: image not in scene", diag.ErrAssetExport))
		return "", false
	}
	res := assets.Export(img, assets.Options{
		OutputDir: e.opts.OutputDir,
		SubDir:    e.opts.TextureDir,
		SourceDir: e.opts.SourceDir,
		Encoding:  e.opts.ImageEncoding,
		Validate:  e.opts.ValidateImages,
		Claimed:   e.claimed,
	})
	if !res.OK() {
		e.warnings = append(e.warnings, res.Warning())
		return "", false
	}
	e.log.Debug("image exported", zap.String("image", name), zap.String("source", string(res.Source)), zap.String("path", res.Path))
	e.images[name] = res.Path
	return res.Path, true
}

func (e *exporter) exportActions() {
	for i := range e.snap.Objects {
		obj := &e.snap.Objects[i]
		if obj.Action == "" || !hierarchy.Exported(obj) {
			continue
		}
		act, _ := e.snap.Action(obj.Action)
		var bones map[string]int
		if sk, ok := e.skeletons[obj.Name]; ok {
			bones = sk.Index
		}
		out, stats := anim.Extract(obj, act, bones)
		if out == nil {
			e.log.Debug("action has no exportable curves", zap.String("object", obj.Name), zap.Int("dropped", stats.Dropped()))
			continue
		}
		e.doc.Actions = append(e.doc.Actions, *out)
	}
}
