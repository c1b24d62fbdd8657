// export3dy converts scene snapshots into 3DY documents and inspects the
// result.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/export3dy/internal/config"
	"github.com/Faultbox/export3dy/internal/diag"
	"github.com/Faultbox/export3dy/internal/export"
	"github.com/Faultbox/export3dy/internal/logger"
	"github.com/Faultbox/export3dy/pkg/formats"
	"github.com/Faultbox/export3dy/pkg/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "export", "x":
		err = cmdExport(args)
	case "inspect", "verify":
		err = cmdInspect(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`export3dy - 3D scene exporter for the 3DY interchange format

Usage:
  export3dy <command> [options]

Commands:
  export [options] <scene.yaml>   Export a scene snapshot to a document and blob
  inspect <document>              Verify a document against its blob
  config [options]                Print the effective configuration

Examples:
  export3dy export -o build scene.yaml
  export3dy export -format yaml -image-format webp -no-lights scene.yaml
  export3dy inspect build/scene.json
  export3dy config -config export3dy.toml -save ~/.config/export3dy/config.yaml`)
}

// setup parses the flags of a subcommand and loads the configuration.
func setup(name string, args []string, extra func(fs *flag.FlagSet)) (*flag.FlagSet, *config.Config, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	if extra != nil {
		extra(fs)
	}
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, err
	}
	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
		fileCfg.JSON = cfg.Logging.JSON
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true); err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return fs, cfg, nil
}

func cmdExport(args []string) error {
	fs, cfg, err := setup("export", args, nil)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: export3dy export [options] <scene.yaml>")
		os.Exit(1)
	}

	scenePath := fs.Arg(0)
	snap, err := scene.Load(scenePath)
	if err != nil {
		return err
	}

	opts, err := exportOptions(cfg, snap, scenePath)
	if err != nil {
		return err
	}

	var pb *progressbar.ProgressBar
	if cfg.Export.Progress {
		opts.Progress = func(done, total int) {
			if pb == nil {
				pb = progressbar.Default(int64(total), "exporting")
			}
			pb.Set(done)
		}
	}

	res, err := export.Run(snap, opts)
	if pb != nil {
		pb.Close()
	}
	if err != nil {
		logger.Error("export failed", zap.String("kind", string(diag.KindOf(err))), zap.Error(err))
		return err
	}

	doc := res.Document
	fmt.Printf("Document:  %s\n", res.DocumentPath)
	fmt.Printf("Blob:      %s (%d bytes)\n", res.BlobPath, doc.DataBlocksFile.Bytes)
	fmt.Printf("Surfaces:  %d\n", len(doc.Surfaces))
	fmt.Printf("Skeletons: %d\n", len(doc.Skeletons))
	fmt.Printf("Materials: %d\n", len(doc.Materials))
	fmt.Printf("Textures:  %d\n", len(doc.Textures))
	fmt.Printf("Lights:    %d\n", len(doc.Lights))
	fmt.Printf("Actions:   %d\n", len(doc.Actions))
	if len(res.Warnings) > 0 {
		fmt.Printf("\n%d warning(s):\n", len(res.Warnings))
		for _, w := range res.Warnings {
			fmt.Printf("  %s\n", w.Error())
		}
	}
	return nil
}

// exportOptions maps the configuration onto an export run of snap.
func exportOptions(cfg *config.Config, snap *scene.Snapshot, scenePath string) (export.Options, error) {
	format, err := formats.ParseFormat(cfg.Output.Format)
	if err != nil {
		return export.Options{}, err
	}

	name := cfg.Output.Name
	if name == "" {
		name = snap.Name
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(scenePath), filepath.Ext(scenePath))
	}

	opts := export.DefaultOptions()
	opts.OutputDir = cfg.Output.Dir
	opts.BaseName = name
	opts.Format = format
	opts.Indent = cfg.Output.Indent
	opts.TextureDir = cfg.Textures.Dir
	opts.SourceDir = filepath.Dir(scenePath)
	opts.ImageEncoding = strings.ToLower(cfg.Textures.Format)
	opts.ValidateImages = cfg.Textures.Validate
	opts.Materials = cfg.Export.Materials
	opts.Lights = cfg.Export.Lights
	opts.Animations = cfg.Export.Animations
	return opts, nil
}

func cmdInspect(args []string) error {
	fs, _, err := setup("inspect", args, nil)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: export3dy inspect <document>")
		os.Exit(1)
	}

	doc, report, err := formats.VerifyFile(fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Printf("Document:  %s\n", fs.Arg(0))
	fmt.Printf("Blob:      %s (%d bytes)\n", doc.DataBlocksFile.Path, report.Bytes)
	fmt.Printf("Surfaces:  %d (%d fields, %d vertices)\n", report.Surfaces, report.Fields, report.Vertices)
	fmt.Printf("Tables:    %d\n", report.LUTs)
	fmt.Println()
	for _, s := range doc.Surfaces {
		fmt.Printf("  %-24s %6d triangles %7d vertices\n", s.Name, s.Mesh.TriangleCount, s.Mesh.VertexCount)
		for _, f := range s.Mesh.Fields {
			fmt.Printf("    %-14s %dx%-14s @%d +%d\n", f.Name, f.Components, f.Type, f.DataBlock.Address, f.DataBlock.Size)
		}
	}
	fmt.Println("OK")
	return nil
}

func cmdConfig(args []string) error {
	var save string
	var asTOML bool
	_, cfg, err := setup("config", args, func(fs *flag.FlagSet) {
		fs.StringVar(&save, "save", "", "Write the effective config to this path")
		fs.BoolVar(&asTOML, "toml", false, "Print as TOML")
	})
	if err != nil {
		return err
	}

	if save != "" {
		if err := cfg.SaveTo(save); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Saved %s\n", save)
		return nil
	}

	data, err := cfg.Marshal(asTOML)
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	return nil
}
