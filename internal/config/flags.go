package config

import "flag"

// Flags holds the command line overrides of one subcommand.
type Flags struct {
	Config      string
	Debug       bool
	Output      string
	Name        string
	Format      string
	Indent      int
	ImageFormat string
	NoValidate  bool
	NoMaterials bool
	NoLights    bool
	NoAnimation bool
	Quiet       bool
}

// RegisterFlags defines the configuration flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Output, "o", "", "Output directory")
	fs.StringVar(&f.Name, "name", "", "Base name of the document and blob (default: scene name)")
	fs.StringVar(&f.Format, "format", "", "Document format: json or yaml")
	fs.IntVar(&f.Indent, "indent", -1, "Document indentation (0 = compact)")
	fs.StringVar(&f.ImageFormat, "image-format", "", "Encoding of generated images: png or webp")
	fs.BoolVar(&f.NoValidate, "no-validate", false, "Skip decoding exported images")
	fs.BoolVar(&f.NoMaterials, "no-materials", false, "Skip materials, textures and environment")
	fs.BoolVar(&f.NoLights, "no-lights", false, "Skip lights")
	fs.BoolVar(&f.NoAnimation, "no-animation", false, "Skip animation curves")
	fs.BoolVar(&f.Quiet, "q", false, "Hide the progress bar")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Output != "" {
		cfg.Output.Dir = f.Output
	}
	if f.Name != "" {
		cfg.Output.Name = f.Name
	}
	if f.Format != "" {
		cfg.Output.Format = f.Format
	}
	if f.Indent >= 0 {
		cfg.Output.Indent = f.Indent
	}
	if f.ImageFormat != "" {
		cfg.Textures.Format = f.ImageFormat
	}
	if f.NoValidate {
		cfg.Textures.Validate = false
	}
	if f.NoMaterials {
		cfg.Export.Materials = false
	}
	if f.NoLights {
		cfg.Export.Lights = false
	}
	if f.NoAnimation {
		cfg.Export.Animations = false
	}
	if f.Quiet {
		cfg.Export.Progress = false
	}
}
