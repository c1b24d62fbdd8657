package scene

import (
	"encoding/base64"
	"fmt"
)

// Image is an image datablock. Exactly one of FilePath, Packed or Generated
// describes where its pixels come from; Packed wins over FilePath, mirroring
// how authoring tools prefer embedded data.
type Image struct {
	Name      string          `yaml:"name"`
	FilePath  string          `yaml:"filepath"`
	Packed    string          `yaml:"packed"` // base64 encoded file bytes
	Generated *GeneratedImage `yaml:"generated"`
}

// GeneratedImage is a procedurally created, never saved, solid color image.
type GeneratedImage struct {
	Width  int        `yaml:"width"`
	Height int        `yaml:"height"`
	Color  [4]float32 `yaml:"color"`
}

// PackedBytes decodes the embedded file bytes.
func (img *Image) PackedBytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(img.Packed)
	if err != nil {
		return nil, fmt.Errorf("decoding packed image %s: %w", img.Name, err)
	}
	return data, nil
}
