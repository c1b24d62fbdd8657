// Package lights converts light objects into document light records.
package lights

import (
	"fmt"

	"github.com/Faultbox/export3dy/pkg/formats"
	"github.com/Faultbox/export3dy/pkg/scene"
)

// Convert builds the record of one light object. Point lights become
// spheres of their soft shadow radius and area lights become rectangles.
func Convert(obj *scene.Object, l *scene.Light) (formats.Light, error) {
	out := formats.Light{
		Name:               obj.Name,
		Color:              l.Color,
		Strength:           l.Energy,
		WorldToLocalMatrix: obj.MatrixWorld.Mat4().Affine(),
	}
	switch l.Type {
	case scene.LightPoint:
		out.Type = formats.LightSphere
		out.Size = l.ShadowSoftSize
	case scene.LightArea:
		out.Type = formats.LightRectangle
		out.SizeX = l.Size
		out.SizeY = l.SizeY
		if out.SizeY == 0 {
			out.SizeY = l.Size
		}
	case scene.LightSun:
		out.Type = formats.LightSun
		out.Size = l.ShadowSoftSize
	case scene.LightSpot:
		out.Type = formats.LightSpot
		out.Size = l.ShadowSoftSize
		out.SpotAngle = l.SpotSize
		out.SpotBlend = l.SpotBlend
	default:
		return formats.Light{}, fmt.Errorf("light %s: unsupported type %q", obj.Name, l.Type)
	}
	return out, nil
}

// Collect converts every render visible light object of the scene, in
// scene order. Lights of unsupported types are reported through skip.
func Collect(s *scene.Snapshot, skip func(name string, err error)) []formats.Light {
	out := []formats.Light{}
	for i := range s.Objects {
		obj := &s.Objects[i]
		if obj.Kind != scene.KindLight || obj.HideRender {
			continue
		}
		data, ok := s.Light(obj.Data)
		if !ok {
			continue
		}
		l, err := Convert(obj, data)
		if err != nil {
			skip(obj.Name, err)
			continue
		}
		out = append(out, l)
	}
	return out
}
