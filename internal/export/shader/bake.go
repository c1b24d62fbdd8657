package shader

import (
	"go.uber.org/zap"

	"github.com/Faultbox/export3dy/internal/diag"
	"github.com/Faultbox/export3dy/pkg/blob"
	"github.com/Faultbox/export3dy/pkg/formats"
)

// alphaOutput is the ramp output whose use adds a fourth channel to the
// baked table.
const alphaOutput = "Alpha"

// bake writes the lookup tables of ramp and curve nodes in node order.
func (f *flattener) bake(w *blob.Writer, out *formats.Material) error {
	for i, c := range f.nodes {
		node := &out.Nodes[i]
		switch p := c.payload.(type) {
		case RampPayload:
			alpha := c.alpha
			lut, err := writeLUT(w, BakeRamp(&p.Ramp, formats.LUTSamples, alpha))
			if err != nil {
				return diag.IOError("baking ramp "+node.Name, err)
			}
			lut.Components = 3
			if alpha {
				lut.Components = 4
			}
			node.ColorRamp = &lut
			f.log.Debug("baked color ramp", zap.String("node", node.Name), zap.Bool("alpha", alpha))

		case CurvesPayload:
			tables := BakeCurves(&p.Mapping, formats.LUTSamples)
			var luts [3]formats.LUT
			for ch := range tables {
				lut, err := writeLUT(w, tables[ch])
				if err != nil {
					return diag.IOError("baking curves "+node.Name, err)
				}
				lut.Components = 1
				luts[ch] = lut
			}
			node.Curves = &formats.CurveLUTs{R: luts[0], G: luts[1], B: luts[2]}
			f.log.Debug("baked curves", zap.String("node", node.Name))
		}
	}
	return nil
}

func writeLUT(w *blob.Writer, data []uint16) (formats.LUT, error) {
	ref, err := blob.Append(w, data)
	if err != nil {
		return formats.LUT{}, err
	}
	return formats.LUT{DataBlock: ref, Type: blob.UnsignedShort, Samples: formats.LUTSamples}, nil
}
