package formats

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Faultbox/export3dy/pkg/blob"
)

// Verification errors.
var (
	ErrBlobSize    = errors.New("blob size does not match document")
	ErrFieldLength = errors.New("field length does not match vertex count")
	ErrOverlap     = errors.New("data blocks overlap")
	ErrFieldType   = errors.New("field has an unexpected scalar type")
	ErrFieldWidth  = errors.New("field has an unexpected component count")
	ErrLUTLength   = errors.New("lookup table length does not match its samples")
)

// Report summarizes a verified document.
type Report struct {
	Surfaces int
	Fields   int
	LUTs     int
	Vertices int
	Bytes    uint64
}

type block struct {
	owner string
	ref   blob.Ref
}

// Verify reads every data block referenced by the document back from the
// blob and checks it against its declaration: field lengths equal
// VertexCount x Components scalars, the fields of a mesh appear in write
// order, and no two blocks overlap.
func Verify(doc *Document, r io.ReaderAt, size uint64) (*Report, error) {
	if doc.DataBlocksFile.Bytes != size {
		return nil, fmt.Errorf("%w: document says %d bytes, blob has %d", ErrBlobSize, doc.DataBlocksFile.Bytes, size)
	}
	rep := &Report{Bytes: size}
	var blocks []block

	for _, s := range doc.Surfaces {
		rep.Surfaces++
		rep.Vertices += s.Mesh.VertexCount
		var prev uint64
		for _, f := range s.Mesh.Fields {
			owner := s.Name + "." + f.Name
			if err := checkFieldShape(f); err != nil {
				return nil, fmt.Errorf("%s: %w", owner, err)
			}
			n, err := readCount(r, size, f.DataBlock, f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", owner, err)
			}
			if want := s.Mesh.VertexCount * f.Components; n != want {
				return nil, fmt.Errorf("%w: %s has %d values, want %d", ErrFieldLength, owner, n, want)
			}
			if f.DataBlock.Address < prev {
				return nil, fmt.Errorf("%w: %s written before the previous field", ErrOverlap, owner)
			}
			prev = f.DataBlock.End()
			blocks = append(blocks, block{owner, f.DataBlock})
			rep.Fields++
		}
	}

	for _, m := range doc.Materials {
		for _, n := range m.Nodes {
			var luts []LUT
			if n.ColorRamp != nil {
				luts = append(luts, *n.ColorRamp)
			}
			if n.Curves != nil {
				luts = append(luts, n.Curves.R, n.Curves.G, n.Curves.B)
			}
			for _, l := range luts {
				owner := m.Name + "/" + n.Name
				count, err := readCount(r, size, l.DataBlock, l.Type)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", owner, err)
				}
				if count != l.Samples*l.Components {
					return nil, fmt.Errorf("%w: %s has %d values, want %d", ErrLUTLength, owner, count, l.Samples*l.Components)
				}
				blocks = append(blocks, block{owner, l.DataBlock})
				rep.LUTs++
			}
		}
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].ref.Address < blocks[j].ref.Address
	})
	for i := 1; i < len(blocks); i++ {
		if blocks[i].ref.Address < blocks[i-1].ref.End() {
			return nil, fmt.Errorf("%w: %s and %s", ErrOverlap, blocks[i-1].owner, blocks[i].owner)
		}
	}
	return rep, nil
}

// VerifyFile verifies a document against the blob it names.
func VerifyFile(docPath string) (*Document, *Report, error) {
	doc, err := ReadFile(docPath)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(doc.BlobPath(docPath))
	if err != nil {
		return doc, nil, fmt.Errorf("opening blob: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return doc, nil, fmt.Errorf("stat blob: %w", err)
	}
	rep, err := Verify(doc, f, uint64(info.Size()))
	return doc, rep, err
}

func checkFieldShape(f Field) error {
	want := map[string]struct {
		components int
		typ        blob.ScalarType
	}{
		FieldPosition:    {3, blob.Float},
		FieldNormal:      {3, blob.Float},
		FieldUV:          {2, blob.Float},
		FieldBoneIndices: {4, blob.UnsignedShort},
		FieldBoneWeights: {4, blob.Float},
	}
	w, ok := want[f.Name]
	if !ok {
		if f.Components < 1 || f.Components > 4 {
			return fmt.Errorf("%w: %d", ErrFieldWidth, f.Components)
		}
		return nil
	}
	if f.Components != w.components {
		return fmt.Errorf("%w: %d, want %d", ErrFieldWidth, f.Components, w.components)
	}
	if f.Type != w.typ {
		return fmt.Errorf("%w: %s, want %s", ErrFieldType, f.Type, w.typ)
	}
	return nil
}

// readCount decodes a block with its declared type and returns how many
// scalars it holds.
func readCount(r io.ReaderAt, size uint64, ref blob.Ref, t blob.ScalarType) (int, error) {
	switch t {
	case blob.Float:
		v, err := blob.Read[float32](r, size, ref)
		return len(v), err
	case blob.UnsignedShort:
		v, err := blob.Read[uint16](r, size, ref)
		return len(v), err
	case blob.UnsignedByte:
		v, err := blob.Read[uint8](r, size, ref)
		return len(v), err
	}
	return 0, fmt.Errorf("%w: %d", blob.ErrUnknownScalarType, uint8(t))
}
