package blob

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Read decodes the block at ref as a slice of T.
// size is the total blob length, used to reject references past its end.
func Read[T Scalar](r io.ReaderAt, size uint64, ref Ref) ([]T, error) {
	if ref.End() > size || ref.End() < ref.Address {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", ErrBlockOutOfRange, ref.Address, ref.End(), size)
	}
	count, err := ref.Count(TypeOf[T]())
	if err != nil {
		return nil, err
	}
	out := make([]T, count)
	if count == 0 {
		return out, nil
	}
	section := io.NewSectionReader(r, int64(ref.Address), int64(ref.Size))
	if err := binary.Read(section, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("reading block at %d: %w", ref.Address, err)
	}
	return out, nil
}
