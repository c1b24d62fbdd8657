// Package blob implements the append-only binary stream that backs every
// typed array referenced by a 3DY document.
//
// The stream has no header: a Ref ({Address, Size}) stored in the document is
// the only index into it. Scalars are written little-endian.
package blob

import (
	"errors"
	"fmt"
	"reflect"
)

// Blob errors.
var (
	ErrUnknownScalarType = errors.New("unknown scalar type")
	ErrMisalignedBlock   = errors.New("block size is not a multiple of the scalar size")
	ErrBlockOutOfRange   = errors.New("block lies outside the blob")
	ErrWriterClosed      = errors.New("blob writer is closed")
)

// ScalarType is the element type of a stored array.
type ScalarType uint8

const (
	Float         ScalarType = iota // 32-bit IEEE float
	UnsignedShort                   // 16-bit unsigned integer
	UnsignedByte                    // 8-bit unsigned integer
)

// Scalar is the set of Go types that map onto a ScalarType.
type Scalar interface {
	~float32 | ~uint16 | ~uint8
}

// TypeOf returns the ScalarType stored for T.
func TypeOf[T Scalar]() ScalarType {
	var zero T
	switch reflect.TypeOf(zero).Kind() {
	case reflect.Float32:
		return Float
	case reflect.Uint16:
		return UnsignedShort
	default:
		return UnsignedByte
	}
}

// Size returns the byte width of one scalar.
func (t ScalarType) Size() int {
	switch t {
	case Float:
		return 4
	case UnsignedShort:
		return 2
	case UnsignedByte:
		return 1
	default:
		return 0
	}
}

// String returns the name used in the metadata document.
func (t ScalarType) String() string {
	switch t {
	case Float:
		return "Float"
	case UnsignedShort:
		return "UnsignedShort"
	case UnsignedByte:
		return "UnsignedByte"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t ScalarType) MarshalText() ([]byte, error) {
	if t.Size() == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScalarType, uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ScalarType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Float":
		*t = Float
	case "UnsignedShort":
		*t = UnsignedShort
	case "UnsignedByte":
		*t = UnsignedByte
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScalarType, text)
	}
	return nil
}

// Ref locates a block inside the blob.
type Ref struct {
	Address uint64 `json:"Address" yaml:"Address"`
	Size    uint64 `json:"Size" yaml:"Size"`
}

// End returns the first byte after the block.
func (r Ref) End() uint64 {
	return r.Address + r.Size
}

// Count returns the number of scalars of type t held by the block.
func (r Ref) Count(t ScalarType) (int, error) {
	size := t.Size()
	if size == 0 {
		return 0, fmt.Errorf("%w: %d", ErrUnknownScalarType, uint8(t))
	}
	if r.Size%uint64(size) != 0 {
		return 0, fmt.Errorf("%w: %d bytes of %s", ErrMisalignedBlock, r.Size, t)
	}
	return int(r.Size / uint64(size)), nil
}
