package blob

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Writer appends typed arrays to a byte stream and hands back their location.
// The cursor only moves forward; a block is never rewritten.
//
// A Writer is owned by a single export run and is not safe for concurrent use.
type Writer struct {
	buf    *bufio.Writer
	closer io.Closer
	offset uint64
	closed bool
	// err is the first write failure. Once set, the cursor no longer matches
	// the stream and every later Append returns it.
	err error
}

// NewWriter returns a Writer appending to w, starting at offset 0.
func NewWriter(w io.Writer) *Writer {
	bw := &Writer{buf: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		bw.closer = c
	}
	return bw
}

// Create truncates or creates the file at path and returns a Writer on it.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating blob file: %w", err)
	}
	return NewWriter(f), nil
}

// Offset returns the current write cursor, which is also the total number of
// bytes appended so far.
func (w *Writer) Offset() uint64 {
	return w.offset
}

// Append writes data at the cursor and returns its Ref.
func Append[T Scalar](w *Writer, data []T) (Ref, error) {
	if w.closed {
		return Ref{}, ErrWriterClosed
	}
	if w.err != nil {
		return Ref{}, w.err
	}
	ref := Ref{
		Address: w.offset,
		Size:    uint64(len(data) * TypeOf[T]().Size()),
	}
	if len(data) == 0 {
		return ref, nil
	}
	if err := binary.Write(w.buf, binary.LittleEndian, data); err != nil {
		w.err = fmt.Errorf("writing %d bytes at offset %d: %w", ref.Size, ref.Address, err)
		return Ref{}, w.err
	}
	w.offset += ref.Size
	return ref, nil
}

// Flush pushes buffered bytes to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.buf.Flush(); err != nil {
		w.err = fmt.Errorf("flushing blob: %w", err)
		return w.err
	}
	return nil
}

// Close flushes and, when the underlying writer is a Closer, closes it.
// The stream is never reopened.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing blob: %w", cerr)
		}
	}
	return err
}
