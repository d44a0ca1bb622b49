// Package stream reads and writes the little-endian binary records used for
// persisted tab state. Both ends keep the first error and ignore later calls,
// so a record can be written or read in one pass and checked once.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MaxStringLength bounds length-prefixed fields on read.
const MaxStringLength = 16 << 20

// ErrTooLong is returned when a length prefix exceeds MaxStringLength.
var ErrTooLong = errors.New("stream: field too long")

// Writer encodes values to an io.Writer.
type Writer struct {
	w   io.Writer
	buf [8]byte
	err error
}

// NewWriter creates a writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first write error.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(p)
}

// Uint8 writes one byte.
func (w *Writer) Uint8(v uint8) {
	w.buf[0] = v
	w.write(w.buf[:1])
}

// Uint16 writes a 16-bit value.
func (w *Writer) Uint16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	w.write(w.buf[:2])
}

// Uint32 writes a 32-bit value.
func (w *Writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

// Int64 writes a signed 64-bit value.
func (w *Writer) Int64(v int64) {
	binary.LittleEndian.PutUint64(w.buf[:8], uint64(v))
	w.write(w.buf[:8])
}

// Float32 writes an IEEE 754 single.
func (w *Writer) Float32(v float32) {
	w.Uint32(math.Float32bits(v))
}

// Bytes writes a u32 length followed by p.
func (w *Writer) Bytes(p []byte) {
	w.Uint32(uint32(len(p)))
	w.write(p)
}

// String writes a u32 length followed by the UTF-8 bytes of s.
func (w *Writer) String(s string) {
	w.Bytes([]byte(s))
}

// Reader decodes values from an io.Reader.
type Reader struct {
	r   io.Reader
	buf [8]byte
	err error
}

// NewReader creates a reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Err returns the first read error. A short read is io.ErrUnexpectedEOF.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) read(p []byte) bool {
	if r.err != nil {
		return false
	}
	if _, err := io.ReadFull(r.r, p); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
		return false
	}
	return true
}

// Uint8 reads one byte.
func (r *Reader) Uint8() uint8 {
	if !r.read(r.buf[:1]) {
		return 0
	}
	return r.buf[0]
}

// Uint16 reads a 16-bit value.
func (r *Reader) Uint16() uint16 {
	if !r.read(r.buf[:2]) {
		return 0
	}
	return binary.LittleEndian.Uint16(r.buf[:2])
}

// Uint32 reads a 32-bit value.
func (r *Reader) Uint32() uint32 {
	if !r.read(r.buf[:4]) {
		return 0
	}
	return binary.LittleEndian.Uint32(r.buf[:4])
}

// Int64 reads a signed 64-bit value.
func (r *Reader) Int64() int64 {
	if !r.read(r.buf[:8]) {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(r.buf[:8]))
}

// Float32 reads an IEEE 754 single.
func (r *Reader) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

// Bytes reads a length-prefixed byte slice.
func (r *Reader) Bytes() []byte {
	n := r.Uint32()
	if r.err != nil {
		return nil
	}
	if n > MaxStringLength {
		r.err = fmt.Errorf("%w: %d bytes", ErrTooLong, n)
		return nil
	}
	p := make([]byte, n)
	if !r.read(p) {
		return nil
	}
	return p
}

// String reads a length-prefixed string.
func (r *Reader) String() string {
	return string(r.Bytes())
}
