package bsatn

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer serializes values into BSATN wire format by appending to an
// internal buffer. It is designed for encoding one message: construct it,
// drive the sequence of write calls, then hand off Bytes().
//
// Writes are atomic per primitive. If a write returns an error mid-way
// through a composite value the buffer is left truncated and must be
// discarded by the caller.
type Writer struct {
	buf []byte
}

// NewWriter creates a new writer with a default initial capacity.
func NewWriter() *Writer {
	return &Writer{
		buf: make([]byte, 0, 256),
	}
}

// NewWriterWithCap creates a new writer with the specified initial capacity.
func NewWriterWithCap(cap int) *Writer {
	return &Writer{
		buf: make([]byte, 0, cap),
	}
}

// Reset resets the writer to empty state, reusing the underlying buffer.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// Bytes returns the encoded bytes. The returned slice is valid until the
// next call to Reset or any Write method.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes currently encoded.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteTag appends a raw tag byte.
func (w *Writer) WriteTag(t Tag) {
	w.buf = append(w.buf, byte(t))
}

// WriteBool appends a boolean. Booleans carry no payload; the value is the
// tag itself.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteTag(TagBoolTrue)
	} else {
		w.WriteTag(TagBoolFalse)
	}
}

// WriteU8 appends a tagged uint8.
func (w *Writer) WriteU8(v uint8) {
	w.WriteTag(TagU8)
	w.buf = append(w.buf, v)
}

// WriteI8 appends a tagged int8.
func (w *Writer) WriteI8(v int8) {
	w.WriteTag(TagI8)
	w.buf = append(w.buf, byte(v))
}

// WriteU16 appends a tagged uint16, little-endian.
func (w *Writer) WriteU16(v uint16) {
	w.WriteTag(TagU16)
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteI16 appends a tagged int16, little-endian.
func (w *Writer) WriteI16(v int16) {
	w.WriteTag(TagI16)
	w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v))
}

// WriteU32 appends a tagged uint32, little-endian.
func (w *Writer) WriteU32(v uint32) {
	w.WriteTag(TagU32)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteI32 appends a tagged int32, little-endian.
func (w *Writer) WriteI32(v int32) {
	w.WriteTag(TagI32)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// WriteU64 appends a tagged uint64, little-endian.
func (w *Writer) WriteU64(v uint64) {
	w.WriteTag(TagU64)
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteI64 appends a tagged int64, little-endian.
func (w *Writer) WriteI64(v int64) {
	w.WriteTag(TagI64)
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

// WriteF32 appends a tagged float32 in IEEE-754 little-endian format.
// NaN and infinities are not representable on the wire.
func (w *Writer) WriteF32(v float32) error {
	if f64 := float64(v); math.IsNaN(f64) || math.IsInf(f64, 0) {
		return fmt.Errorf("%w: f32 %v", ErrInvalidFloat, v)
	}
	w.WriteTag(TagF32)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
	return nil
}

// WriteF64 appends a tagged float64 in IEEE-754 little-endian format.
// NaN and infinities are not representable on the wire.
func (w *Writer) WriteF64(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: f64 %v", ErrInvalidFloat, v)
	}
	w.WriteTag(TagF64)
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
	return nil
}

// WriteString appends a tagged, length-prefixed UTF-8 string.
// Format: tag + u32 LE byte length + raw bytes. The byte length counts
// bytes, not runes. The writer assumes the input is valid UTF-8; invalid
// input is the caller's bug and is not re-validated here.
func (w *Writer) WriteString(s string) error {
	if len(s) > MaxPayloadLen {
		return fmt.Errorf("%w: string of %d bytes", ErrTooLarge, len(s))
	}
	w.WriteTag(TagString)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// WriteBytes appends a tagged, length-prefixed byte array.
// Format: tag + u32 LE byte length + raw bytes, no transform.
func (w *Writer) WriteBytes(b []byte) error {
	if len(b) > MaxPayloadLen {
		return fmt.Errorf("%w: byte array of %d bytes", ErrTooLarge, len(b))
	}
	w.WriteTag(TagBytes)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(len(b)))
	w.buf = append(w.buf, b...)
	return nil
}

// WriteListHeader appends a list header: tag + u32 LE element count.
// The caller must write exactly count elements next.
func (w *Writer) WriteListHeader(count int) {
	w.WriteTag(TagList)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(count))
}

// WriteArrayHeader appends an array header: tag + u32 LE element count.
// The caller must write exactly count homogeneous elements next.
func (w *Writer) WriteArrayHeader(count int) {
	w.WriteTag(TagArray)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(count))
}

// WriteStructHeader appends a struct header: tag + u32 LE field count.
// The caller must write count (field name, value) pairs next.
func (w *Writer) WriteStructHeader(fieldCount int) {
	w.WriteTag(TagStruct)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(fieldCount))
}

// WriteFieldName appends a struct field name with its single-byte length
// prefix. Field names use a u8 prefix, distinct from the u32 prefix of
// general strings; both tiers are required for byte compatibility.
func (w *Writer) WriteFieldName(name string) error {
	if len(name) > MaxFieldNameLen {
		return fmt.Errorf("%w: field name of %d bytes", ErrTooLarge, len(name))
	}
	w.buf = append(w.buf, byte(len(name)))
	w.buf = append(w.buf, name...)
	return nil
}

// WriteEnumHeader appends a sum header: tag + u32 LE variant index.
// The caller writes the variant payload next; variants without a payload
// write nothing after the index.
func (w *Writer) WriteEnumHeader(variant uint32) {
	w.WriteTag(TagEnum)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, variant)
}

// WriteOptionNone appends an absent option value.
func (w *Writer) WriteOptionNone() {
	w.WriteTag(TagOptionNone)
}

// WriteOptionSomeTag appends the present-option tag. The caller must write
// the payload value next.
func (w *Writer) WriteOptionSomeTag() {
	w.WriteTag(TagOptionSome)
}

// WriteU128 appends a tagged u128 as 16 little-endian bytes.
func (w *Writer) WriteU128(v [16]byte) {
	w.WriteTag(TagU128)
	w.buf = append(w.buf, v[:]...)
}

// WriteI128 appends a tagged i128 as 16 little-endian bytes.
func (w *Writer) WriteI128(v [16]byte) {
	w.WriteTag(TagI128)
	w.buf = append(w.buf, v[:]...)
}

// WriteU256 appends a tagged u256 as 32 little-endian bytes.
func (w *Writer) WriteU256(v [32]byte) {
	w.WriteTag(TagU256)
	w.buf = append(w.buf, v[:]...)
}

// WriteI256 appends a tagged i256 as 32 little-endian bytes.
func (w *Writer) WriteI256(v [32]byte) {
	w.WriteTag(TagI256)
	w.buf = append(w.buf, v[:]...)
}

// WriteRaw appends pre-encoded BSATN bytes verbatim. Used to embed opaque
// nested payloads (reducer arguments, table rows) whose schema the caller
// does not know.
func (w *Writer) WriteRaw(b []byte) {
	w.buf = append(w.buf, b...)
}
