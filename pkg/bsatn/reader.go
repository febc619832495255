package bsatn

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// Reader decodes BSATN values from a borrowed byte slice using a positional
// cursor. It is constructed over one received frame, consumed once, and
// discarded.
//
// Every read either advances the cursor by exactly the bytes it consumed or
// fails without moving it. There is no partial-read recovery: after a
// failure the caller must abandon the whole message.
//
// Payload readers (ReadU32, ReadString, ...) assume the caller has already
// consumed and matched the value's tag via ReadTag.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a new reader over the given byte slice. The reader
// borrows the slice; it must not be mutated while the reader is in use.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Position returns the current read position.
func (r *Reader) Position() int {
	return r.pos
}

// EOF reports whether all bytes have been read.
func (r *Reader) EOF() bool {
	return r.pos >= len(r.buf)
}

// take consumes exactly n bytes and returns a view into the buffer.
// The returned slice aliases the reader's buffer; do not modify.
func (r *Reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, r.Remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadTag consumes and returns the next tag byte.
func (r *Reader) ReadTag() (Tag, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return Tag(b[0]), nil
}

// ReadBool interprets an already-read tag as a boolean value.
func (r *Reader) ReadBool(t Tag) (bool, error) {
	switch t {
	case TagBoolFalse:
		return false, nil
	case TagBoolTrue:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s is not a boolean tag", ErrInvalidTag, t)
	}
}

// ReadU8 reads a uint8 payload.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadI8 reads an int8 payload.
func (r *Reader) ReadI8() (int8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// ReadU16 reads a little-endian uint16 payload.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadI16 reads a little-endian int16 payload.
func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadU32 reads a little-endian uint32 payload.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI32 reads a little-endian int32 payload.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadU64 reads a little-endian uint64 payload.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadI64 reads a little-endian int64 payload.
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// ReadF32 reads an IEEE-754 little-endian float32 payload.
// NaN and infinities are rejected.
func (r *Reader) ReadF32() (float32, error) {
	start := r.pos
	bits, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	v := math.Float32frombits(bits)
	if f64 := float64(v); math.IsNaN(f64) || math.IsInf(f64, 0) {
		r.pos = start
		return 0, fmt.Errorf("%w: f32 %v", ErrInvalidFloat, v)
	}
	return v, nil
}

// ReadF64 reads an IEEE-754 little-endian float64 payload.
// NaN and infinities are rejected.
func (r *Reader) ReadF64() (float64, error) {
	start := r.pos
	bits, err := r.ReadU64()
	if err != nil {
		return 0, err
	}
	v := math.Float64frombits(bits)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		r.pos = start
		return 0, fmt.Errorf("%w: f64 %v", ErrInvalidFloat, v)
	}
	return v, nil
}

// readLen reads a u32 LE length prefix and validates it against both the
// size limit and the remaining buffer, before anything is allocated.
func (r *Reader) readLen() (int, error) {
	start := r.pos
	n, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	if n > MaxPayloadLen {
		r.pos = start
		return 0, fmt.Errorf("%w: declared length %d", ErrTooLarge, n)
	}
	if int(n) > r.Remaining() {
		r.pos = start
		return 0, fmt.Errorf("%w: declared length %d, have %d", ErrTruncated, n, r.Remaining())
	}
	return int(n), nil
}

// ReadString reads a length-prefixed UTF-8 string payload.
func (r *Reader) ReadString() (string, error) {
	start := r.pos
	n, err := r.readLen()
	if err != nil {
		return "", err
	}
	b, err := r.take(n)
	if err != nil {
		r.pos = start
		return "", err
	}
	if !utf8.Valid(b) {
		r.pos = start
		return "", fmt.Errorf("%w: string payload", ErrInvalidUTF8)
	}
	return string(b), nil
}

// ReadBytes reads a length-prefixed byte array payload.
// The result is a copy, safe to retain after the frame is discarded.
func (r *Reader) ReadBytes() ([]byte, error) {
	start := r.pos
	n, err := r.readLen()
	if err != nil {
		return nil, err
	}
	b, err := r.take(n)
	if err != nil {
		r.pos = start
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadListHeader reads a list element count.
func (r *Reader) ReadListHeader() (int, error) {
	return r.readCount()
}

// ReadArrayHeader reads an array element count. The caller must then read
// exactly that many elements using the same reader; the cursor is shared,
// so sequencing is the caller's responsibility.
func (r *Reader) ReadArrayHeader() (int, error) {
	return r.readCount()
}

// ReadStructHeader reads a struct field count.
func (r *Reader) ReadStructHeader() (int, error) {
	return r.readCount()
}

// readCount reads a u32 LE count and validates it before anything is
// allocated: first against MaxCollectionCount, then against the remaining
// buffer. Every element costs at least one tag byte, so a count beyond the
// remaining bytes is necessarily truncated or hostile.
func (r *Reader) readCount() (int, error) {
	start := r.pos
	n, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	if n > MaxCollectionCount {
		r.pos = start
		return 0, fmt.Errorf("%w: declared count %d", ErrTooLarge, n)
	}
	if uint64(n) > uint64(r.Remaining()) {
		r.pos = start
		return 0, fmt.Errorf("%w: count %d exceeds %d remaining bytes", ErrTruncated, n, r.Remaining())
	}
	return int(n), nil
}

// ReadFieldName reads a struct field name with its single-byte length prefix.
func (r *Reader) ReadFieldName() (string, error) {
	start := r.pos
	n, err := r.take(1)
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n[0]))
	if err != nil {
		r.pos = start
		return "", err
	}
	if !utf8.Valid(b) {
		r.pos = start
		return "", fmt.Errorf("%w: field name", ErrInvalidUTF8)
	}
	return string(b), nil
}

// ReadEnumHeader reads a sum variant index.
func (r *Reader) ReadEnumHeader() (uint32, error) {
	return r.ReadU32()
}

// ReadU128 reads a u128 payload as 16 little-endian bytes.
func (r *Reader) ReadU128() ([16]byte, error) {
	var out [16]byte
	b, err := r.take(16)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// ReadI128 reads an i128 payload as 16 little-endian bytes.
func (r *Reader) ReadI128() ([16]byte, error) {
	return r.ReadU128()
}

// ReadU256 reads a u256 payload as 32 little-endian bytes.
func (r *Reader) ReadU256() ([32]byte, error) {
	var out [32]byte
	b, err := r.take(32)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// ReadI256 reads an i256 payload as 32 little-endian bytes.
func (r *Reader) ReadI256() ([32]byte, error) {
	return r.ReadU256()
}

// SkipValue consumes and discards exactly one complete value, tag included,
// recursing into composites as needed. This is the forward-compatibility
// primitive: a reader built against an older schema uses it to pass over
// fields it does not recognize without losing its place.
//
// Skip handles every tag in the closed set. A tag outside the set is a
// fatal ErrInvalidTag: BSATN carries no top-level length envelope, so there
// is no way to skip bytes of unknown shape. On failure the cursor is
// restored to where the value began.
func (r *Reader) SkipValue() error {
	start := r.pos
	if err := r.skipValue(0); err != nil {
		r.pos = start
		return err
	}
	return nil
}

func (r *Reader) skipValue(depth int) error {
	if depth > MaxNestingDepth {
		return ErrTooDeep
	}
	t, err := r.ReadTag()
	if err != nil {
		return err
	}
	switch t {
	case TagBoolFalse, TagBoolTrue, TagOptionNone:
		return nil
	case TagU8, TagI8:
		_, err = r.take(1)
	case TagU16, TagI16:
		_, err = r.take(2)
	case TagU32, TagI32, TagF32:
		_, err = r.take(4)
	case TagU64, TagI64, TagF64:
		_, err = r.take(8)
	case TagU128, TagI128:
		_, err = r.take(16)
	case TagU256, TagI256:
		_, err = r.take(32)
	case TagString, TagBytes:
		var n int
		if n, err = r.readLen(); err != nil {
			return err
		}
		_, err = r.take(n)
	case TagList, TagArray:
		var count int
		if count, err = r.readCount(); err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			if err = r.skipValue(depth + 1); err != nil {
				return err
			}
		}
	case TagStruct:
		var count int
		if count, err = r.readCount(); err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			if _, err = r.ReadFieldName(); err != nil {
				return err
			}
			if err = r.skipValue(depth + 1); err != nil {
				return err
			}
		}
	case TagEnum:
		if _, err = r.ReadEnumHeader(); err != nil {
			return err
		}
		err = r.skipValue(depth + 1)
	case TagOptionSome:
		err = r.skipValue(depth + 1)
	default:
		return fmt.Errorf("%w: 0x%02X", ErrInvalidTag, byte(t))
	}
	return err
}
