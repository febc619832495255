package sats

import (
	"errors"
	"fmt"

	"github.com/clockworklabs/spacetimedb-go/pkg/bsatn"
)

// ErrUnresolvedRef indicates a Ref type reached the codec without being
// resolved against its typespace first.
var ErrUnresolvedRef = errors.New("sats: unresolved type ref")

// Encode serializes a value against its declared type and returns the
// BSATN bytes. It fails if the value's shape disagrees with the type.
func Encode(v Value, t *Type) ([]byte, error) {
	w := bsatn.NewWriter()
	if err := EncodeTo(w, v, t); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeTo serializes a value against its declared type using the provided
// writer, walking both together and dispatching to the matching primitive
// write at each node.
func EncodeTo(w *bsatn.Writer, v Value, t *Type) error {
	if t.kind == KindRef {
		return fmt.Errorf("%w: ref %d", ErrUnresolvedRef, t.ref)
	}
	if v.kind != t.kind {
		return fmt.Errorf("%w: %s value for %s type", bsatn.ErrTypeMismatch, v.kind, t.kind)
	}

	switch t.kind {
	case KindBool:
		w.WriteBool(v.b)
	case KindU8:
		w.WriteU8(uint8(v.u))
	case KindI8:
		w.WriteI8(int8(v.i))
	case KindU16:
		w.WriteU16(uint16(v.u))
	case KindI16:
		w.WriteI16(int16(v.i))
	case KindU32:
		w.WriteU32(uint32(v.u))
	case KindI32:
		w.WriteI32(int32(v.i))
	case KindU64:
		w.WriteU64(v.u)
	case KindI64:
		w.WriteI64(v.i)
	case KindU128, KindI128:
		if len(v.wide) != 16 {
			return fmt.Errorf("%w: %s needs 16 bytes, have %d", bsatn.ErrTypeMismatch, t.kind, len(v.wide))
		}
		var buf [16]byte
		copy(buf[:], v.wide)
		if t.kind == KindU128 {
			w.WriteU128(buf)
		} else {
			w.WriteI128(buf)
		}
	case KindU256, KindI256:
		if len(v.wide) != 32 {
			return fmt.Errorf("%w: %s needs 32 bytes, have %d", bsatn.ErrTypeMismatch, t.kind, len(v.wide))
		}
		var buf [32]byte
		copy(buf[:], v.wide)
		if t.kind == KindU256 {
			w.WriteU256(buf)
		} else {
			w.WriteI256(buf)
		}
	case KindF32:
		return w.WriteF32(float32(v.f))
	case KindF64:
		return w.WriteF64(v.f)
	case KindString:
		return w.WriteString(v.s)
	case KindBytes:
		return w.WriteBytes(v.raw)
	case KindArray:
		w.WriteArrayHeader(len(v.elems))
		for i := range v.elems {
			if err := EncodeTo(w, v.elems[i], t.elem); err != nil {
				return fmt.Errorf("array element %d: %w", i, err)
			}
		}
	case KindProduct:
		if len(v.elems) != len(t.fields) {
			return fmt.Errorf("%w: product has %d values for %d fields",
				bsatn.ErrTypeMismatch, len(v.elems), len(t.fields))
		}
		w.WriteStructHeader(len(t.fields))
		for i := range t.fields {
			if err := w.WriteFieldName(t.fields[i].Name); err != nil {
				return err
			}
			if err := EncodeTo(w, v.elems[i], t.fields[i].Type); err != nil {
				return fmt.Errorf("field %q: %w", t.fields[i].Name, err)
			}
		}
	case KindSum:
		if int(v.idx) >= len(t.variants) {
			return fmt.Errorf("%w: variant %d of %d", bsatn.ErrInvalidVariant, v.idx, len(t.variants))
		}
		w.WriteEnumHeader(v.idx)
		variant := t.variants[v.idx]
		if variant.Type == nil {
			// Unit variants carry an empty product so a schema-blind
			// skip still consumes exactly one payload value.
			w.WriteStructHeader(0)
			return nil
		}
		if v.inner == nil {
			return fmt.Errorf("%w: variant %q requires a payload", bsatn.ErrTypeMismatch, variant.Name)
		}
		if err := EncodeTo(w, *v.inner, variant.Type); err != nil {
			return fmt.Errorf("variant %q: %w", variant.Name, err)
		}
	case KindOption:
		if !v.some {
			w.WriteOptionNone()
			return nil
		}
		w.WriteOptionSomeTag()
		return EncodeTo(w, *v.inner, t.elem)
	default:
		return fmt.Errorf("%w: cannot encode kind %s", bsatn.ErrTypeMismatch, t.kind)
	}
	return nil
}

// Decode deserializes one value of the given type from BSATN bytes.
// Decoding is type-directed: the expected type drives interpretation, and a
// wire tag that disagrees with it is an error, except where a sum's variant
// index legitimately selects among heterogeneous branches.
func Decode(data []byte, t *Type) (Value, error) {
	r := bsatn.NewReader(data)
	return DecodeFrom(r, t)
}

// DecodeFrom deserializes one value of the given type using the provided
// reader. The cursor is left after the consumed value.
func DecodeFrom(r *bsatn.Reader, t *Type) (Value, error) {
	return decodeFrom(r, t, 0)
}

func decodeFrom(r *bsatn.Reader, t *Type, depth int) (Value, error) {
	if depth > bsatn.MaxNestingDepth {
		return Value{}, bsatn.ErrTooDeep
	}
	if t.kind == KindRef {
		return Value{}, fmt.Errorf("%w: ref %d", ErrUnresolvedRef, t.ref)
	}

	tag, err := r.ReadTag()
	if err != nil {
		return Value{}, err
	}

	switch t.kind {
	case KindBool:
		b, err := r.ReadBool(tag)
		if err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case KindU8:
		if err := expectTag(tag, bsatn.TagU8, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadU8()
		return U8(v), err
	case KindI8:
		if err := expectTag(tag, bsatn.TagI8, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadI8()
		return I8(v), err
	case KindU16:
		if err := expectTag(tag, bsatn.TagU16, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadU16()
		return U16(v), err
	case KindI16:
		if err := expectTag(tag, bsatn.TagI16, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadI16()
		return I16(v), err
	case KindU32:
		if err := expectTag(tag, bsatn.TagU32, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadU32()
		return U32(v), err
	case KindI32:
		if err := expectTag(tag, bsatn.TagI32, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadI32()
		return I32(v), err
	case KindU64:
		if err := expectTag(tag, bsatn.TagU64, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadU64()
		return U64(v), err
	case KindI64:
		if err := expectTag(tag, bsatn.TagI64, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadI64()
		return I64(v), err
	case KindU128:
		if err := expectTag(tag, bsatn.TagU128, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadU128()
		return U128(v), err
	case KindI128:
		if err := expectTag(tag, bsatn.TagI128, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadI128()
		return I128(v), err
	case KindU256:
		if err := expectTag(tag, bsatn.TagU256, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadU256()
		return U256(v), err
	case KindI256:
		if err := expectTag(tag, bsatn.TagI256, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadI256()
		return I256(v), err
	case KindF32:
		if err := expectTag(tag, bsatn.TagF32, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadF32()
		return F32(v), err
	case KindF64:
		if err := expectTag(tag, bsatn.TagF64, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadF64()
		return F64(v), err
	case KindString:
		if err := expectTag(tag, bsatn.TagString, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadString()
		return Str(v), err
	case KindBytes:
		if err := expectTag(tag, bsatn.TagBytes, t.kind); err != nil {
			return Value{}, err
		}
		v, err := r.ReadBytes()
		return Bytes(v), err
	case KindArray:
		// Writers may emit either the array or the list tag for
		// homogeneous sequences; both carry the same payload shape.
		if tag != bsatn.TagArray && tag != bsatn.TagList {
			return Value{}, fmt.Errorf("%w: tag %s for Array type", bsatn.ErrTypeMismatch, tag)
		}
		count, err := r.ReadArrayHeader()
		if err != nil {
			return Value{}, err
		}
		elems := make([]Value, 0, count)
		for i := 0; i < count; i++ {
			ev, err := decodeFrom(r, t.elem, depth+1)
			if err != nil {
				return Value{}, fmt.Errorf("array element %d: %w", i, err)
			}
			elems = append(elems, ev)
		}
		return Array(elems...), nil
	case KindProduct:
		if err := expectTag(tag, bsatn.TagStruct, t.kind); err != nil {
			return Value{}, err
		}
		return decodeProduct(r, t, depth)
	case KindSum:
		if err := expectTag(tag, bsatn.TagEnum, t.kind); err != nil {
			return Value{}, err
		}
		idx, err := r.ReadEnumHeader()
		if err != nil {
			return Value{}, err
		}
		if int(idx) >= len(t.variants) {
			return Value{}, fmt.Errorf("%w: variant %d of %d", bsatn.ErrInvalidVariant, idx, len(t.variants))
		}
		variant := t.variants[idx]
		if variant.Type == nil {
			// Unit variant: consume and discard the empty payload.
			if err := r.SkipValue(); err != nil {
				return Value{}, fmt.Errorf("variant %q: %w", variant.Name, err)
			}
			return UnitSum(idx), nil
		}
		payload, err := decodeFrom(r, variant.Type, depth+1)
		if err != nil {
			return Value{}, fmt.Errorf("variant %q: %w", variant.Name, err)
		}
		return Sum(idx, payload), nil
	case KindOption:
		switch tag {
		case bsatn.TagOptionNone:
			return None(), nil
		case bsatn.TagOptionSome:
			inner, err := decodeFrom(r, t.elem, depth+1)
			if err != nil {
				return Value{}, err
			}
			return Some(inner), nil
		default:
			return Value{}, fmt.Errorf("%w: tag %s for Option type", bsatn.ErrTypeMismatch, tag)
		}
	default:
		return Value{}, fmt.Errorf("%w: cannot decode kind %s", bsatn.ErrTypeMismatch, t.kind)
	}
}

// decodeProduct reads struct fields by name against the declared field
// list. Unknown fields are skipped for forward compatibility; declared
// fields absent from the wire are an error.
func decodeProduct(r *bsatn.Reader, t *Type, depth int) (Value, error) {
	count, err := r.ReadStructHeader()
	if err != nil {
		return Value{}, err
	}

	values := make([]Value, len(t.fields))
	seen := make([]bool, len(t.fields))
	for i := 0; i < count; i++ {
		name, err := r.ReadFieldName()
		if err != nil {
			return Value{}, err
		}
		idx, field := t.FieldByName(name)
		if field == nil {
			if err := r.SkipValue(); err != nil {
				return Value{}, fmt.Errorf("skipping unknown field %q: %w", name, err)
			}
			continue
		}
		fv, err := decodeFrom(r, field.Type, depth+1)
		if err != nil {
			return Value{}, fmt.Errorf("field %q: %w", name, err)
		}
		values[idx] = fv
		seen[idx] = true
	}
	for i := range seen {
		if !seen[i] {
			return Value{}, fmt.Errorf("%w: missing field %q", bsatn.ErrTypeMismatch, t.fields[i].Name)
		}
	}
	return Product(values...), nil
}

func expectTag(got, want bsatn.Tag, kind Kind) error {
	if got != want {
		if !got.Valid() {
			return fmt.Errorf("%w: 0x%02X", bsatn.ErrInvalidTag, byte(got))
		}
		return fmt.Errorf("%w: tag %s for %s type", bsatn.ErrTypeMismatch, got, kind)
	}
	return nil
}
