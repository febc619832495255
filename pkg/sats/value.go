package sats

// Value is an algebraic value: a closed tagged union over every shape the
// type system can express. A value's runtime content must structurally
// match its declared Type; the codec checks this and never coerces.
type Value struct {
	kind Kind

	b     bool
	u     uint64   // U8..U64
	i     int64    // I8..I64
	f     float64  // F32, F64
	s     string   // String
	raw   []byte   // Bytes
	wide  []byte   // U128/I128 (16 bytes), U256/I256 (32 bytes), little-endian
	elems []Value  // Array elements, Product fields in declared order
	idx   uint32   // Sum variant index
	inner *Value   // Sum payload, Option payload
	some  bool     // Option presence
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// Bool constructs a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// U8 constructs a uint8 value.
func U8(x uint8) Value { return Value{kind: KindU8, u: uint64(x)} }

// I8 constructs an int8 value.
func I8(x int8) Value { return Value{kind: KindI8, i: int64(x)} }

// U16 constructs a uint16 value.
func U16(x uint16) Value { return Value{kind: KindU16, u: uint64(x)} }

// I16 constructs an int16 value.
func I16(x int16) Value { return Value{kind: KindI16, i: int64(x)} }

// U32 constructs a uint32 value.
func U32(x uint32) Value { return Value{kind: KindU32, u: uint64(x)} }

// I32 constructs an int32 value.
func I32(x int32) Value { return Value{kind: KindI32, i: int64(x)} }

// U64 constructs a uint64 value.
func U64(x uint64) Value { return Value{kind: KindU64, u: x} }

// I64 constructs an int64 value.
func I64(x int64) Value { return Value{kind: KindI64, i: x} }

// U128 constructs a 128-bit unsigned integer value from 16 LE bytes.
func U128(x [16]byte) Value { return Value{kind: KindU128, wide: append([]byte(nil), x[:]...)} }

// I128 constructs a 128-bit signed integer value from 16 LE bytes.
func I128(x [16]byte) Value { return Value{kind: KindI128, wide: append([]byte(nil), x[:]...)} }

// U256 constructs a 256-bit unsigned integer value from 32 LE bytes.
func U256(x [32]byte) Value { return Value{kind: KindU256, wide: append([]byte(nil), x[:]...)} }

// I256 constructs a 256-bit signed integer value from 32 LE bytes.
func I256(x [32]byte) Value { return Value{kind: KindI256, wide: append([]byte(nil), x[:]...)} }

// F32 constructs a float32 value.
func F32(x float32) Value { return Value{kind: KindF32, f: float64(x)} }

// F64 constructs a float64 value.
func F64(x float64) Value { return Value{kind: KindF64, f: x} }

// Str constructs a string value.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// Bytes constructs a byte array value. The slice is not copied.
func Bytes(b []byte) Value { return Value{kind: KindBytes, raw: b} }

// Array constructs an array value from its elements.
func Array(elems ...Value) Value {
	if len(elems) == 0 {
		return Value{kind: KindArray}
	}
	return Value{kind: KindArray, elems: elems}
}

// Product constructs a product value whose elements are the field values in
// the product type's declared order.
func Product(fields ...Value) Value {
	if len(fields) == 0 {
		return Value{kind: KindProduct}
	}
	return Value{kind: KindProduct, elems: fields}
}

// Sum constructs a sum value carrying the given variant index and payload.
func Sum(variant uint32, payload Value) Value {
	return Value{kind: KindSum, idx: variant, inner: &payload}
}

// UnitSum constructs a sum value for a payload-free variant.
func UnitSum(variant uint32) Value {
	return Value{kind: KindSum, idx: variant}
}

// Some constructs a present option value.
func Some(inner Value) Value {
	return Value{kind: KindOption, some: true, inner: &inner}
}

// None constructs an absent option value.
func None() Value { return Value{kind: KindOption} }

// AsBool returns the boolean content. The second result is false if the
// value is not a Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsUint returns the unsigned integer content of a U8..U64 value.
func (v Value) AsUint() (uint64, bool) {
	switch v.kind {
	case KindU8, KindU16, KindU32, KindU64:
		return v.u, true
	}
	return 0, false
}

// AsInt returns the signed integer content of an I8..I64 value.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindI8, KindI16, KindI32, KindI64:
		return v.i, true
	}
	return 0, false
}

// AsFloat returns the float content of an F32 or F64 value.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindF32, KindF64:
		return v.f, true
	}
	return 0, false
}

// AsString returns the string content.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsBytes returns the byte array content.
func (v Value) AsBytes() ([]byte, bool) { return v.raw, v.kind == KindBytes }

// AsWide returns the raw little-endian bytes of a 128- or 256-bit integer.
// Callers treat these as opaque big-integer blobs; arithmetic on them is
// out of scope for this layer.
func (v Value) AsWide() ([]byte, bool) {
	switch v.kind {
	case KindU128, KindI128, KindU256, KindI256:
		return v.wide, true
	}
	return nil, false
}

// Elems returns the elements of an Array or the field values of a Product.
func (v Value) Elems() ([]Value, bool) {
	switch v.kind {
	case KindArray, KindProduct:
		return v.elems, true
	}
	return nil, false
}

// Variant returns the variant index and payload of a Sum value. The payload
// pointer is nil for unit variants.
func (v Value) Variant() (uint32, *Value, bool) {
	if v.kind != KindSum {
		return 0, nil, false
	}
	return v.idx, v.inner, true
}

// Option returns the payload of an Option value, or nil if absent.
func (v Value) Option() (*Value, bool) {
	if v.kind != KindOption {
		return nil, false
	}
	if !v.some {
		return nil, true
	}
	return v.inner, true
}
