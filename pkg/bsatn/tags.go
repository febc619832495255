package bsatn

// Tag identifies the shape of the next encoded value.
type Tag byte

// BSATN type tags. The tag space is closed and versioned; every value on the
// wire starts with exactly one of these bytes. The values must match the
// reference implementation byte for byte.
const (
	TagBoolFalse  Tag = 0x01
	TagBoolTrue   Tag = 0x02
	TagU8         Tag = 0x03
	TagI8         Tag = 0x04
	TagU16        Tag = 0x05
	TagI16        Tag = 0x06
	TagU32        Tag = 0x07
	TagI32        Tag = 0x08
	TagU64        Tag = 0x09
	TagI64        Tag = 0x0A
	TagF32        Tag = 0x0B
	TagF64        Tag = 0x0C
	TagString     Tag = 0x0D // u32 LE byte-length prefix + UTF-8 bytes
	TagBytes      Tag = 0x0E // u32 LE byte-length prefix + raw bytes
	TagList       Tag = 0x0F // u32 LE element count + elements
	TagOptionNone Tag = 0x10
	TagOptionSome Tag = 0x11 // followed by the payload value
	TagStruct     Tag = 0x12 // u32 LE field count, then (u8-len name, value) pairs
	TagEnum       Tag = 0x13 // u32 LE variant index + optional payload
	TagArray      Tag = 0x14 // u32 LE element count + homogeneous elements
	TagU128       Tag = 0x15 // 16 bytes, little-endian
	TagI128       Tag = 0x16 // 16 bytes, little-endian
	TagU256       Tag = 0x17 // 32 bytes, little-endian
	TagI256       Tag = 0x18 // 32 bytes, little-endian
)

// Size limits enforced by both Writer and Reader.
const (
	// MaxPayloadLen is the maximum byte length of a single string, byte
	// array, or other length-prefixed payload (1 MiB). Decoders reject
	// larger declared lengths before allocating.
	MaxPayloadLen = 1 << 20

	// MaxFieldNameLen is the maximum byte length of a struct field name.
	// Field names carry a single-byte length prefix.
	MaxFieldNameLen = 255

	// MaxCollectionCount is the maximum declared element count of a list,
	// array, or struct. Decoders reject larger counts before allocating;
	// a small count prefix would otherwise buy a large slice allocation.
	MaxCollectionCount = 100_000

	// MaxNestingDepth limits recursion when skipping or decoding nested
	// values. Prevents stack exhaustion from hostile deeply nested input.
	MaxNestingDepth = 64
)

// String returns the string representation of the tag.
func (t Tag) String() string {
	switch t {
	case TagBoolFalse:
		return "BoolFalse"
	case TagBoolTrue:
		return "BoolTrue"
	case TagU8:
		return "U8"
	case TagI8:
		return "I8"
	case TagU16:
		return "U16"
	case TagI16:
		return "I16"
	case TagU32:
		return "U32"
	case TagI32:
		return "I32"
	case TagU64:
		return "U64"
	case TagI64:
		return "I64"
	case TagF32:
		return "F32"
	case TagF64:
		return "F64"
	case TagString:
		return "String"
	case TagBytes:
		return "Bytes"
	case TagList:
		return "List"
	case TagOptionNone:
		return "OptionNone"
	case TagOptionSome:
		return "OptionSome"
	case TagStruct:
		return "Struct"
	case TagEnum:
		return "Enum"
	case TagArray:
		return "Array"
	case TagU128:
		return "U128"
	case TagI128:
		return "I128"
	case TagU256:
		return "U256"
	case TagI256:
		return "I256"
	default:
		return "Unknown"
	}
}

// Valid reports whether t is a member of the closed tag set.
func (t Tag) Valid() bool {
	return t >= TagBoolFalse && t <= TagI256
}
