// Package bsatn implements the BSATN binary wire format (Binary SpacetimeDB
// Algebraic Type Notation) used between SpacetimeDB clients and servers.
//
// BSATN is a compact, self-describing binary encoding for algebraic data:
// products (structs), sums (tagged unions), homogeneous arrays, options,
// and the full range of primitive widths up to 256-bit integers. The
// encoding must match the reference implementation byte for byte.
//
// # Wire Format
//
// Every value begins with a single tag byte from a closed set, followed by
// a payload whose shape is determined entirely by the tag:
//
//   - Booleans: the tag is the value (BoolFalse 0x01, BoolTrue 0x02)
//   - Integers: fixed width matching the declared bit-width, little-endian
//   - Floats: IEEE-754, 4 or 8 bytes, little-endian; NaN/Inf rejected
//   - String/Bytes: u32 LE byte-length prefix + raw bytes
//   - List/Array: u32 LE element count + tagged elements
//   - Struct: u32 LE field count + (u8-length-prefixed name, value) pairs
//   - Enum: u32 LE variant index + variant payload
//   - Option: OptionNone alone, or OptionSome followed by the payload
//   - U128/I128: 16 raw bytes; U256/I256: 32 raw bytes
//
// Note the two-tier length prefix convention: struct field names use a
// single-byte prefix while general strings and byte arrays use four bytes.
//
// # Writer and Reader
//
// Writer appends values to a growable buffer; the caller drives the
// sequence of primitive and header calls and hands the finished buffer to
// the transport. Reader consumes a received frame positionally; failed
// reads leave the cursor where the value began, and a failure means the
// whole message must be abandoned.
//
// # Forward Compatibility
//
// Reader.SkipValue discards exactly one value of any shape without
// interpreting it, letting clients built against older schemas pass over
// unknown struct fields. The tag set itself is closed: a byte outside the
// set fails decoding, because the format has no top-level length envelope
// that would allow skipping a value of unknown shape.
//
// # Limits
//
// Strings, byte arrays, and other length-prefixed payloads are capped at
// MaxPayloadLen (1 MiB). Declared lengths are validated against the limit
// and the remaining buffer before any allocation, so hostile length
// prefixes cannot trigger large allocations.
//
// # Usage Example
//
//	w := bsatn.NewWriter()
//	w.WriteStructHeader(2)
//	w.WriteFieldName("id")
//	w.WriteU32(7)
//	w.WriteFieldName("name")
//	w.WriteString("alice")
//	frame := w.Bytes()
//
//	r := bsatn.NewReader(frame)
//	tag, _ := r.ReadTag() // TagStruct
//	n, _ := r.ReadStructHeader()
//	for i := 0; i < n; i++ {
//		name, _ := r.ReadFieldName()
//		switch name {
//		case "id":
//			r.ReadTag()
//			id, _ := r.ReadU32()
//			_ = id
//		default:
//			r.SkipValue() // unknown field from a newer schema
//		}
//	}
package bsatn
