package bsatn

import "errors"

// Codec errors. Every failure returned by Writer or Reader wraps one of
// these sentinels so callers can classify with errors.Is.
var (
	// ErrTruncated indicates the input ended before a declared length or
	// fixed-width payload was satisfied.
	ErrTruncated = errors.New("bsatn: truncated input")

	// ErrInvalidTag indicates a byte that is not a member of the closed
	// tag set, or a tag that does not match the expected shape.
	ErrInvalidTag = errors.New("bsatn: invalid tag")

	// ErrInvalidUTF8 indicates string payload bytes that are not valid
	// UTF-8.
	ErrInvalidUTF8 = errors.New("bsatn: invalid utf-8")

	// ErrInvalidVariant indicates a sum variant index out of range for
	// the expected type.
	ErrInvalidVariant = errors.New("bsatn: invalid variant index")

	// ErrTooLarge indicates a payload whose declared or actual length
	// exceeds MaxPayloadLen. Checked before any allocation on decode.
	ErrTooLarge = errors.New("bsatn: payload exceeds size limit")

	// ErrTypeMismatch indicates a value whose runtime shape disagrees
	// with its declared algebraic type.
	ErrTypeMismatch = errors.New("bsatn: value does not match type")

	// ErrInvalidFloat indicates a NaN or infinite float, which the wire
	// format does not permit.
	ErrInvalidFloat = errors.New("bsatn: invalid float value")

	// ErrTooDeep indicates nesting beyond MaxNestingDepth.
	ErrTooDeep = errors.New("bsatn: nesting too deep")
)
