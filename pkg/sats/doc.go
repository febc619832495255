// Package sats models the SpacetimeDB algebraic type system: paired type
// descriptions and value instances for products, sums, arrays, options,
// and primitives up to 256-bit integers.
//
// The package gives the bsatn Writer/Reader a schema-aware veneer: higher
// layers describe rows and reducer arguments as Types, carry their data as
// Values, and let Encode/Decode drive the tag sequences. Types are built
// explicitly with constructors (ProductType, SumType, ArrayType, ...) at
// startup and treated as immutable; there is no reflection and no runtime
// schema discovery.
//
// Decoding is type-directed. The expected Type determines how the wire
// bytes are interpreted; a tag that disagrees with it fails with a type
// mismatch rather than being coerced. The one place the wire chooses is a
// sum's variant index, which selects among the declared variants and is
// bounds-checked. Unknown struct fields on the wire are skipped, so a
// client built against an older schema still decodes the fields it knows.
//
// 128- and 256-bit integers are carried as fixed-size little-endian byte
// blobs. Arithmetic on them is a caller concern.
package sats
