package sats

import (
	"testing"

	"github.com/clockworklabs/spacetimedb-go/pkg/bsatn"
)

func FuzzDecodeFrom(f *testing.F) {
	typ := ProductType(
		FieldOf("id", U64Type()),
		FieldOf("name", StringType()),
		FieldOf("tags", ArrayType(StringType())),
		FieldOf("status", SumType(UnitVariant("Off"), VariantOf("On", U32Type()))),
		FieldOf("note", OptionType(StringType())),
	)
	seed, err := Encode(Product(
		U64(1), Str("a"), Array(Str("x")), Sum(1, U32(2)), None(),
	), typ)
	if err != nil {
		f.Fatal(err)
	}
	f.Add(seed)
	f.Add([]byte{0x12, 0x00, 0x00, 0x00, 0x00})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		r := bsatn.NewReader(data)
		v, err := DecodeFrom(r, typ)
		if err != nil {
			return
		}
		// Whatever decodes must re-encode against the same type.
		if _, err := Encode(v, typ); err != nil {
			t.Errorf("re-encode of decoded value failed: %v", err)
		}
	})
}
