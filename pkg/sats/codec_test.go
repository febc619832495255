package sats

import (
	"errors"
	"reflect"
	"testing"

	"github.com/clockworklabs/spacetimedb-go/pkg/bsatn"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		typ   *Type
		value Value
	}{
		{"bool_true", BoolType(), Bool(true)},
		{"bool_false", BoolType(), Bool(false)},
		{"u8", U8Type(), U8(42)},
		{"i8", I8Type(), I8(-3)},
		{"u16", U16Type(), U16(65000)},
		{"i16", I16Type(), I16(-12345)},
		{"u32", U32Type(), U32(4000000000)},
		{"i32", I32Type(), I32(-2000000000)},
		{"u64", U64Type(), U64(1 << 60)},
		{"i64", I64Type(), I64(-(1 << 60))},
		{"u128", U128Type(), U128([16]byte{1, 2, 3})},
		{"i128", I128Type(), I128([16]byte{0xFF, 0xFE})},
		{"u256", U256Type(), U256([32]byte{9})},
		{"i256", I256Type(), I256([32]byte{7, 7})},
		{"f32", F32Type(), F32(1.5)},
		{"f64", F64Type(), F64(-2.25)},
		{"string", StringType(), Str("héllo")},
		{"string_empty", StringType(), Str("")},
		{"bytes", BytesType(), Bytes([]byte{0, 1, 2})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Encode(tc.value, tc.typ)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got, err := Decode(data, tc.typ)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tc.value) {
				t.Errorf("round trip = %+v, want %+v", got, tc.value)
			}
		})
	}
}

func TestCompositeRoundTrip(t *testing.T) {
	playerType := ProductType(
		FieldOf("id", U64Type()),
		FieldOf("name", StringType()),
		FieldOf("health", F32Type()),
		FieldOf("tags", ArrayType(StringType())),
		FieldOf("guild", OptionType(StringType())),
	)
	player := Product(
		U64(7),
		Str("alice"),
		F32(99.5),
		Array(Str("fast"), Str("sneaky")),
		Some(Str("night owls")),
	)

	statusType := SumType(
		UnitVariant("Offline"),
		VariantOf("Online", U32Type()),
	)

	tests := []struct {
		name  string
		typ   *Type
		value Value
	}{
		{"product", playerType, player},
		{"array_of_products", ArrayType(playerType), Array(player, player)},
		{"empty_array", ArrayType(U8Type()), Array()},
		{"option_none", OptionType(U8Type()), None()},
		{"option_some_nested", OptionType(OptionType(BoolType())), Some(Some(Bool(true)))},
		{"sum_unit", statusType, UnitSum(0)},
		{"sum_payload", statusType, Sum(1, U32(12345))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Encode(tc.value, tc.typ)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got, err := Decode(data, tc.typ)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tc.value) {
				t.Errorf("round trip = %+v, want %+v", got, tc.value)
			}
		})
	}
}

func TestSumVariantString(t *testing.T) {
	// Two-variant sum, index 1 carrying "hi": the decoded value must
	// report the index and reconstruct the payload exactly.
	typ := SumType(
		VariantOf("Left", U8Type()),
		VariantOf("Right", StringType()),
	)
	data, err := Encode(Sum(1, Str("hi")), typ)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(data, typ)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	idx, payload, ok := got.Variant()
	if !ok || idx != 1 {
		t.Fatalf("Variant() = %d, %v; want 1, true", idx, ok)
	}
	s, ok := payload.AsString()
	if !ok || s != "hi" {
		t.Errorf("payload = %q, %v; want \"hi\", true", s, ok)
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	// Encode with a newer 3-field schema, decode with an older 2-field
	// one. The extra field must be skipped cleanly.
	newType := ProductType(
		FieldOf("x", U32Type()),
		FieldOf("y", U32Type()),
		FieldOf("z", StringType()),
	)
	oldType := ProductType(
		FieldOf("x", U32Type()),
		FieldOf("y", U32Type()),
	)

	data, err := Encode(Product(U32(1), U32(2), Str("new")), newType)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(data, oldType)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := Product(U32(1), U32(2))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
}

func TestEncodeShapeMismatch(t *testing.T) {
	typ := ProductType(
		FieldOf("a", U8Type()),
		FieldOf("b", U8Type()),
	)

	tests := []struct {
		name  string
		typ   *Type
		value Value
		want  error
	}{
		{"wrong_kind", U8Type(), Str("not a number"), bsatn.ErrTypeMismatch},
		{"fewer_fields", typ, Product(U8(1)), bsatn.ErrTypeMismatch},
		{"extra_fields", typ, Product(U8(1), U8(2), U8(3)), bsatn.ErrTypeMismatch},
		{"field_kind", typ, Product(U8(1), Bool(true)), bsatn.ErrTypeMismatch},
		{"variant_out_of_range", SumType(UnitVariant("Only")), UnitSum(5), bsatn.ErrInvalidVariant},
		{"unresolved_ref", RefType(3), U8(1), ErrUnresolvedRef},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Encode(tc.value, tc.typ); !errors.Is(err, tc.want) {
				t.Errorf("Encode() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Run("variant_out_of_range", func(t *testing.T) {
		w := bsatn.NewWriter()
		w.WriteEnumHeader(9)
		w.WriteStructHeader(0)
		typ := SumType(UnitVariant("A"), UnitVariant("B"))
		if _, err := Decode(w.Bytes(), typ); !errors.Is(err, bsatn.ErrInvalidVariant) {
			t.Errorf("Decode() = %v, want ErrInvalidVariant", err)
		}
	})

	t.Run("tag_mismatch", func(t *testing.T) {
		w := bsatn.NewWriter()
		if err := w.WriteString("text"); err != nil {
			t.Fatal(err)
		}
		if _, err := Decode(w.Bytes(), U64Type()); !errors.Is(err, bsatn.ErrTypeMismatch) {
			t.Errorf("Decode() = %v, want ErrTypeMismatch", err)
		}
	})

	t.Run("missing_field", func(t *testing.T) {
		w := bsatn.NewWriter()
		w.WriteStructHeader(1)
		if err := w.WriteFieldName("a"); err != nil {
			t.Fatal(err)
		}
		w.WriteU8(1)
		typ := ProductType(FieldOf("a", U8Type()), FieldOf("b", U8Type()))
		if _, err := Decode(w.Bytes(), typ); !errors.Is(err, bsatn.ErrTypeMismatch) {
			t.Errorf("Decode() = %v, want ErrTypeMismatch", err)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		data, err := Encode(Str("hello"), StringType())
		if err != nil {
			t.Fatal(err)
		}
		for cut := 0; cut < len(data); cut++ {
			if _, err := Decode(data[:cut], StringType()); err == nil {
				t.Errorf("Decode() on %d/%d bytes succeeded, want error", cut, len(data))
			}
		}
	})

	t.Run("unknown_tag", func(t *testing.T) {
		if _, err := Decode([]byte{0x7F}, U8Type()); !errors.Is(err, bsatn.ErrInvalidTag) {
			t.Errorf("Decode() = %v, want ErrInvalidTag", err)
		}
	})

	t.Run("hostile_array_count", func(t *testing.T) {
		// Array header declaring 2^20 elements over a 1 MiB body. The
		// element slice is ~112 bytes per entry, so the count must be
		// rejected before the pre-allocation, not after.
		data := make([]byte, 0, 5+bsatn.MaxPayloadLen)
		data = append(data, byte(bsatn.TagArray), 0x00, 0x00, 0x10, 0x00)
		data = append(data, make([]byte, bsatn.MaxPayloadLen)...)
		if _, err := Decode(data, ArrayType(U8Type())); !errors.Is(err, bsatn.ErrTooLarge) {
			t.Errorf("Decode() = %v, want ErrTooLarge", err)
		}
	})
}

// Skip and typed decode must consume identical byte counts for any valid
// encoding.
func TestSkipDecodeEquivalence(t *testing.T) {
	typ := ProductType(
		FieldOf("id", U64Type()),
		FieldOf("tags", ArrayType(StringType())),
		FieldOf("status", SumType(UnitVariant("Off"), VariantOf("On", F64Type()))),
		FieldOf("note", OptionType(StringType())),
	)
	value := Product(
		U64(1),
		Array(Str("a"), Str("b")),
		Sum(1, F64(0.5)),
		None(),
	)

	data, err := Encode(value, typ)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	rd := bsatn.NewReader(data)
	if _, err := DecodeFrom(rd, typ); err != nil {
		t.Fatalf("DecodeFrom() error = %v", err)
	}
	decodePos := rd.Position()

	rs := bsatn.NewReader(data)
	if err := rs.SkipValue(); err != nil {
		t.Fatalf("SkipValue() error = %v", err)
	}
	if rs.Position() != decodePos {
		t.Errorf("skip consumed %d bytes, decode consumed %d", rs.Position(), decodePos)
	}
}
