package sats

// Kind identifies the shape of an algebraic type.
type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
	KindU128
	KindI128
	KindU256
	KindI256
	KindF32
	KindF64
	KindString
	KindBytes
	KindArray
	KindProduct
	KindSum
	KindOption
	KindRef
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindU8:
		return "U8"
	case KindI8:
		return "I8"
	case KindU16:
		return "U16"
	case KindI16:
		return "I16"
	case KindU32:
		return "U32"
	case KindI32:
		return "I32"
	case KindU64:
		return "U64"
	case KindI64:
		return "I64"
	case KindU128:
		return "U128"
	case KindI128:
		return "I128"
	case KindU256:
		return "U256"
	case KindI256:
		return "I256"
	case KindF32:
		return "F32"
	case KindF64:
		return "F64"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	case KindArray:
		return "Array"
	case KindProduct:
		return "Product"
	case KindSum:
		return "Sum"
	case KindOption:
		return "Option"
	case KindRef:
		return "Ref"
	default:
		return "Unknown"
	}
}

// Type is an immutable description of an algebraic type: a primitive, an
// array of a single element type, a product of named fields, a sum of named
// variants, or an option wrapping an inner type.
//
// Types are constructed once at startup (by hand or by generated code) and
// treated as read-only thereafter; the codec consumes them, it never
// discovers them via reflection.
type Type struct {
	kind     Kind
	elem     *Type     // Array, Option
	fields   []Field   // Product
	variants []Variant // Sum
	ref      uint32    // Ref
}

// Field is a named, typed member of a product type.
type Field struct {
	Name string
	Type *Type
}

// Variant is a named member of a sum type. A nil Type marks a unit variant,
// whose payload is an empty product on the wire.
type Variant struct {
	Name string
	Type *Type
}

// Kind returns the kind of the type.
func (t *Type) Kind() Kind { return t.kind }

// Elem returns the element type of an Array or Option, nil otherwise.
func (t *Type) Elem() *Type { return t.elem }

// Fields returns the ordered fields of a Product type.
func (t *Type) Fields() []Field { return t.fields }

// Variants returns the ordered variants of a Sum type.
func (t *Type) Variants() []Variant { return t.variants }

// Ref returns the typespace index of a Ref type.
func (t *Type) Ref() uint32 { return t.ref }

// FieldByName returns the index and field with the given name, or -1 if the
// product has no such field.
func (t *Type) FieldByName(name string) (int, *Field) {
	for i := range t.fields {
		if t.fields[i].Name == name {
			return i, &t.fields[i]
		}
	}
	return -1, nil
}

// Primitive type singletons. Primitives carry no parameters, so a single
// shared instance per kind suffices.
var (
	boolType   = &Type{kind: KindBool}
	u8Type     = &Type{kind: KindU8}
	i8Type     = &Type{kind: KindI8}
	u16Type    = &Type{kind: KindU16}
	i16Type    = &Type{kind: KindI16}
	u32Type    = &Type{kind: KindU32}
	i32Type    = &Type{kind: KindI32}
	u64Type    = &Type{kind: KindU64}
	i64Type    = &Type{kind: KindI64}
	u128Type   = &Type{kind: KindU128}
	i128Type   = &Type{kind: KindI128}
	u256Type   = &Type{kind: KindU256}
	i256Type   = &Type{kind: KindI256}
	f32Type    = &Type{kind: KindF32}
	f64Type    = &Type{kind: KindF64}
	stringType = &Type{kind: KindString}
	bytesType  = &Type{kind: KindBytes}
)

// BoolType returns the boolean type.
func BoolType() *Type { return boolType }

// U8Type returns the uint8 type.
func U8Type() *Type { return u8Type }

// I8Type returns the int8 type.
func I8Type() *Type { return i8Type }

// U16Type returns the uint16 type.
func U16Type() *Type { return u16Type }

// I16Type returns the int16 type.
func I16Type() *Type { return i16Type }

// U32Type returns the uint32 type.
func U32Type() *Type { return u32Type }

// I32Type returns the int32 type.
func I32Type() *Type { return i32Type }

// U64Type returns the uint64 type.
func U64Type() *Type { return u64Type }

// I64Type returns the int64 type.
func I64Type() *Type { return i64Type }

// U128Type returns the 128-bit unsigned integer type.
func U128Type() *Type { return u128Type }

// I128Type returns the 128-bit signed integer type.
func I128Type() *Type { return i128Type }

// U256Type returns the 256-bit unsigned integer type.
func U256Type() *Type { return u256Type }

// I256Type returns the 256-bit signed integer type.
func I256Type() *Type { return i256Type }

// F32Type returns the float32 type.
func F32Type() *Type { return f32Type }

// F64Type returns the float64 type.
func F64Type() *Type { return f64Type }

// StringType returns the UTF-8 string type.
func StringType() *Type { return stringType }

// BytesType returns the raw byte array type.
func BytesType() *Type { return bytesType }

// ArrayType returns a homogeneous array type with the given element type.
func ArrayType(elem *Type) *Type {
	return &Type{kind: KindArray, elem: elem}
}

// OptionType returns an option type wrapping the given inner type.
func OptionType(inner *Type) *Type {
	return &Type{kind: KindOption, elem: inner}
}

// ProductType returns a product (struct) type with the given ordered fields.
func ProductType(fields ...Field) *Type {
	return &Type{kind: KindProduct, fields: fields}
}

// SumType returns a sum (tagged union) type with the given ordered variants.
func SumType(variants ...Variant) *Type {
	return &Type{kind: KindSum, variants: variants}
}

// RefType returns a reference to a type by typespace index. Resolution is
// the schema layer's concern; the codec treats unresolved refs as errors.
func RefType(idx uint32) *Type {
	return &Type{kind: KindRef, ref: idx}
}

// FieldOf is a convenience constructor for a product field.
func FieldOf(name string, t *Type) Field {
	return Field{Name: name, Type: t}
}

// VariantOf is a convenience constructor for a sum variant.
func VariantOf(name string, t *Type) Variant {
	return Variant{Name: name, Type: t}
}

// UnitVariant is a convenience constructor for a payload-free variant.
func UnitVariant(name string) Variant {
	return Variant{Name: name}
}
