package bsatn

import (
	"testing"
)

// FuzzSkipValue tests that skipping arbitrary bytes doesn't panic and never
// reads out of bounds.
func FuzzSkipValue(f *testing.F) {
	// Seed with valid encodings of each shape
	w := NewWriter()
	w.WriteU8(42)
	f.Add(w.Bytes())

	w = NewWriter()
	w.WriteArrayHeader(2)
	w.WriteI32(10)
	w.WriteI32(20)
	f.Add(w.Bytes())

	w = NewWriter()
	w.WriteStructHeader(1)
	w.WriteFieldName("f")
	w.WriteString("v")
	f.Add(w.Bytes())

	w = NewWriter()
	w.WriteEnumHeader(1)
	w.WriteOptionSomeTag()
	w.WriteBool(true)
	f.Add(w.Bytes())

	f.Fuzz(func(t *testing.T, data []byte) {
		r := NewReader(data)
		if err := r.SkipValue(); err != nil {
			if r.Position() != 0 {
				t.Errorf("cursor at %d after failed skip, want 0", r.Position())
			}
		}
	})
}

// FuzzReadString tests that decoding arbitrary bytes doesn't panic.
func FuzzReadString(f *testing.F) {
	w := NewWriter()
	w.WriteString("hello")
	f.Add(w.Bytes()[1:]) // payload readers assume the tag is consumed

	f.Fuzz(func(t *testing.T, data []byte) {
		r := NewReader(data)
		_, _ = r.ReadString()
	})
}

// FuzzReadFieldName tests that decoding arbitrary bytes doesn't panic.
func FuzzReadFieldName(f *testing.F) {
	f.Add([]byte{0x02, 'i', 'd'})
	f.Add([]byte{0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		r := NewReader(data)
		_, _ = r.ReadFieldName()
	})
}
