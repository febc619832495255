package protocol

import "testing"

func FuzzDecodeServerMessage(f *testing.F) {
	seed, err := EncodeServerMessage(IdentityToken{
		Identity:     Identity{Data: []byte{0xAA}},
		Token:        "tok",
		ConnectionID: ConnectionID{Data: []byte{0x01}},
	})
	if err != nil {
		f.Fatal(err)
	}
	f.Add(seed)
	f.Add([]byte{0x13, 0x02, 0x00, 0x00, 0x00})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		msg, err := DecodeServerMessage(data)
		if err != nil {
			return
		}
		// Re-encoding must not panic. It may reject a message decoded from
		// a payload with no status field, so the error is not asserted.
		_, _ = EncodeServerMessage(msg)
	})
}

func FuzzDecodeClientMessage(f *testing.F) {
	seed, err := EncodeClientMessage(CallReducer{Reducer: "r", Args: []byte{1}, RequestID: 1})
	if err != nil {
		f.Fatal(err)
	}
	f.Add(seed)
	f.Add([]byte{0x13, 0x00, 0x00, 0x00, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		msg, err := DecodeClientMessage(data)
		if err != nil {
			return
		}
		if _, err := EncodeClientMessage(msg); err != nil {
			t.Errorf("re-encode of decoded message failed: %v", err)
		}
	})
}

func FuzzUnmarshalClientMessageJSON(f *testing.F) {
	f.Add([]byte(`{"Subscribe": {"query_strings": ["SELECT 1"], "request_id": 1}}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = UnmarshalClientMessageJSON(data)
	})
}
