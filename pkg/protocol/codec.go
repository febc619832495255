package protocol

import "fmt"

// Encoding selects the wire representation of protocol messages.
type Encoding int

const (
	// EncodingBinary is the BSATN binary protocol.
	EncodingBinary Encoding = iota

	// EncodingText is the JSON text protocol.
	EncodingText
)

// WebSocket subprotocol names negotiated at connect time.
const (
	SubprotocolBinary = "v1.bsatn.spacetimedb"
	SubprotocolText   = "v1.json.spacetimedb"
)

// String returns the subprotocol name for the encoding.
func (e Encoding) String() string {
	switch e {
	case EncodingBinary:
		return SubprotocolBinary
	case EncodingText:
		return SubprotocolText
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// EncodingFromSubprotocol maps a negotiated subprotocol name back to an
// Encoding.
func EncodingFromSubprotocol(name string) (Encoding, error) {
	switch name {
	case SubprotocolBinary:
		return EncodingBinary, nil
	case SubprotocolText:
		return EncodingText, nil
	default:
		return 0, fmt.Errorf("protocol: unknown subprotocol %q", name)
	}
}

// Codec encodes and decodes protocol messages in one encoding. The zero
// value is the binary codec.
type Codec struct {
	Encoding Encoding
}

// EncodeClient encodes a client message.
func (c Codec) EncodeClient(msg ClientMessage) ([]byte, error) {
	if c.Encoding == EncodingText {
		return MarshalClientMessageJSON(msg)
	}
	return EncodeClientMessage(msg)
}

// DecodeClient decodes a client message.
func (c Codec) DecodeClient(data []byte) (ClientMessage, error) {
	if c.Encoding == EncodingText {
		return UnmarshalClientMessageJSON(data)
	}
	return DecodeClientMessage(data)
}

// EncodeServer encodes a server message.
func (c Codec) EncodeServer(msg ServerMessage) ([]byte, error) {
	if c.Encoding == EncodingText {
		return MarshalServerMessageJSON(msg)
	}
	return EncodeServerMessage(msg)
}

// DecodeServer decodes a server message.
func (c Codec) DecodeServer(data []byte) (ServerMessage, error) {
	if c.Encoding == EncodingText {
		return UnmarshalServerMessageJSON(data)
	}
	return DecodeServerMessage(data)
}
