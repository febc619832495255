package wire

// Server-to-client frames carry a one-byte compression tag before the
// message body. Client-to-server frames are bare message bodies; the server
// never has to sniff a tag on them.

// EncodeFrame compresses body per cfg and prepends the compression tag.
func EncodeFrame(body []byte, cfg CompressorConfig) ([]byte, error) {
	compressed, scheme, err := Compress(body, cfg)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(compressed)+1)
	frame = append(frame, byte(scheme))
	return append(frame, compressed...), nil
}

// DecodeFrame strips the compression tag and returns the decompressed
// message body.
func DecodeFrame(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}
	return Decompress(frame[1:], Compression(frame[0]))
}
