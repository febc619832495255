package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// Compression identifies the compression applied to a frame body. The value
// doubles as the frame's leading tag byte.
type Compression byte

const (
	CompressionNone   Compression = 0
	CompressionBrotli Compression = 1
	CompressionGzip   Compression = 2
)

// String returns the name of the compression scheme.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionBrotli:
		return "brotli"
	case CompressionGzip:
		return "gzip"
	default:
		return fmt.Sprintf("Compression(%d)", byte(c))
	}
}

var (
	// ErrUnknownCompression reports a frame tag byte outside the known set.
	ErrUnknownCompression = errors.New("wire: unknown compression tag")

	// ErrFrameTooLarge reports a frame whose decompressed body exceeds
	// MaxDecompressedLen.
	ErrFrameTooLarge = errors.New("wire: decompressed frame too large")

	// ErrEmptyFrame reports a frame with no tag byte.
	ErrEmptyFrame = errors.New("wire: empty frame")
)

// MaxDecompressedLen caps how many bytes a single frame may decompress to.
// A hostile peer can otherwise send a tiny frame that inflates without
// bound.
const MaxDecompressedLen = 16 << 20

// CompressorConfig controls when and how outbound frames are compressed.
type CompressorConfig struct {
	// Enabled turns compression off entirely when false.
	Enabled bool

	// Preferred is the scheme used when a body is worth compressing.
	Preferred Compression

	// MinSize is the smallest body, in bytes, worth compressing.
	MinSize int

	// MaxSize is the largest body that will be compressed. Bodies above it
	// are sent uncompressed rather than stalling the send loop.
	MaxSize int

	// Level is the compression level for the chosen scheme.
	Level int
}

// DefaultCompressorConfig returns the production defaults: brotli at a
// balanced level for bodies between 1 KiB and 10 MiB.
func DefaultCompressorConfig() CompressorConfig {
	return CompressorConfig{
		Enabled:   true,
		Preferred: CompressionBrotli,
		MinSize:   1024,
		MaxSize:   10 << 20,
		Level:     6,
	}
}

// Clone returns a copy of the config.
func (c CompressorConfig) Clone() CompressorConfig { return c }

// Compress compresses body per the config. It returns the (possibly
// untouched) bytes and the scheme actually used; compression that fails to
// shrink the body is discarded.
func Compress(body []byte, cfg CompressorConfig) ([]byte, Compression, error) {
	if !cfg.Enabled || len(body) < cfg.MinSize || len(body) > cfg.MaxSize {
		return body, CompressionNone, nil
	}

	var buf bytes.Buffer
	switch cfg.Preferred {
	case CompressionBrotli:
		bw := brotli.NewWriterLevel(&buf, cfg.Level)
		if _, err := bw.Write(body); err != nil {
			return nil, 0, fmt.Errorf("wire: brotli compress: %w", err)
		}
		if err := bw.Close(); err != nil {
			return nil, 0, fmt.Errorf("wire: brotli compress: %w", err)
		}
	case CompressionGzip:
		gw, err := gzip.NewWriterLevel(&buf, cfg.Level)
		if err != nil {
			return nil, 0, fmt.Errorf("wire: gzip compress: %w", err)
		}
		if _, err := gw.Write(body); err != nil {
			return nil, 0, fmt.Errorf("wire: gzip compress: %w", err)
		}
		if err := gw.Close(); err != nil {
			return nil, 0, fmt.Errorf("wire: gzip compress: %w", err)
		}
	case CompressionNone:
		return body, CompressionNone, nil
	default:
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownCompression, byte(cfg.Preferred))
	}

	if buf.Len() >= len(body) {
		return body, CompressionNone, nil
	}
	return buf.Bytes(), cfg.Preferred, nil
}

// Decompress expands body per the given scheme, enforcing
// MaxDecompressedLen.
func Decompress(body []byte, c Compression) ([]byte, error) {
	var src io.Reader
	switch c {
	case CompressionNone:
		if len(body) > MaxDecompressedLen {
			return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(body))
		}
		return body, nil
	case CompressionBrotli:
		src = brotli.NewReader(bytes.NewReader(body))
	case CompressionGzip:
		gr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("wire: gzip decompress: %w", err)
		}
		defer gr.Close()
		src = gr
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, byte(c))
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(src, MaxDecompressedLen+1))
	if err != nil {
		return nil, fmt.Errorf("wire: %s decompress: %w", c, err)
	}
	if n > MaxDecompressedLen {
		return nil, ErrFrameTooLarge
	}
	return buf.Bytes(), nil
}
