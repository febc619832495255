package client

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/clockworklabs/spacetimedb-go/pkg/metrics"
	"github.com/clockworklabs/spacetimedb-go/pkg/protocol"
)

// Config holds configuration for a database connection.
type Config struct {
	// URL is the WebSocket endpoint of the database,
	// e.g. "ws://localhost:3000/v1/database/my-module/subscribe".
	URL string

	// Token is the bearer token identifying this client. Empty means
	// connect anonymously; the server mints a fresh identity and returns
	// its token in the IdentityToken message.
	Token string

	// Encoding selects the wire encoding requested at connect time.
	// Default: binary.
	Encoding protocol.Encoding

	// HandshakeTimeout bounds the WebSocket handshake.
	// Default: 10s.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each outbound write.
	// Default: 10s.
	WriteTimeout time.Duration

	// PingInterval is how often a ping is sent to keep the connection
	// alive. Default: 30s.
	PingInterval time.Duration

	// PongWait is how long to wait for traffic before declaring the
	// connection dead. Default: 60s.
	PongWait time.Duration

	// MaxMessageSize caps inbound frame size in bytes.
	// Default: 32 MiB.
	MaxMessageSize int64

	// Header is extra HTTP headers sent with the handshake request.
	Header http.Header

	// Logger receives connection lifecycle logs.
	// Default: slog.Default().
	Logger *slog.Logger

	// Metrics receives connection counters. Nil disables instrumentation.
	Metrics *metrics.Metrics

	// Tracer creates spans for reducer calls. Nil uses the global tracer
	// provider.
	Tracer trace.Tracer
}

// DefaultConfig returns a Config with sensible defaults. URL and Token
// must still be set by the caller.
func DefaultConfig() *Config {
	return &Config{
		Encoding:         protocol.EncodingBinary,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		PingInterval:     30 * time.Second,
		PongWait:         60 * time.Second,
		MaxMessageSize:   32 << 20,
		Logger:           slog.Default(),
	}
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Header != nil {
		clone.Header = c.Header.Clone()
	}
	return &clone
}
