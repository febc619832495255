package client

import (
	"net/http"
	"testing"
	"time"

	"github.com/clockworklabs/spacetimedb-go/pkg/protocol"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Encoding != protocol.EncodingBinary {
		t.Errorf("Encoding = %v, want binary", cfg.Encoding)
	}
	if cfg.HandshakeTimeout != 10*time.Second {
		t.Errorf("HandshakeTimeout = %v", cfg.HandshakeTimeout)
	}
	if cfg.PongWait <= cfg.PingInterval {
		t.Errorf("PongWait %v must exceed PingInterval %v", cfg.PongWait, cfg.PingInterval)
	}
	if cfg.MaxMessageSize != 32<<20 {
		t.Errorf("MaxMessageSize = %d", cfg.MaxMessageSize)
	}
	if cfg.Logger == nil {
		t.Error("Logger is nil")
	}
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token = "secret"
	cfg.Header = http.Header{"X-Custom": []string{"a"}}

	clone := cfg.Clone()
	if clone == cfg {
		t.Fatal("Clone() returned the same pointer")
	}
	clone.Token = "other"
	clone.Header.Set("X-Custom", "b")

	if cfg.Token != "secret" {
		t.Error("Clone() shares Token")
	}
	if cfg.Header.Get("X-Custom") != "a" {
		t.Error("Clone() shares Header")
	}

	var nilCfg *Config
	if nilCfg.Clone() != nil {
		t.Error("nil Clone() != nil")
	}
}
