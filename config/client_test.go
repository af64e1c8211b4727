package config

import (
	"strings"
	"testing"
	"time"
)

func TestWithDefaultsFillsZeroValues(t *testing.T) {
	cfg := ClientConfig{RemoteAddress: "localhost:8765"}.WithDefaults()

	if cfg.Timeout != DefaultTimeout {
		t.Errorf("want Timeout %s, got %s", DefaultTimeout, cfg.Timeout)
	}
	if cfg.EntrySizeHint != DefaultEntrySizeHint {
		t.Errorf("want EntrySizeHint %d, got %d", DefaultEntrySizeHint, cfg.EntrySizeHint)
	}
}

func TestWithDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := ClientConfig{
		RemoteAddress: "localhost:8765",
		Timeout:       5 * time.Second,
		EntrySizeHint: 1024,
	}.WithDefaults()

	if cfg.Timeout != 5*time.Second {
		t.Errorf("want Timeout 5s, got %s", cfg.Timeout)
	}
	if cfg.EntrySizeHint != 1024 {
		t.Errorf("want EntrySizeHint 1024, got %d", cfg.EntrySizeHint)
	}
}

func TestStringIncludesRemoteAddress(t *testing.T) {
	cfg := ClientConfig{RemoteAddress: "localhost:8765", Name: "default"}.WithDefaults()
	s := cfg.String()
	if !strings.Contains(s, "localhost:8765") {
		t.Errorf("expected String() to mention the remote address, got %q", s)
	}
	if !strings.Contains(s, "default") {
		t.Errorf("expected String() to mention the map name, got %q", s)
	}
}
