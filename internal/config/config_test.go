package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
node:
  bind: "127.0.0.1:9000"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Ring.Bits != 160 {
		t.Errorf("default ring_bits = %d, want 160", cfg.Ring.Bits)
	}
	if cfg.Bootstrap.Mode != "static" {
		t.Errorf("default bootstrap mode = %q, want static", cfg.Bootstrap.Mode)
	}
	if err := cfg.ValidateConfig(); err != nil {
		t.Errorf("ValidateConfig: %v", err)
	}
}

func TestLoadConfigParsesDurationStrings(t *testing.T) {
	path := writeTempConfig(t, `
node:
  bind: "127.0.0.1:9000"
ring:
  stabilize_interval: 1s
  ping_timeout: 500ms
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.Ring.StabilizeInterval.AsDuration(); got != time.Second {
		t.Errorf("stabilize_interval = %v, want 1s", got)
	}
	if got := cfg.Ring.PingTimeout.AsDuration(); got != 500*time.Millisecond {
		t.Errorf("ping_timeout = %v, want 500ms", got)
	}
}

func TestLoadConfigRejectsInvalidDurationString(t *testing.T) {
	path := writeTempConfig(t, `
node:
  bind: "127.0.0.1:9000"
ring:
  stabilize_interval: "not-a-duration"
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid duration string")
	}
}

func TestValidateConfigRejectsMissingBind(t *testing.T) {
	cfg := defaults()
	if err := cfg.ValidateConfig(); err == nil {
		t.Fatal("expected error for missing node.bind")
	}
}

func TestValidateConfigRejectsRoute53WithoutZone(t *testing.T) {
	cfg := defaults()
	cfg.Node.Bind = "127.0.0.1:9000"
	cfg.Bootstrap.Mode = "route53"
	if err := cfg.ValidateConfig(); err == nil {
		t.Fatal("expected error for route53 bootstrap without hosted_zone_id")
	}
}

func TestValidateConfigRejectsUnknownBootstrapMode(t *testing.T) {
	cfg := defaults()
	cfg.Node.Bind = "127.0.0.1:9000"
	cfg.Bootstrap.Mode = "carrier-pigeon"
	if err := cfg.ValidateConfig(); err == nil {
		t.Fatal("expected error for unknown bootstrap mode")
	}
}
