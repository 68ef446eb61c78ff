// Package config loads and validates the YAML configuration that
// parameterizes a ring node: ring_bits, the stabilization cadence, RPC
// timeouts, bootstrap discovery, logging, and tracing.
package config

import (
	"fmt"
	"os"
	"time"

	"chordring/internal/logger"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document for cmd/node.
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Ring      RingConfig      `yaml:"ring"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Logger    LoggerConfig    `yaml:"logger"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// NodeConfig controls what address this process binds and advertises.
type NodeConfig struct {
	Bind string `yaml:"bind"` // address to bind the listener to, e.g. "0.0.0.0:9000"
	Host string `yaml:"host"` // host to advertise to peers, if different from Bind
	Port int    `yaml:"port"` // port to advertise to peers, if different from Bind
	ID   string `yaml:"id"`   // optional fixed hex ID; derived from the advertised address if empty
}

// RingConfig carries the parameters fixed by spec.md §6.
type RingConfig struct {
	Bits                     int      `yaml:"ring_bits"`
	StabilizeInterval        Duration `yaml:"stabilize_interval"`
	FixFingersInterval       Duration `yaml:"fix_fingers_interval"`
	CheckPredecessorInterval Duration `yaml:"check_predecessor_interval"`
	PingTimeout              Duration `yaml:"ping_timeout"`
	LookupTimeout            Duration `yaml:"lookup_timeout"`
	FailureTimeout           Duration `yaml:"failure_timeout"`
}

// Duration is a time.Duration that unmarshals from YAML either as a
// Go duration string ("1s", "100ms") or a plain integer number of
// nanoseconds, since yaml.v3 only supports the latter for a bare
// time.Duration field.
type Duration time.Duration

// AsDuration returns d as a time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var ns int64
	if err := node.Decode(&ns); err != nil {
		return fmt.Errorf("duration must be a string like \"1s\" or an integer number of nanoseconds")
	}
	*d = Duration(ns)
	return nil
}

// BootstrapConfig selects how a node discovers an existing ring
// member to join through.
type BootstrapConfig struct {
	Mode    string        `yaml:"mode"` // "static" or "route53"
	Peers   []string      `yaml:"peers"`
	Route53 Route53Config `yaml:"route53"`
}

// Route53Config configures the AWS Route53-backed bootstrap.
type Route53Config struct {
	HostedZoneID     string `yaml:"hosted_zone_id"`
	RecordNamePrefix string `yaml:"record_name_prefix"`
	TTL              int64  `yaml:"ttl_seconds"`
}

// LoggerConfig selects the logging backend and its sinks.
type LoggerConfig struct {
	Active   bool           `yaml:"active"`
	Level    string         `yaml:"level"`    // debug|info|warn|error
	Encoding string         `yaml:"encoding"` // json|console
	Rotation RotationConfig `yaml:"rotation"`
}

// RotationConfig configures lumberjack-backed log-file rotation.
type RotationConfig struct {
	Filename   string `yaml:"filename"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// TelemetryConfig controls distributed tracing.
type TelemetryConfig struct {
	ServiceName string        `yaml:"service_name"`
	Tracing     TracingConfig `yaml:"tracing"`
}

// TracingConfig selects the OTel span exporter.
type TracingConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Exporter     string `yaml:"exporter"` // "otlp" or "stdout"
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// defaults mirrors spec.md §6's configuration defaults.
func defaults() Config {
	return Config{
		Ring: RingConfig{
			Bits:                     160,
			StabilizeInterval:        Duration(time.Second),
			FixFingersInterval:       Duration(100 * time.Millisecond),
			CheckPredecessorInterval: Duration(6 * time.Second),
			PingTimeout:              Duration(2 * time.Second),
			LookupTimeout:            Duration(10 * time.Second),
			FailureTimeout:           Duration(3 * time.Second),
		},
		Bootstrap: BootstrapConfig{Mode: "static"},
		Logger: LoggerConfig{
			Active:   true,
			Level:    "info",
			Encoding: "json",
		},
		Telemetry: TelemetryConfig{ServiceName: "chordring-node"},
	}
}

// LoadConfig reads and parses the YAML file at path, applying defaults
// for anything left unset.
func LoadConfig(path string) (*Config, error) {
	cfg := defaults()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return &cfg, nil
}

// ValidateConfig checks that the loaded configuration is internally
// consistent before the node is constructed.
func (c *Config) ValidateConfig() error {
	if c.Ring.Bits <= 0 {
		return fmt.Errorf("ring.ring_bits must be > 0, got %d", c.Ring.Bits)
	}
	if c.Node.Bind == "" {
		return fmt.Errorf("node.bind must be set")
	}
	switch c.Bootstrap.Mode {
	case "static":
		// An empty peer list is valid: it means "create a new ring".
	case "route53":
		if c.Bootstrap.Route53.HostedZoneID == "" {
			return fmt.Errorf("bootstrap.route53.hosted_zone_id must be set when bootstrap.mode is route53")
		}
	default:
		return fmt.Errorf("unsupported bootstrap.mode %q (want static or route53)", c.Bootstrap.Mode)
	}
	if c.Ring.StabilizeInterval <= 0 {
		return fmt.Errorf("ring.stabilize_interval must be > 0")
	}
	if c.Ring.PingTimeout <= 0 {
		return fmt.Errorf("ring.ping_timeout must be > 0")
	}
	if c.Ring.LookupTimeout <= 0 {
		return fmt.Errorf("ring.lookup_timeout must be > 0")
	}
	return nil
}

// LogConfig logs the resolved configuration once at startup, the way
// the teacher's cmd/node surfaces every derived setting for operators.
func (c *Config) LogConfig(lgr logger.Logger) {
	lgr.Info("configuration loaded",
		logger.F("bind", c.Node.Bind),
		logger.F("ring_bits", c.Ring.Bits),
		logger.F("stabilize_interval", c.Ring.StabilizeInterval),
		logger.F("bootstrap_mode", c.Bootstrap.Mode),
		logger.F("tracing_enabled", c.Telemetry.Tracing.Enabled),
	)
}
