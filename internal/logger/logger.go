// Package logger defines the structured-logging interface used
// throughout the ring: every component logs through Logger rather than
// a concrete backend, so tests can wire in a NopLogger and production
// wires in the zap-backed implementation in the zap subpackage.
package logger

import "chordring/internal/domain"

// Field is a single structured key/value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// F builds a Field, the way every call site in this repo attaches
// structured context to a log line.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// FNode builds a Field carrying a NodeRef's id and address, logged
// under key as a map with an "id" (hex) and an "addr" entry.
func FNode(key string, n *domain.NodeRef) Field {
	if n == nil {
		return Field{Key: key, Value: nil}
	}
	return Field{Key: key, Value: map[string]string{
		"id":   n.ID.ToHexString(true),
		"addr": n.Addr,
	}}
}

// Logger is the structured logging interface consumed by the ring,
// its RPC layer, and its hosting process.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Named returns a child logger scoped under name (e.g. "chord",
	// "rpcpeer"), the way the teacher's logger threads a component
	// path through every line.
	Named(name string) Logger

	// WithNode returns a child logger that tags every subsequent line
	// with the given node's id and address.
	WithNode(n domain.NodeRef) Logger
}

// NopLogger discards everything. Used as the default when no logger
// is configured and in tests that don't care about log output.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field)      {}
func (NopLogger) Info(string, ...Field)       {}
func (NopLogger) Warn(string, ...Field)       {}
func (NopLogger) Error(string, ...Field)      {}
func (n NopLogger) Named(string) Logger       { return n }
func (n NopLogger) WithNode(domain.NodeRef) Logger { return n }
