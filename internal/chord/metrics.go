package chord

import (
	"sync/atomic"
	"time"
)

// RoutingMetrics is a point-in-time snapshot of a node's lookup and
// RPC instrumentation, exposed by Node.RoutingMetrics.
type RoutingMetrics struct {
	Protocol string `json:"protocol"`

	LookupCount        uint64  `json:"lookups"`
	AvgLookupHops      float64 `json:"avg_lookup_hops"`
	AvgLookupLatencyMs float64 `json:"avg_lookup_ms"`

	RPCFailureCount    uint64 `json:"rpc_failures"`
	SuccessorFallbacks uint64 `json:"successor_fallbacks"`
}

// routingStats tracks Chord-specific routing instrumentation: lookup
// hop counts and latency, RPC failures, plus how often find_successor
// falls back to answering with its own successor instead of a
// finger-routed result.
type routingStats struct {
	lookupCount   atomic.Uint64
	lookupHops    atomic.Uint64
	lookupLatency atomic.Int64

	rpcFailureCount    atomic.Uint64
	successorFallbacks atomic.Uint64
}

func newRoutingStats() *routingStats {
	return &routingStats{}
}

func (s *routingStats) observeLookup(hops int, d time.Duration) {
	s.lookupCount.Add(1)
	s.lookupHops.Add(uint64(hops))
	s.lookupLatency.Add(d.Nanoseconds())
}

func (s *routingStats) observeRPCFailure() {
	s.rpcFailureCount.Add(1)
}

func (s *routingStats) observeSuccessorFallback() {
	s.successorFallbacks.Add(1)
}

func (s *routingStats) snapshot() RoutingMetrics {
	count := s.lookupCount.Load()
	return RoutingMetrics{
		Protocol:           "chord",
		LookupCount:        count,
		AvgLookupHops:      avgOf(s.lookupHops.Load(), count),
		AvgLookupLatencyMs: avgNanosMillis(s.lookupLatency.Load(), count),
		RPCFailureCount:    s.rpcFailureCount.Load(),
		SuccessorFallbacks: s.successorFallbacks.Load(),
	}
}

func avgOf(total uint64, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func avgNanosMillis(totalNano int64, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNano) / float64(count) / 1e6
}
