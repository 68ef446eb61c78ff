package chord

import (
	"time"

	"chordring/internal/kvstore"
	"chordring/internal/logger"
)

// Option configures a Node at construction time.
type Option func(*Node)

// WithLogger attaches a logger to the node.
func WithLogger(l logger.Logger) Option {
	return func(n *Node) { n.lgr = l }
}

// WithRoutingTable supplies the routing table the node will use. Every
// Node needs one. New does not check for it; without one, the node
// panics with a nil dereference the first time it reads routing state
// (Join, a lookup, or the first stabilization tick after Start).
func WithRoutingTable(rt *RoutingTable) Option {
	return func(n *Node) { n.rt = rt }
}

// WithStabilizeInterval overrides the stabilize() polling period.
func WithStabilizeInterval(d time.Duration) Option {
	return func(n *Node) { n.stabilizeInterval = d }
}

// WithFixFingersInterval overrides the fix_fingers() polling period.
func WithFixFingersInterval(d time.Duration) Option {
	return func(n *Node) { n.fixFingersInterval = d }
}

// WithCheckPredecessorInterval overrides the check_predecessor()
// polling period.
func WithCheckPredecessorInterval(d time.Duration) Option {
	return func(n *Node) { n.checkPredecessorInterval = d }
}

// WithRPCTimeout overrides the deadline Join applies to its bootstrap
// RPC and to each eager finger lookup, and fix_fingers applies to each
// finger lookup. stabilize() uses the pool's failure timeout and
// check_predecessor() the ping timeout instead.
func WithRPCTimeout(d time.Duration) Option {
	return func(n *Node) { n.rpcTimeout = d }
}

// WithPingTimeout overrides the deadline applied to check_predecessor's
// liveness probe, independent of the general RPC/failure timeout.
func WithPingTimeout(d time.Duration) Option {
	return func(n *Node) { n.pingTimeout = d }
}

// WithStore attaches the local kvstore this node serves put/get
// operations out of. Without one, the StorePut/StoreGet RPC handlers
// report an error, and so do Put/Get for keys this node owns.
func WithStore(s *kvstore.Store) Option {
	return func(n *Node) { n.store = s }
}
