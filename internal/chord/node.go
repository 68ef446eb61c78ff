// Package chord implements the Chord overlay: identifier ring routing
// state, the find_successor lookup engine, the stabilization loop,
// and the peer RPC surface described by §3/§4.
package chord

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"chordring/internal/domain"
	"chordring/internal/kvstore"
	"chordring/internal/logger"
	"chordring/internal/rpcpeer"
)

// State is a node's position in the §4.7 lifecycle state machine.
type State int32

const (
	StateCreated State = iota
	StateJoining
	StateLive
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateJoining:
		return "JOINING"
	case StateLive:
		return "LIVE"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Node is a Chord ring participant: routing state, a peer connection
// pool, and the background stabilization task. It is served to peers
// through PeerServerAdapter (see NewPeerServer), which implements
// rpcpeer.PeerServer on its behalf.
type Node struct {
	lgr logger.Logger
	cp  *rpcpeer.Pool
	rt  *RoutingTable

	stabilizeInterval        time.Duration
	fixFingersInterval       time.Duration
	checkPredecessorInterval time.Duration
	rpcTimeout               time.Duration
	pingTimeout              time.Duration

	store *kvstore.Store

	state atomic.Int32

	stopOnce sync.Once
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	nextFingerMu sync.Mutex
	nextFinger   int

	stats *routingStats
}

// New constructs a Node over clientpool. Callers must supply
// WithRoutingTable; other options fall back to spec.md §6 defaults.
func New(clientpool *rpcpeer.Pool, opts ...Option) *Node {
	n := &Node{
		lgr:                      &logger.NopLogger{},
		cp:                       clientpool,
		stabilizeInterval:        time.Second,
		fixFingersInterval:       100 * time.Millisecond,
		checkPredecessorInterval: 6 * time.Second,
		rpcTimeout:               10 * time.Second,
		pingTimeout:              2 * time.Second,
		stats:                    newRoutingStats(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.state.Store(int32(StateCreated))
	return n
}

// State returns the node's current lifecycle state.
func (n *Node) State() State {
	return State(n.state.Load())
}

// Self returns this node's own NodeRef.
func (n *Node) Self() domain.NodeRef {
	return n.rt.Self()
}

// Space returns the identifier space this node operates in.
func (n *Node) Space() domain.Space {
	return n.rt.Space()
}

// Successor returns the current successor.
func (n *Node) Successor() (domain.NodeRef, bool) {
	return n.rt.Successor()
}

// Predecessor returns the current predecessor, if any.
func (n *Node) Predecessor() (domain.NodeRef, bool) {
	return n.rt.Predecessor()
}

// Fingers returns a snapshot of the populated finger table entries,
// for diagnostics.
func (n *Node) Fingers() []domain.NodeRef {
	return n.rt.Fingers()
}

// RoutingMetrics returns a snapshot of lookup/RPC instrumentation.
func (n *Node) RoutingMetrics() RoutingMetrics {
	return n.stats.snapshot()
}

// Join bootstraps the node per §4.4. A nil bootstrap creates a new
// solo ring; a non-nil bootstrap joins the ring reachable through it.
// The node transitions CREATED->LIVE (solo) or CREATED->JOINING->LIVE
// (bootstrap), falling back to CREATED if the bootstrap RPC fails.
func (n *Node) Join(ctx context.Context, bootstrap *domain.NodeRef) error {
	self := n.rt.Self()

	if bootstrap == nil {
		n.rt.SetSuccessor(self)
		n.rt.ClearPredecessor()
		for i := 0; i < n.rt.Space().Bits; i++ {
			n.rt.SetFinger(i, self)
		}
		n.state.Store(int32(StateLive))
		n.lgr.Info("join: created new ring", logger.FNode("self", &self))
		return nil
	}

	n.state.Store(int32(StateJoining))

	cli, conn, err := n.cp.DialEphemeral(bootstrap.Addr)
	if err != nil {
		n.state.Store(int32(StateCreated))
		return fmt.Errorf("join: dial bootstrap %s: %w", bootstrap.Addr, err)
	}
	defer conn.Close()

	jctx, cancel := context.WithTimeout(ctx, n.rpcTimeout)
	succ, err := rpcpeer.FindSuccessor(jctx, cli, n.rt.Space(), self.ID)
	cancel()
	if err != nil {
		n.state.Store(int32(StateCreated))
		return fmt.Errorf("join: bootstrap find_successor failed: %w", err)
	}
	if succ.ID.Equal(self.ID) {
		n.state.Store(int32(StateCreated))
		return fmt.Errorf("join: a node with this id already exists in the ring")
	}

	n.rt.SetSuccessor(succ)
	n.rt.ClearPredecessor()

	for i := 0; i < n.rt.Space().Bits; i++ {
		start := n.fingerStart(i)
		fctx, fcancel := context.WithTimeout(ctx, n.rpcTimeout)
		owner, err := n.FindSuccessor(fctx, start)
		fcancel()
		if err != nil {
			n.lgr.Warn("join: eager finger population failed",
				logger.F("finger_index", i), logger.F("err", err))
			continue
		}
		n.rt.SetFinger(i, owner)
	}

	n.state.Store(int32(StateLive))
	n.lgr.Info("join: joined existing ring",
		logger.FNode("self", &self), logger.FNode("successor", &succ))
	return nil
}

// fingerStart computes start_i = (self.id + 2^i) mod 2^m. Uses
// big.Int directly rather than Space.FromUint64/AddMod so i can range
// up to m-1 even when m exceeds 64 (production rings use m = 160).
func (n *Node) fingerStart(i int) domain.ID {
	space := n.rt.Space()
	self := n.rt.Self().ID.ToBigInt()
	two := new(big.Int).Lsh(big.NewInt(1), uint(i))
	sum := new(big.Int).Add(self, two)
	mod := new(big.Int).Lsh(big.NewInt(1), uint(space.Bits))
	sum.Mod(sum, mod)
	id, _ := space.FromDecimalString(sum.String())
	return id
}

// FindSuccessor implements §4.3: resolve the node responsible for id,
// locally if possible, otherwise via closest_preceding_finger plus one
// RPC hop. RPC failure falls back to the local successor rather than
// propagating an error (documented open-question resolution: see
// DESIGN.md).
func (n *Node) FindSuccessor(ctx context.Context, id domain.ID) (domain.NodeRef, error) {
	start := time.Now()
	result, hops, err := n.findSuccessor(ctx, id, 0)
	n.stats.observeLookup(hops, time.Since(start))
	return result, err
}

const maxLookupHops = 256

func (n *Node) findSuccessor(ctx context.Context, id domain.ID, hops int) (domain.NodeRef, int, error) {
	self := n.rt.Self()
	succ, ok := n.rt.Successor()
	if !ok {
		return domain.NodeRef{}, hops, fmt.Errorf("find_successor: no successor set")
	}

	if domain.InRange(id, self.ID, succ.ID, true, true) {
		return succ, hops, nil
	}

	closest := n.rt.ClosestPrecedingFinger(id)
	if closest.ID.Equal(self.ID) || hops >= maxLookupHops {
		n.stats.observeSuccessorFallback()
		return succ, hops, nil
	}

	cli, err := n.cp.GetFromPool(closest.Addr)
	if err != nil {
		n.lgr.Warn("find_successor: dial failed, falling back to successor",
			logger.F("peer", closest.Addr), logger.F("err", err))
		n.stats.observeRPCFailure()
		n.stats.observeSuccessorFallback()
		return succ, hops, nil
	}

	result, err := rpcpeer.FindSuccessor(ctx, cli, n.rt.Space(), id)
	if err != nil {
		n.lgr.Warn("find_successor: rpc failed, falling back to successor",
			logger.F("peer", closest.Addr), logger.F("err", err))
		n.stats.observeRPCFailure()
		n.stats.observeSuccessorFallback()
		return succ, hops, nil
	}
	return result, hops + 1, nil
}

// Put resolves key's owner via find_successor and stores value there,
// writing the local store directly if this node is the owner or
// forwarding a StorePut RPC otherwise.
func (n *Node) Put(ctx context.Context, key, value string) error {
	owner, err := n.ownerOf(ctx, key)
	if err != nil {
		return fmt.Errorf("put: resolve owner of %q: %w", key, err)
	}
	if owner.ID.Equal(n.rt.Self().ID) {
		return n.localPut(key, value)
	}
	cli, err := n.cp.GetFromPool(owner.Addr)
	if err != nil {
		return fmt.Errorf("put: dial owner %s: %w", owner.Addr, err)
	}
	if err := rpcpeer.StorePut(ctx, cli, key, value); err != nil {
		return fmt.Errorf("put: forward to owner %s: %w", owner.Addr, err)
	}
	return nil
}

// Get resolves key's owner via find_successor and retrieves the value
// stored there, reading the local store directly if this node is the
// owner or forwarding a StoreGet RPC otherwise.
func (n *Node) Get(ctx context.Context, key string) (string, bool, error) {
	owner, err := n.ownerOf(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("get: resolve owner of %q: %w", key, err)
	}
	if owner.ID.Equal(n.rt.Self().ID) {
		return n.localGet(key)
	}
	cli, err := n.cp.GetFromPool(owner.Addr)
	if err != nil {
		return "", false, fmt.Errorf("get: dial owner %s: %w", owner.Addr, err)
	}
	value, found, err := rpcpeer.StoreGet(ctx, cli, key)
	if err != nil {
		return "", false, fmt.Errorf("get: forward to owner %s: %w", owner.Addr, err)
	}
	return value, found, nil
}

func (n *Node) ownerOf(ctx context.Context, key string) (domain.NodeRef, error) {
	id := n.rt.Space().NewIdFromString(key)
	return n.FindSuccessor(ctx, id)
}

// localPut and localGet operate directly on this node's kvstore,
// without another find_successor hop. They back both Put/Get when
// this node is already the resolved owner, and the StorePut/StoreGet
// RPC handlers invoked by a peer that resolved this node as the owner.
func (n *Node) localPut(key, value string) error {
	if n.store == nil {
		return fmt.Errorf("no local store configured")
	}
	n.store.Put(key, value)
	return nil
}

func (n *Node) localGet(key string) (string, bool, error) {
	if n.store == nil {
		return "", false, fmt.Errorf("no local store configured")
	}
	value, ok := n.store.Get(key)
	return value, ok, nil
}

// Start launches the background stabilization loop (stabilize,
// fix_fingers, check_predecessor, each on its own ticker).
func (n *Node) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel

	n.wg.Add(3)
	go n.stabilizeLoop(ctx)
	go n.fixFingersLoop(ctx)
	go n.checkPredecessorLoop(ctx)
}

// Stop transitions LIVE->STOPPED: halts the stabilization loop,
// waiting up to 5s for it to exit, and closes outbound connections.
func (n *Node) Stop() {
	n.stopOnce.Do(func() {
		n.state.Store(int32(StateStopped))
		if n.cancel != nil {
			n.cancel()
		}
		done := make(chan struct{})
		go func() {
			n.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			n.lgr.Warn("stop: stabilization loop did not exit within timeout")
		}
		if n.cp != nil {
			_ = n.cp.Close()
		}
	})
}

