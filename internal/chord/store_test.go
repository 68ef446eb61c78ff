package chord

import (
	"context"
	"net"
	"testing"

	"chordring/internal/domain"
	"chordring/internal/kvstore"
	"chordring/internal/logger"
	"chordring/internal/rpcpeer"
)

// TestPutGetLocalWhenSelfIsOwner: on a solo ring every key resolves to
// self, so Put/Get never leave the node.
func TestPutGetLocalWhenSelfIsOwner(t *testing.T) {
	n := newTestNode(t, 8, "solo:1")
	n.store = kvstore.New(&logger.NopLogger{})
	if err := n.Join(context.Background(), nil); err != nil {
		t.Fatalf("Join(nil) = %v", err)
	}

	if err := n.Put(context.Background(), "k", "v"); err != nil {
		t.Fatalf("Put() = %v", err)
	}
	got, found, err := n.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || got != "v" {
		t.Fatalf("Get() = (%q, %v), want (v, true)", got, found)
	}

	if _, found, err := n.Get(context.Background(), "missing"); err != nil || found {
		t.Fatalf("Get(missing) = (_, %v, %v), want (false, nil)", found, err)
	}
}

// TestPutWithoutStoreConfiguredErrors: a node with no WithStore option
// should fail loudly rather than silently dropping writes.
func TestPutWithoutStoreConfiguredErrors(t *testing.T) {
	n := newTestNode(t, 8, "nostore:1")
	if err := n.Join(context.Background(), nil); err != nil {
		t.Fatalf("Join(nil) = %v", err)
	}
	if err := n.Put(context.Background(), "k", "v"); err == nil {
		t.Fatal("Put() on a node with no store configured should error")
	}
}

// TestPutGetForwardsToRemoteOwner builds two live nodes over real grpc
// servers, wires their successor pointers into a two-node ring, and
// checks that a Put/Get issued against the non-owning node forwards
// over the wire to whichever node owns the key.
func TestPutGetForwardsToRemoteOwner(t *testing.T) {
	sp := mustSpace(t, 8)

	// high owns (low, high]; low owns the wrapping remainder (high, low].
	low := newLiveNode(t, sp, domain.ID{0x10})
	high := newLiveNode(t, sp, domain.ID{0x90})

	low.node.rt.SetSuccessor(high.self)
	low.node.rt.SetPredecessor(high.self)
	high.node.rt.SetSuccessor(low.self)
	high.node.rt.SetPredecessor(low.self)
	low.node.state.Store(int32(StateLive))
	high.node.state.Store(int32(StateLive))

	// Find a key owned by high (id in (low, high]) and one owned by
	// low (id in (high, low], wrapping through 0).
	var keyForHigh, keyForLow string
	for _, k := range []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf"} {
		id := sp.NewIdFromString(k)
		if domain.InRange(id, low.self.ID, high.self.ID, false, true) && keyForHigh == "" {
			keyForHigh = k
		}
		if domain.InRange(id, high.self.ID, low.self.ID, false, true) && keyForLow == "" {
			keyForLow = k
		}
	}
	if keyForHigh == "" || keyForLow == "" {
		t.Fatal("fixture keys did not hash to both sides of the ring; adjust the candidate list")
	}

	ctx := context.Background()

	// Put through low, owned by high: must forward over the wire.
	if err := low.node.Put(ctx, keyForHigh, "stored-on-high"); err != nil {
		t.Fatalf("Put(%q) via low = %v", keyForHigh, err)
	}
	if v, ok := high.store.Get(keyForHigh); !ok || v != "stored-on-high" {
		t.Fatalf("high.store.Get(%q) = (%q, %v), want (stored-on-high, true)", keyForHigh, v, ok)
	}
	if _, ok := low.store.Get(keyForHigh); ok {
		t.Fatalf("key %q forwarded to high should not also land in low's store", keyForHigh)
	}

	// Get through high for a key owned by low: must forward back.
	if err := low.node.Put(ctx, keyForLow, "stored-on-low"); err != nil {
		t.Fatalf("Put(%q) via low = %v", keyForLow, err)
	}
	got, found, err := high.node.Get(ctx, keyForLow)
	if err != nil {
		t.Fatalf("Get(%q) via high = %v", keyForLow, err)
	}
	if !found || got != "stored-on-low" {
		t.Fatalf("Get(%q) via high = (%q, %v), want (stored-on-low, true)", keyForLow, got, found)
	}
}

type liveNode struct {
	node  *Node
	self  domain.NodeRef
	store *kvstore.Store
	srv   *rpcpeer.Server
}

func newLiveNode(t *testing.T, sp domain.Space, id domain.ID) *liveNode {
	t.Helper()
	cp := rpcpeer.New(0)
	store := kvstore.New(&logger.NopLogger{})

	// Bind first so the node's own NodeRef carries its real address.
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	self := domain.NodeRef{ID: id, Addr: lis.Addr().String()}
	rt := NewRoutingTable(self, sp, &logger.NopLogger{})
	n := New(cp, WithRoutingTable(rt), WithLogger(&logger.NopLogger{}), WithStore(store))

	srv, err := rpcpeer.NewServerFromListener(lis, NewPeerServer(n))
	if err != nil {
		t.Fatalf("NewServerFromListener: %v", err)
	}
	go func() { _ = srv.Start() }()
	t.Cleanup(srv.Stop)

	return &liveNode{node: n, self: self, store: store, srv: srv}
}
