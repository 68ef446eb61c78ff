package chord

import (
	"context"
	"math/big"
	"testing"

	"chordring/internal/domain"
	"chordring/internal/logger"
	"chordring/internal/rpcpeer"
)

func newTestNode(t *testing.T, bits int, addr string) *Node {
	t.Helper()
	sp := mustSpace(t, bits)
	id := sp.NewIdFromString(addr)
	self := domain.NodeRef{ID: id, Addr: addr}
	rt := NewRoutingTable(self, sp, &logger.NopLogger{})
	cp := rpcpeer.New(0)
	return New(cp, WithRoutingTable(rt), WithLogger(&logger.NopLogger{}))
}

// S1: a solo ring answers every lookup with itself.
func TestJoinNilCreatesSoloRing(t *testing.T) {
	n := newTestNode(t, 8, "a:1")

	if err := n.Join(context.Background(), nil); err != nil {
		t.Fatalf("Join(nil) = %v", err)
	}

	succ, ok := n.Successor()
	if !ok || !succ.Equal(n.Self()) {
		t.Fatalf("successor = (%v, %v), want (self, true)", succ, ok)
	}
	if _, ok := n.Predecessor(); ok {
		t.Error("predecessor should be absent on a solo ring")
	}
	for _, f := range n.Fingers() {
		if !f.Equal(n.Self()) {
			t.Errorf("finger %v != self after solo join", f)
		}
	}

	for _, k := range []byte{0x00, 0x7F, 0x80, 0xFF} {
		got, err := n.FindSuccessor(context.Background(), domain.ID{k})
		if err != nil {
			t.Fatalf("FindSuccessor(%x) = %v", k, err)
		}
		if !got.Equal(n.Self()) {
			t.Errorf("FindSuccessor(%x) = %v, want self", k, got)
		}
	}
	if n.State() != StateLive {
		t.Errorf("state = %v, want LIVE", n.State())
	}
}

func TestFingerStartMatchesAnalyticFormula(t *testing.T) {
	n := newTestNode(t, 8, "node:1")
	self := n.Self().ID.ToBigInt()
	mod := new(big.Int).Lsh(big.NewInt(1), 8)

	for i := 0; i < 8; i++ {
		want := new(big.Int).Add(self, new(big.Int).Lsh(big.NewInt(1), uint(i)))
		want.Mod(want, mod)

		got := n.fingerStart(i)
		if got.ToBigInt().Cmp(want) != 0 {
			t.Errorf("fingerStart(%d) = %s, want %s", i, got.ToBigInt(), want)
		}
	}
}

// Round-trip property: notify(p) twice in succession leaves the
// predecessor unchanged after the first call.
func TestNotifyTwiceIsIdempotent(t *testing.T) {
	n := newTestNode(t, 8, "self:1")
	if err := n.Join(context.Background(), nil); err != nil {
		t.Fatalf("Join(nil) = %v", err)
	}

	p := domain.NodeRef{ID: domain.ID{0x01}, Addr: "p:1"}
	n.notify(p)
	first, ok := n.Predecessor()
	if !ok || !first.Equal(p) {
		t.Fatalf("predecessor after first notify = (%v, %v), want (%v, true)", first, ok, p)
	}

	n.notify(p)
	second, ok := n.Predecessor()
	if !ok || !second.Equal(p) {
		t.Fatalf("predecessor after second notify = (%v, %v), want unchanged %v", second, ok, p)
	}
}

func TestNotifyAdoptsCloserPredecessor(t *testing.T) {
	n := newTestNode(t, 8, "self")
	// Force a deterministic self id so interval arithmetic below is legible.
	n.rt = NewRoutingTable(domain.NodeRef{ID: domain.ID{0x80}, Addr: "self"}, mustSpace(t, 8), &logger.NopLogger{})
	if err := n.Join(context.Background(), nil); err != nil {
		t.Fatalf("Join(nil) = %v", err)
	}

	far := domain.NodeRef{ID: domain.ID{0x10}, Addr: "far"}
	n.notify(far)
	pred, _ := n.Predecessor()
	if !pred.Equal(far) {
		t.Fatalf("predecessor = %v, want %v", pred, far)
	}

	closer := domain.NodeRef{ID: domain.ID{0x50}, Addr: "closer"}
	n.notify(closer)
	pred, _ = n.Predecessor()
	if !pred.Equal(closer) {
		t.Fatalf("predecessor after closer notify = %v, want %v", pred, closer)
	}

	// A predecessor further away than the current one must not replace it.
	n.notify(far)
	pred, _ = n.Predecessor()
	if !pred.Equal(closer) {
		t.Fatalf("predecessor regressed to %v, want unchanged %v", pred, closer)
	}
}
