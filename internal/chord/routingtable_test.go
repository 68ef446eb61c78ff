package chord

import (
	"testing"

	"chordring/internal/domain"
	"chordring/internal/logger"
)

func mustSpace(t *testing.T, bits int) domain.Space {
	t.Helper()
	sp, err := domain.NewSpace(bits)
	if err != nil {
		t.Fatalf("NewSpace(%d): %v", bits, err)
	}
	return sp
}

func TestNewRoutingTable(t *testing.T) {
	sp := mustSpace(t, 8)
	self := domain.NodeRef{ID: domain.ID{0x80}, Addr: "127.0.0.1:4000"}

	rt := NewRoutingTable(self, sp, &logger.NopLogger{})

	if !rt.Self().Equal(self) {
		t.Errorf("Self() = %v, want %v", rt.Self(), self)
	}
	if rt.Space().Bits != 8 {
		t.Errorf("Space().Bits = %d, want 8", rt.Space().Bits)
	}
	if _, ok := rt.Successor(); ok {
		t.Error("Successor() should be unset on a fresh table")
	}
}

func TestSetAndGetSuccessorAlsoSetsFingerZero(t *testing.T) {
	sp := mustSpace(t, 8)
	self := domain.NodeRef{ID: domain.ID{0x80}, Addr: "127.0.0.1:4000"}
	rt := NewRoutingTable(self, sp, &logger.NopLogger{})

	succ := domain.NodeRef{ID: domain.ID{0x90}, Addr: "127.0.0.1:4001"}
	rt.SetSuccessor(succ)

	got, ok := rt.Successor()
	if !ok || !got.Equal(succ) {
		t.Fatalf("Successor() = (%v, %v), want (%v, true)", got, ok, succ)
	}

	f0, ok := rt.Finger(0)
	if !ok || !f0.Equal(succ) {
		t.Errorf("Finger(0) = (%v, %v), want (%v, true)", f0, ok, succ)
	}
}

func TestSetFingerZeroAlsoUpdatesSuccessor(t *testing.T) {
	sp := mustSpace(t, 8)
	self := domain.NodeRef{ID: domain.ID{0x80}, Addr: "127.0.0.1:4000"}
	rt := NewRoutingTable(self, sp, &logger.NopLogger{})

	newSucc := domain.NodeRef{ID: domain.ID{0xA0}, Addr: "127.0.0.1:4002"}
	rt.SetFinger(0, newSucc)

	succ, ok := rt.Successor()
	if !ok || !succ.Equal(newSucc) {
		t.Errorf("Successor() after SetFinger(0, ...) = (%v, %v), want (%v, true)", succ, ok, newSucc)
	}
}

func TestPredecessorLifecycle(t *testing.T) {
	sp := mustSpace(t, 8)
	self := domain.NodeRef{ID: domain.ID{0x80}, Addr: "127.0.0.1:4000"}
	rt := NewRoutingTable(self, sp, &logger.NopLogger{})

	if _, ok := rt.Predecessor(); ok {
		t.Fatal("Predecessor() should be absent initially")
	}

	pred := domain.NodeRef{ID: domain.ID{0x70}, Addr: "127.0.0.1:4003"}
	rt.SetPredecessor(pred)

	got, ok := rt.Predecessor()
	if !ok || !got.Equal(pred) {
		t.Fatalf("Predecessor() = (%v, %v), want (%v, true)", got, ok, pred)
	}

	rt.ClearPredecessor()
	if _, ok := rt.Predecessor(); ok {
		t.Error("Predecessor() should be absent after ClearPredecessor")
	}
}

func TestClosestPrecedingFingerFallsBackToSelf(t *testing.T) {
	sp := mustSpace(t, 8)
	self := domain.NodeRef{ID: domain.ID{0x80}, Addr: "127.0.0.1:4000"}
	rt := NewRoutingTable(self, sp, &logger.NopLogger{})

	got := rt.ClosestPrecedingFinger(domain.ID{0x81})
	if !got.Equal(self) {
		t.Errorf("ClosestPrecedingFinger with no fingers set = %v, want self %v", got, self)
	}
}

func TestClosestPrecedingFingerScansFarthestFirst(t *testing.T) {
	sp := mustSpace(t, 8)
	self := domain.NodeRef{ID: domain.ID{0x10}, Addr: "self"}
	rt := NewRoutingTable(self, sp, &logger.NopLogger{})

	near := domain.NodeRef{ID: domain.ID{0x20}, Addr: "near"}
	far := domain.NodeRef{ID: domain.ID{0x40}, Addr: "far"}
	rt.SetFinger(1, near)
	rt.SetFinger(3, far)

	got := rt.ClosestPrecedingFinger(domain.ID{0x50})
	if !got.Equal(far) {
		t.Errorf("ClosestPrecedingFinger = %v, want farthest qualifying finger %v", got, far)
	}
}
