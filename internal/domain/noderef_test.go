package domain

import "testing"

func TestNodeRefEqualityByIDOnly(t *testing.T) {
	sp, _ := NewSpace(8)
	id := sp.NewIdFromString("n1")

	a := NodeRef{ID: id, Addr: "10.0.0.1:9000"}
	b := NodeRef{ID: id, Addr: "10.0.0.2:9001"}

	if !a.Equal(b) {
		t.Fatalf("NodeRefs with the same ID should be equal regardless of address")
	}
}

func TestNodeRefIsZero(t *testing.T) {
	var absent NodeRef
	if !absent.IsZero() {
		t.Fatalf("zero-value NodeRef should report IsZero")
	}

	sp, _ := NewSpace(8)
	present := NodeRef{ID: sp.NewIdFromString("n1"), Addr: "10.0.0.1:9000"}
	if present.IsZero() {
		t.Fatalf("populated NodeRef should not report IsZero")
	}
}
