package domain

import (
	"math/big"
	"testing"
)

func TestNewIdFromStringDeterministic(t *testing.T) {
	sp, err := NewSpace(8)
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}
	a := sp.NewIdFromString("127.0.0.1:9000")
	b := sp.NewIdFromString("127.0.0.1:9000")
	if !a.Equal(b) {
		t.Fatalf("hash_id not deterministic: %v != %v", a, b)
	}
}

func TestNewIdFromStringRespectsBitWidth(t *testing.T) {
	sp, err := NewSpace(4)
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}
	id := sp.NewIdFromString("some-key")
	if err := sp.IsValidID(id); err != nil {
		t.Fatalf("generated ID is not valid for its own space: %v", err)
	}
	if id.ToBigInt().Cmp(big.NewInt(16)) >= 0 {
		t.Fatalf("4-bit ID %s out of range", id.ToHexString(true))
	}
}

func TestInRangeExhaustiveAgainstNaiveWalk(t *testing.T) {
	// Scenario S6: m = 4, all (a, b, k) triples, all four inclusivity
	// combinations, checked against a brute-force clockwise walk.
	sp, err := NewSpace(4)
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}
	const ringSize = 16

	combos := []struct{ incA, incB bool }{
		{false, false},
		{true, false},
		{false, true},
		{true, true},
	}

	for a := 0; a < ringSize; a++ {
		for b := 0; b < ringSize; b++ {
			for k := 0; k < ringSize; k++ {
				for _, c := range combos {
					got := InRange(sp.FromUint64(uint64(k)), sp.FromUint64(uint64(a)), sp.FromUint64(uint64(b)), c.incA, c.incB)
					want := naiveWalk(a, b, k, ringSize, c.incA, c.incB)
					if got != want {
						t.Fatalf("InRange(%d,%d,%d,incA=%v,incB=%v) = %v, want %v", k, a, b, c.incA, c.incB, got, want)
					}
				}
			}
		}
	}
}

// naiveWalk is the brute-force oracle: walk clockwise from a to b and
// check whether k is visited, honoring the tie-break rule for a == b.
func naiveWalk(a, b, k, ringSize int, incA, incB bool) bool {
	if a == b {
		return incA || incB
	}
	for i := a; ; i = (i + 1) % ringSize {
		included := true
		if i == a && !incA {
			included = false
		}
		if i == b && !incB {
			included = false
		}
		if i == k && included {
			return true
		}
		if i == b {
			break
		}
	}
	return false
}
