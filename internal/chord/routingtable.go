package chord

import (
	"sync"

	"chordring/internal/domain"
	"chordring/internal/logger"
)

// RoutingTable holds the per-node state §3 describes: the identifier
// space, the single successor, the optional predecessor, and the
// m-entry finger table. Every accessor is safe for concurrent use;
// writers replace state atomically under a single mutex rather than
// mutating finger entries in place.
type RoutingTable struct {
	self  domain.NodeRef
	space domain.Space

	mu          sync.RWMutex
	successor   domain.NodeRef
	predecessor domain.NodeRef
	hasPred     bool
	fingers     []domain.NodeRef // fingers[i] is valid iff fingerSet[i]
	fingerSet   []bool

	lgr logger.Logger
}

// NewRoutingTable builds a table for self in the given space. The
// table starts with no successor and no predecessor; callers use
// Node.Join (a nil bootstrap creates a new ring) to populate the
// successor before serving traffic.
func NewRoutingTable(self domain.NodeRef, space domain.Space, lgr logger.Logger) *RoutingTable {
	if lgr == nil {
		lgr = &logger.NopLogger{}
	}
	return &RoutingTable{
		self:      self,
		space:     space,
		fingers:   make([]domain.NodeRef, space.Bits),
		fingerSet: make([]bool, space.Bits),
		lgr:       lgr,
	}
}

// Self returns the node this table belongs to.
func (rt *RoutingTable) Self() domain.NodeRef {
	return rt.self
}

// Space returns the identifier space this table operates in.
func (rt *RoutingTable) Space() domain.Space {
	return rt.space
}

// Successor returns the current successor and whether one is set.
func (rt *RoutingTable) Successor() (domain.NodeRef, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.successor, !rt.successor.IsZero()
}

// SetSuccessor replaces the successor, which is also finger[0] per
// §3.3.
func (rt *RoutingTable) SetSuccessor(n domain.NodeRef) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.successor = n
	if len(rt.fingers) > 0 {
		rt.fingers[0] = n
		rt.fingerSet[0] = !n.IsZero()
	}
}

// Predecessor returns the current predecessor and whether one is set.
func (rt *RoutingTable) Predecessor() (domain.NodeRef, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.predecessor, rt.hasPred
}

// SetPredecessor records a predecessor.
func (rt *RoutingTable) SetPredecessor(n domain.NodeRef) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.predecessor = n
	rt.hasPred = true
}

// ClearPredecessor forgets the predecessor, used by check_predecessor
// when a liveness probe fails.
func (rt *RoutingTable) ClearPredecessor() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.predecessor = domain.NodeRef{}
	rt.hasPred = false
}

// Finger returns finger table entry i and whether it is populated.
func (rt *RoutingTable) Finger(i int) (domain.NodeRef, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	if i < 0 || i >= len(rt.fingers) {
		return domain.NodeRef{}, false
	}
	return rt.fingers[i], rt.fingerSet[i]
}

// SetFinger replaces finger table entry i.
func (rt *RoutingTable) SetFinger(i int, n domain.NodeRef) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if i < 0 || i >= len(rt.fingers) {
		return
	}
	rt.fingers[i] = n
	rt.fingerSet[i] = !n.IsZero()
	if i == 0 {
		rt.successor = n
	}
}

// Fingers returns a snapshot of every populated finger table entry.
func (rt *RoutingTable) Fingers() []domain.NodeRef {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]domain.NodeRef, 0, len(rt.fingers))
	for i, set := range rt.fingerSet {
		if set {
			out = append(out, rt.fingers[i])
		}
	}
	return out
}

// ClosestPrecedingFinger implements §4.4's closest_preceding_finger:
// scan the finger table from the farthest entry down, returning the
// first one that lies strictly between self and id. Falls back to
// self when none qualifies.
func (rt *RoutingTable) ClosestPrecedingFinger(id domain.ID) domain.NodeRef {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	for i := len(rt.fingers) - 1; i >= 0; i-- {
		if !rt.fingerSet[i] {
			continue
		}
		f := rt.fingers[i]
		if domain.InRange(f.ID, rt.self.ID, id, false, false) {
			return f
		}
	}
	return rt.self
}
