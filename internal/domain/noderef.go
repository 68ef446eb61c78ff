package domain

// NodeRef is a lookup handle for a ring member: its identifier and the
// network address it can be reached at. NodeRefs are immutable once
// constructed and are freely copied between nodes via RPC; a NodeRef
// is never an ownership or lifetime relation, only a hint that must be
// reconfirmed (Ping) before being trusted.
type NodeRef struct {
	ID   ID
	Addr string
}

// Equal reports whether two NodeRefs name the same ring member.
// Equality is defined by ID alone, per spec: two NodeRefs carrying the
// same ID are the same member even if the advertised address differs
// transiently during a rebind.
func (n NodeRef) Equal(o NodeRef) bool {
	return n.ID.Equal(o.ID)
}

// IsZero reports whether n is the absent-NodeRef marker (no ID, no
// address) used on the wire to signal "no predecessor".
func (n NodeRef) IsZero() bool {
	return len(n.ID) == 0 && n.Addr == ""
}
