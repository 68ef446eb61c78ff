// Package bootstrap resolves the set of peer addresses a node should
// try to join through, and advertises this node's own address to the
// same discovery mechanism. It sits outside the Chord core: §4.4's
// join procedure only needs one reachable bootstrap address, however
// that address is found.
package bootstrap

import "context"

// Bootstrap discovers candidate peer addresses and registers this
// node's own address for others to discover.
type Bootstrap interface {
	// Discover returns addresses of peers believed to already be
	// members of the ring. An empty, non-error result means no peers
	// are known, so the caller should create a new ring.
	Discover(ctx context.Context) ([]string, error)

	// Register advertises addr as a ring member.
	Register(ctx context.Context, addr string) error

	// Deregister withdraws a previously registered address.
	Deregister(ctx context.Context, addr string) error
}
