package bootstrap

import "context"

// staticBootstrap returns a fixed, operator-supplied peer list. It
// never actually registers or deregisters anything, since the list is
// static configuration rather than a live directory.
type staticBootstrap struct {
	peers []string
}

// NewStaticBootstrap builds a Bootstrap that always discovers peers,
// the configured candidate addresses for joining a ring.
func NewStaticBootstrap(peers []string) Bootstrap {
	return &staticBootstrap{peers: peers}
}

func (b *staticBootstrap) Discover(ctx context.Context) ([]string, error) {
	out := make([]string, len(b.peers))
	copy(out, b.peers)
	return out, nil
}

func (b *staticBootstrap) Register(ctx context.Context, addr string) error {
	return nil
}

func (b *staticBootstrap) Deregister(ctx context.Context, addr string) error {
	return nil
}
