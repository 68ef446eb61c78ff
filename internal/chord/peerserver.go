package chord

import (
	"context"
	"fmt"

	"chordring/internal/rpcpeer"
)

// PeerServerAdapter exposes a Node as a rpcpeer.PeerServer. It exists
// as a separate type rather than methods directly on Node because the
// wire-level signatures (rpcpeer request/response structs) differ
// from the domain-level methods (FindSuccessor(ctx, domain.ID)) that
// the lookup engine and stabilization loop call directly.
type PeerServerAdapter struct {
	n *Node
}

// NewPeerServer wraps n for registration against a rpcpeer.Server.
func NewPeerServer(n *Node) *PeerServerAdapter {
	return &PeerServerAdapter{n: n}
}

func (a *PeerServerAdapter) FindSuccessor(ctx context.Context, req *rpcpeer.FindSuccessorRequest) (*rpcpeer.FindSuccessorResponse, error) {
	id, err := a.n.rt.Space().FromDecimalString(req.TargetID)
	if err != nil {
		return nil, fmt.Errorf("find_successor: %w", err)
	}
	succ, err := a.n.FindSuccessor(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rpcpeer.FindSuccessorResponse{Node: rpcpeer.ToMsg(succ)}, nil
}

func (a *PeerServerAdapter) GetPredecessor(ctx context.Context, _ *rpcpeer.Empty) (*rpcpeer.GetPredecessorResponse, error) {
	pred, ok := a.n.Predecessor()
	if !ok {
		return &rpcpeer.GetPredecessorResponse{}, nil
	}
	return &rpcpeer.GetPredecessorResponse{Node: rpcpeer.ToMsg(pred)}, nil
}

func (a *PeerServerAdapter) Notify(ctx context.Context, req *rpcpeer.NotifyRequest) (*rpcpeer.Empty, error) {
	p, ok, err := rpcpeer.FromMsg(a.n.rt.Space(), req.Node)
	if err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}
	if ok {
		a.n.notify(p)
	}
	return &rpcpeer.Empty{}, nil
}

func (a *PeerServerAdapter) Ping(ctx context.Context, _ *rpcpeer.Empty) (*rpcpeer.Empty, error) {
	return &rpcpeer.Empty{}, nil
}

// StorePut stores the given key/value directly in this node's local
// store. The caller is expected to have already resolved this node as
// the key's owner via FindSuccessor.
func (a *PeerServerAdapter) StorePut(ctx context.Context, req *rpcpeer.StorePutRequest) (*rpcpeer.Empty, error) {
	if err := a.n.localPut(req.Key, req.Value); err != nil {
		return nil, err
	}
	return &rpcpeer.Empty{}, nil
}

// StoreGet retrieves a value from this node's local store.
func (a *PeerServerAdapter) StoreGet(ctx context.Context, req *rpcpeer.StoreGetRequest) (*rpcpeer.StoreGetResponse, error) {
	value, found, err := a.n.localGet(req.Key)
	if err != nil {
		return nil, err
	}
	return &rpcpeer.StoreGetResponse{Value: value, Found: found}, nil
}
