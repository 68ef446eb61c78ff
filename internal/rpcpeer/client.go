package rpcpeer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chordring/internal/domain"
	"chordring/internal/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Option configures a Pool.
type Option func(*Pool)

// WithLogger attaches a logger to the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) { p.lgr = l }
}

// WithDialOptions appends grpc.DialOptions used for every dial, e.g.
// an otelgrpc stats handler.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(p *Pool) { p.dialOpts = append(p.dialOpts, opts...) }
}

// Pool caches one grpc.ClientConn per peer address, dialed lazily on
// first use. This is the only significant shared resource §5
// describes: outbound RPC channels to peer addresses.
type Pool struct {
	failureTimeout time.Duration
	dialOpts       []grpc.DialOption
	lgr            logger.Logger

	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

// New builds a connection pool. failureTimeout is exposed through
// FailureTimeout for callers to use as the deadline of
// stabilization-driven RPCs (GetPredecessor, Notify); the pool itself
// does not apply it to any call.
func New(failureTimeout time.Duration, opts ...Option) *Pool {
	p := &Pool{
		failureTimeout: failureTimeout,
		lgr:            &logger.NopLogger{},
		conns:          make(map[string]*grpc.ClientConn),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FailureTimeout returns the pool's default RPC deadline.
func (p *Pool) FailureTimeout() time.Duration {
	return p.failureTimeout
}

// GetFromPool returns a PeerClient for addr, dialing and caching the
// underlying connection on first use.
func (p *Pool) GetFromPool(addr string) (PeerClient, error) {
	conn, err := p.connFor(addr)
	if err != nil {
		return nil, err
	}
	return NewPeerClient(conn), nil
}

func (p *Pool) connFor(addr string) (*grpc.ClientConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok := p.conns[addr]; ok {
		return conn, nil
	}

	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, p.dialOpts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	p.conns[addr] = conn
	return conn, nil
}

// DialEphemeral opens a connection to addr that is not cached in the
// pool, for one-off calls such as the bootstrap RPC in Join. The
// caller is responsible for closing the returned connection.
func (p *Pool) DialEphemeral(addr string) (PeerClient, *grpc.ClientConn, error) {
	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, p.dialOpts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewPeerClient(conn), conn, nil
}

// Close tears down every cached connection.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for addr, conn := range p.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close conn to %s: %w", addr, err)
		}
	}
	p.conns = make(map[string]*grpc.ClientConn)
	return firstErr
}

// FindSuccessor issues a FindSuccessor RPC against cli for target,
// decoding the response into a domain.NodeRef.
func FindSuccessor(ctx context.Context, cli PeerClient, sp domain.Space, target domain.ID) (domain.NodeRef, error) {
	resp, err := cli.FindSuccessor(ctx, &FindSuccessorRequest{TargetID: target.ToDecimalString()})
	if err != nil {
		return domain.NodeRef{}, err
	}
	n, ok, err := FromMsg(sp, resp.Node)
	if err != nil {
		return domain.NodeRef{}, err
	}
	if !ok {
		return domain.NodeRef{}, fmt.Errorf("find_successor: peer returned absent node")
	}
	return n, nil
}

// GetPredecessor issues a GetPredecessor RPC. A nil *domain.NodeRef
// with a nil error means the peer reports no predecessor.
func GetPredecessor(ctx context.Context, cli PeerClient, sp domain.Space) (*domain.NodeRef, error) {
	resp, err := cli.GetPredecessor(ctx, &Empty{})
	if err != nil {
		return nil, err
	}
	n, ok, err := FromMsg(sp, resp.Node)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &n, nil
}

// Notify issues a Notify RPC telling the peer that self may be its
// predecessor.
func Notify(ctx context.Context, cli PeerClient, self domain.NodeRef) error {
	_, err := cli.Notify(ctx, &NotifyRequest{Node: ToMsg(self)})
	return err
}

// Ping issues a liveness probe.
func Ping(ctx context.Context, cli PeerClient) error {
	_, err := cli.Ping(ctx, &Empty{})
	return err
}

// StorePut issues a StorePut RPC, asking cli's peer to store value
// under key in its local kvstore.
func StorePut(ctx context.Context, cli PeerClient, key, value string) error {
	_, err := cli.StorePut(ctx, &StorePutRequest{Key: key, Value: value})
	return err
}

// StoreGet issues a StoreGet RPC, returning the value cli's peer holds
// locally under key, and whether it was present.
func StoreGet(ctx context.Context, cli PeerClient, key string) (string, bool, error) {
	resp, err := cli.StoreGet(ctx, &StoreGetRequest{Key: key})
	if err != nil {
		return "", false, err
	}
	return resp.Value, resp.Found, nil
}
