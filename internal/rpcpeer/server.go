package rpcpeer

import (
	"fmt"
	"net"

	"chordring/internal/logger"

	"google.golang.org/grpc"
)

// Server wraps a grpc.Server bound to a single listener, the way the
// teacher's server2 package wraps one per node process.
type Server struct {
	grpcServer *grpc.Server
	lis        net.Listener
	lgr        logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	grpcOpts []grpc.ServerOption
	lgr      logger.Logger
}

// WithServerOptions appends grpc.ServerOptions, e.g. an otelgrpc stats
// handler or a unary interceptor chain.
func WithServerOptions(opts ...grpc.ServerOption) ServerOption {
	return func(o *serverOptions) { o.grpcOpts = append(o.grpcOpts, opts...) }
}

// WithServerLogger attaches a logger to the server.
func WithServerLogger(l logger.Logger) ServerOption {
	return func(o *serverOptions) { o.lgr = l }
}

// NewServer binds a listener at bind and constructs a Server ready to
// host a PeerServer implementation. The listener is opened eagerly so
// the caller can detect bind failures before spawning Start in a
// goroutine.
func NewServer(bind string, peer PeerServer, opts ...ServerOption) (*Server, error) {
	lis, err := net.Listen("tcp", bind)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", bind, err)
	}
	return NewServerFromListener(lis, peer, opts...)
}

// NewServerFromListener constructs a Server over a listener the
// caller already opened, for when the bound address must be known
// before the PeerServer implementation is built (e.g. a node whose own
// NodeRef carries its listening address).
func NewServerFromListener(lis net.Listener, peer PeerServer, opts ...ServerOption) (*Server, error) {
	o := &serverOptions{lgr: &logger.NopLogger{}}
	for _, opt := range opts {
		opt(o)
	}

	gs := grpc.NewServer(o.grpcOpts...)
	RegisterPeerServer(gs, peer)

	return &Server{grpcServer: gs, lis: lis, lgr: o.lgr}, nil
}

// Addr returns the bound local address, useful when bind uses port 0.
func (s *Server) Addr() string {
	return s.lis.Addr().String()
}

// Start serves the grpc server until Stop/GracefulStop is called or
// the listener fails. It blocks, so callers run it in a goroutine.
func (s *Server) Start() error {
	s.lgr.Info("rpc server listening", logger.F("addr", s.lis.Addr().String()))
	if err := s.grpcServer.Serve(s.lis); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// GracefulStop drains in-flight RPCs before returning.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// Stop halts the server immediately, dropping in-flight RPCs.
func (s *Server) Stop() {
	s.grpcServer.Stop()
}
