package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chordring/internal/bootstrap"
	"chordring/internal/chord"
	"chordring/internal/config"
	"chordring/internal/domain"
	"chordring/internal/kvstore"
	"chordring/internal/logger"
	zapfactory "chordring/internal/logger/zap"
	"chordring/internal/rpcpeer"
	"chordring/internal/telemetry"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
)

var defaultConfigPath = "config/node/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
	}
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	var lgr logger.Logger
	if cfg.Logger.Active {
		zapLog, err := zapfactory.New(cfg.Logger)
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
		adapter := zapfactory.NewZapAdapter(zapLog)
		defer func() { _ = adapter.Sync() }()
		lgr = adapter
	} else {
		lgr = &logger.NopLogger{}
	}
	cfg.LogConfig(lgr)

	space, err := domain.NewSpace(cfg.Ring.Bits)
	if err != nil {
		lgr.Error("failed to initialize identifier space", logger.F("err", err))
		os.Exit(1)
	}

	advertised := advertisedAddr(cfg.Node)

	var id domain.ID
	if cfg.Node.ID == "" {
		id = space.NewIdFromString(advertised)
	} else {
		id, err = space.FromHexString(cfg.Node.ID)
		if err != nil {
			lgr.Error("invalid node id in configuration", logger.F("err", err))
			os.Exit(1)
		}
	}
	self := domain.NodeRef{ID: id, Addr: advertised}
	lgr = lgr.Named("node").WithNode(self)
	lgr.Info("node initializing", logger.F("id", id.ToHexString(true)), logger.F("addr", advertised))

	shutdownTracer, err := telemetry.InitTracer(cfg.Telemetry, cfg.Telemetry.ServiceName, id)
	if err != nil {
		lgr.Error("failed to initialize tracer", logger.F("err", err))
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	var grpcDialOpts []grpc.DialOption
	var grpcServerOpts []grpc.ServerOption
	if cfg.Telemetry.Tracing.Enabled {
		grpcDialOpts = append(grpcDialOpts, grpc.WithStatsHandler(otelgrpc.NewClientHandler(
			otelgrpc.WithTracerProvider(otel.GetTracerProvider()),
			otelgrpc.WithPropagators(otel.GetTextMapPropagator()),
		)))
		grpcServerOpts = append(grpcServerOpts, grpc.StatsHandler(otelgrpc.NewServerHandler(
			otelgrpc.WithTracerProvider(otel.GetTracerProvider()),
			otelgrpc.WithPropagators(otel.GetTextMapPropagator()),
		)))
	}

	cp := rpcpeer.New(cfg.Ring.FailureTimeout.AsDuration(),
		rpcpeer.WithLogger(lgr.Named("clientpool")),
		rpcpeer.WithDialOptions(grpcDialOpts...),
	)
	lgr.Debug("initialized connection pool")

	store := kvstore.New(lgr.Named("kvstore"))
	lgr.Debug("initialized in-memory kv store")

	rt := chord.NewRoutingTable(self, space, lgr.Named("routingtable"))
	n := chord.New(cp,
		chord.WithRoutingTable(rt),
		chord.WithLogger(lgr.Named("chord")),
		chord.WithStabilizeInterval(cfg.Ring.StabilizeInterval.AsDuration()),
		chord.WithFixFingersInterval(cfg.Ring.FixFingersInterval.AsDuration()),
		chord.WithCheckPredecessorInterval(cfg.Ring.CheckPredecessorInterval.AsDuration()),
		chord.WithRPCTimeout(cfg.Ring.LookupTimeout.AsDuration()),
		chord.WithPingTimeout(cfg.Ring.PingTimeout.AsDuration()),
		chord.WithStore(store),
	)
	lgr.Info("chord node constructed")

	srv, err := rpcpeer.NewServer(cfg.Node.Bind, chord.NewPeerServer(n),
		rpcpeer.WithServerOptions(grpcServerOpts...),
		rpcpeer.WithServerLogger(lgr.Named("rpc-server")),
	)
	if err != nil {
		lgr.Error("failed to initialize rpc server", logger.F("err", err))
		os.Exit(1)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()
	lgr.Debug("rpc server started", logger.F("addr", srv.Addr()))

	register, err := newBootstrap(cfg.Bootstrap)
	if err != nil {
		lgr.Error("failed to initialize bootstrap", logger.F("err", err))
		srv.Stop()
		os.Exit(1)
	}

	discoverCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	peers, err := register.Discover(discoverCtx)
	cancel()
	if err != nil {
		lgr.Error("failed to resolve bootstrap peers", logger.F("err", err))
		srv.Stop()
		os.Exit(1)
	}
	lgr.Info("resolved bootstrap peers", logger.F("peers", peers))

	if err := joinRing(context.Background(), n, self, peers, cfg.Ring.LookupTimeout.AsDuration()); err != nil {
		lgr.Error("failed to join ring", logger.F("err", err))
		srv.Stop()
		os.Exit(1)
	}

	registerCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = register.Register(registerCtx, advertised)
	cancel()
	if err != nil {
		lgr.Warn("failed to register node for discovery", logger.F("err", err))
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := register.Deregister(ctx, advertised); err != nil {
				lgr.Warn("failed to deregister node", logger.F("err", err))
			}
		}()
	}

	n.Start()
	lgr.Debug("stabilization loop started")

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		lgr.Info("shutdown signal received, stopping gracefully")
		n.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		done := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
			lgr.Info("rpc server stopped gracefully")
		case <-shutdownCtx.Done():
			lgr.Warn("graceful stop timed out, forcing shutdown")
			srv.Stop()
		}
		cancel()

	case err := <-serveErr:
		lgr.Error("rpc server terminated unexpectedly", logger.F("err", err))
		n.Stop()
		os.Exit(1)
	}
}

func advertisedAddr(cfg config.NodeConfig) string {
	if cfg.Host != "" && cfg.Port != 0 {
		return net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	}
	return cfg.Bind
}

func newBootstrap(cfg config.BootstrapConfig) (bootstrap.Bootstrap, error) {
	switch cfg.Mode {
	case "route53":
		return bootstrap.NewRoute53Bootstrap(cfg.Route53)
	case "static":
		return bootstrap.NewStaticBootstrap(cfg.Peers), nil
	default:
		return nil, fmt.Errorf("unsupported bootstrap mode %q", cfg.Mode)
	}
}

// joinRing tries each discovered peer in turn, joining through the
// first that accepts a find_successor bootstrap RPC. An empty peer
// list means this node creates a new ring.
func joinRing(ctx context.Context, n *chord.Node, self domain.NodeRef, peers []string, timeout time.Duration) error {
	if len(peers) == 0 {
		return n.Join(ctx, nil)
	}

	var lastErr error
	for _, addr := range peers {
		if addr == self.Addr {
			continue
		}
		jctx, cancel := context.WithTimeout(ctx, timeout)
		err := n.Join(jctx, &domain.NodeRef{Addr: addr})
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no usable bootstrap peer in %v", peers)
	}
	return fmt.Errorf("join: all bootstrap attempts failed: %w", lastErr)
}
