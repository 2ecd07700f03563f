// Command santa-server starts the Secret Santa gRPC server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/secret-santa/internal/api"
	"github.com/and161185/secret-santa/internal/config"
	"github.com/and161185/secret-santa/internal/limiter"
	"github.com/and161185/secret-santa/internal/metrics"
	"github.com/and161185/secret-santa/internal/migrate"
	"github.com/and161185/secret-santa/internal/repository"
	"github.com/and161185/secret-santa/internal/repository/filestore"
	"github.com/and161185/secret-santa/internal/repository/postgres"
	grpcserver "github.com/and161185/secret-santa/internal/server/grpc"
	"github.com/and161185/secret-santa/internal/service"
	"github.com/and161185/secret-santa/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// backend is the storage a server runs on. lim is nil for the file store.
type backend struct {
	stores *repository.Stores
	lim    limiter.Limiter
}

// openBackend selects the record store; postgres is migrated before use.
func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backend, error) {
	switch cfg.Store {
	case config.StorePostgres:
		if err := migrate.Up(ctx, cfg.DSN, log); err != nil {
			return nil, fmt.Errorf("migrate up: %w", err)
		}
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		return &backend{stores: db.Stores(), lim: limiter.NewPG(db.Pool, limiter.DefaultPolicy())}, nil
	case config.StoreFile:
		st, err := filestore.Open(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return &backend{stores: st, lim: limiter.NewMemory(limiter.DefaultPolicy())}, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func newSessions(cfg *config.Config) (session.Store, error) {
	if cfg.Sessions == config.SessionsJWT {
		return session.NewJWT([]byte(cfg.JWTKey), cfg.SessionTTL)
	}
	return session.NewMemory(cfg.SessionTTL), nil
}

// newGRPCServer builds the gRPC server with every service registered.
func newGRPCServer(cfg *config.Config, b *backend, sessions session.Store, m *metrics.Collector, log *zap.Logger) (*grpc.Server, error) {
	auth := service.NewAuthService(b.stores.Users, sessions, service.AuthOptions{
		Limiter: b.lim, Log: log.Named("auth"), Metrics: m,
	})
	groups := service.NewGroupService(b.stores.Users, b.stores.Groups, service.GroupOptions{
		Limiter:    b.lim,
		Log:        log.Named("groups"),
		Metrics:    m,
		PublicURL:  cfg.PublicURL,
		DefaultMax: cfg.DefaultMax,
	})

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(log),
			m.UnaryServerInterceptor(),
			grpcserver.LoggingUnary(log),
			grpcserver.AuthUnary(auth),
		),
	}
	if !cfg.Plaintext {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return nil, fmt.Errorf("load TLS cert/key: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}
	s := grpc.NewServer(opts...)
	api.RegisterSecretSantaServer(s, grpcserver.New(auth, groups, log))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	if cfg.Dev {
		reflection.Register(s)
	}
	return s, nil
}

// main parses configuration, opens storage, and serves until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load(os.Args[1:], ".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Store),
		zap.String("sessions", cfg.Sessions),
	)
	if cfg.Plaintext {
		logger.Warn("serving without TLS")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer func() { _ = b.stores.Close() }()

	sessions, err := newSessions(cfg)
	if err != nil {
		logger.Fatal("sessions", zap.Error(err))
	}

	m := metrics.New()
	s, err := newGRPCServer(cfg, b, sessions, m, logger)
	if err != nil {
		logger.Fatal("grpc server", zap.Error(err))
	}

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.Bool("tls", !cfg.Plaintext))
		errCh <- s.Serve(lis)
	}()
	if cfg.MetricsAddr != "" {
		go func() {
			logger.Info("metrics", zap.String("addr", cfg.MetricsAddr))
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("metrics: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.Stop()
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		_ = b.stores.Close()
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
