package main

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/secret-santa/internal/config"
	"github.com/and161185/secret-santa/internal/metrics"
	"github.com/and161185/secret-santa/internal/model"
	"github.com/and161185/secret-santa/internal/session"
)

func testConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()
	args = append([]string{"-plaintext", "-data-dir", t.TempDir()}, args...)
	cfg, err := config.Parse(args, func(string) (string, bool) { return "", false }, io.Discard)
	require.NoError(t, err)
	return cfg
}

func TestOpenBackend_File(t *testing.T) {
	t.Parallel()
	b, err := openBackend(context.Background(), testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, b.lim)
	defer func() { _ = b.stores.Close() }()

	snap, err := b.stores.Groups.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, snap.Records)
}

func TestNewSessions(t *testing.T) {
	t.Parallel()
	s, err := newSessions(testConfig(t))
	require.NoError(t, err)
	require.IsType(t, &session.Memory{}, s)

	s, err = newSessions(testConfig(t, "-sessions", "jwt", "-jwt-key", "secret"))
	require.NoError(t, err)
	sess, err := s.Issue(context.Background(), model.Identity{Name: "Ann"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
}

func TestNewGRPCServer(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t, "-dev")
	log := zaptest.NewLogger(t)
	b, err := openBackend(context.Background(), cfg, log)
	require.NoError(t, err)

	s, err := newGRPCServer(cfg, b, session.NewMemory(cfg.SessionTTL), metrics.New(), log)
	require.NoError(t, err)
	info := s.GetServiceInfo()
	require.Contains(t, info, "santa.v1.SecretSanta")
	require.Contains(t, info, "grpc.health.v1.Health")
	require.Contains(t, info, "grpc.reflection.v1.ServerReflection")
	s.Stop()
}

func TestNewGRPCServer_MissingTLSFiles(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Plaintext = false
	cfg.TLSCert, cfg.TLSKey = "/nonexistent/cert.pem", "/nonexistent/key.pem"
	log := zaptest.NewLogger(t)
	b, err := openBackend(context.Background(), cfg, log)
	require.NoError(t, err)

	_, err = newGRPCServer(cfg, b, session.NewMemory(cfg.SessionTTL), metrics.New(), log)
	require.Error(t, err)
}
