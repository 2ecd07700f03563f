package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	pkgcrypto "github.com/and161185/secret-santa/internal/crypto"
	"github.com/and161185/secret-santa/internal/limiter"
	"github.com/and161185/secret-santa/internal/model"
	"github.com/and161185/secret-santa/internal/repository"
	"github.com/and161185/secret-santa/internal/repository/filestore"
	"github.com/and161185/secret-santa/internal/session"
)

var fastHasher = pkgcrypto.Hasher{Time: 1, MemoryKiB: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

type fakeMetrics struct {
	mu        sync.Mutex
	draws     []int
	drawErrs  []error
	conflicts map[repository.Collection]int
}

func (m *fakeMetrics) ObserveDraw(attempts int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draws = append(m.draws, attempts)
	m.drawErrs = append(m.drawErrs, err)
}

func (m *fakeMetrics) VersionConflict(c repository.Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts == nil {
		m.conflicts = map[repository.Collection]int{}
	}
	m.conflicts[c]++
}

type env struct {
	stores  *repository.Stores
	auth    *AuthServiceImpl
	groups  *GroupServiceImpl
	metrics *fakeMetrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvAt(t, t.TempDir())
}

// newEnvAt builds an env over an existing data directory.
func newEnvAt(t *testing.T, dir string) *env {
	t.Helper()
	st, err := filestore.Open(dir)
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	m := &fakeMetrics{}
	lim := limiter.NewMemory(limiter.Policy{Window: time.Minute, MaxFails: 3, BlockFor: time.Minute})

	return &env{
		stores:  st,
		metrics: m,
		auth: NewAuthService(st.Users, session.NewMemory(time.Hour), AuthOptions{
			Hasher: fastHasher, Limiter: lim, Log: log, Metrics: m,
		}),
		groups: NewGroupService(st.Users, st.Groups, GroupOptions{
			Hasher: fastHasher, Limiter: lim, Log: log, Metrics: m, PublicURL: "https://santa.example.com/",
		}),
	}
}

// patient retries long enough for heavy contention in tests.
func patient() retry.Backoff {
	return retry.WithMaxRetries(200, retry.WithJitterPercent(50, retry.NewConstant(time.Millisecond)))
}

func (e *env) register(t *testing.T, name string) model.Identity {
	t.Helper()
	id, _, err := e.auth.Register(context.Background(), name, name+"@example.com", "pw-"+name)
	require.NoError(t, err)
	return id
}

func (e *env) createGroup(t *testing.T, admin model.Identity, spec model.GroupSpec) CreatedGroup {
	t.Helper()
	if spec.Name == "" {
		spec.Name = "Office party"
	}
	g, err := e.groups.Create(context.Background(), admin, spec)
	require.NoError(t, err)
	return g
}

func (e *env) user(t *testing.T, id model.Identity) model.User {
	t.Helper()
	snap, err := e.stores.Users.Load(context.Background())
	require.NoError(t, err)
	for _, u := range snap.Records {
		if u.ID == id.UserID {
			return u
		}
	}
	t.Fatalf("user %s not stored", id.UserID)
	return model.User{}
}

func (e *env) group(t *testing.T, ref GroupRef) model.Group {
	t.Helper()
	snap, err := e.stores.Groups.Load(context.Background())
	require.NoError(t, err)
	for _, g := range snap.Records {
		if g.ID == ref.ID {
			return g
		}
	}
	t.Fatalf("group %s not stored", ref.ID)
	return model.Group{}
}
