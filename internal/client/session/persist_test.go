package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/client/secretstore"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedStore pauses the first Set or Delete issued after arm until release
// is closed. It hides MemoryStore's batch methods so every secret is written
// separately.
type gatedStore struct {
	inner *secretstore.MemoryStore

	mu      sync.Mutex
	op      string
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{inner: secretstore.NewMemoryStore()}
}

func (g *gatedStore) arm(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.op = op
	g.entered = make(chan struct{})
	g.release = make(chan struct{})
}

func (g *gatedStore) wait(op string) {
	g.mu.Lock()
	if g.op != op {
		g.mu.Unlock()
		return
	}
	g.op = ""
	entered, release := g.entered, g.release
	g.mu.Unlock()

	close(entered)
	<-release
}

func (g *gatedStore) Get(ctx context.Context, name string) (string, bool, error) {
	return g.inner.Get(ctx, name)
}

func (g *gatedStore) Set(ctx context.Context, name, value string) error {
	g.wait("set")
	return g.inner.Set(ctx, name, value)
}

func (g *gatedStore) Delete(ctx context.Context, name string) error {
	g.wait("delete")
	return g.inner.Delete(ctx, name)
}

func signalOnce(ch chan struct{}) func() {
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func assertBlocked(t *testing.T, done <-chan error, what string) {
	t.Helper()
	select {
	case err := <-done:
		t.Fatalf("%s finished while the store write was in progress: %v", what, err)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSession_LogoutDuringRenewedPersistLeavesStoreEmpty(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore()

	revoked := make(chan struct{})
	onRevoke := signalOnce(revoked)
	auth := &fakeAuth{
		logoutFn: func(context.Context, string) error { onRevoke(); return nil },
	}
	s := New(auth, store)
	require.NoError(t, s.SetTokens(ctx, "access-1", "refresh-1"))

	store.arm("set")
	renewErr := make(chan error, 1)
	go func() { renewErr <- s.Coordinator().Renew(ctx, "access-1") }()
	<-store.entered

	logoutErr := make(chan error, 1)
	go func() { logoutErr <- s.Logout(ctx) }()
	<-revoked
	assertBlocked(t, logoutErr, "logout")

	close(store.release)
	require.NoError(t, <-renewErr)
	require.NoError(t, <-logoutErr)

	assert.False(t, s.Authenticated())
	assert.Equal(t, models.TokenPair{}, storedPair(t, store))

	restored := New(&fakeAuth{}, store)
	require.NoError(t, restored.Hydrate(ctx))
	assert.False(t, restored.Authenticated())
}

func TestSession_LoginDuringExpiredDeleteKeepsNewPair(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore()

	loginCalled := make(chan struct{})
	onLogin := signalOnce(loginCalled)
	auth := &fakeAuth{
		refreshFn: func(context.Context, string) (models.TokenPair, error) {
			return models.TokenPair{}, errors.New("refresh rejected")
		},
		loginFn: func(context.Context, string, string) (models.TokenPair, error) {
			onLogin()
			return models.TokenPair{AccessToken: "access-new", RefreshToken: "refresh-new"}, nil
		},
	}
	s := New(auth, store)
	require.NoError(t, s.SetTokens(ctx, "access-1", "refresh-1"))

	store.arm("delete")
	renewErr := make(chan error, 1)
	go func() { renewErr <- s.Coordinator().Renew(ctx, "access-1") }()
	<-store.entered

	loginErr := make(chan error, 1)
	go func() {
		_, err := s.Login(ctx, "alice@example.com", "pw")
		loginErr <- err
	}()
	<-loginCalled
	assertBlocked(t, loginErr, "login")

	close(store.release)
	require.ErrorIs(t, <-renewErr, common.ErrRenewalFailed)
	require.NoError(t, <-loginErr)

	want := models.TokenPair{AccessToken: "access-new", RefreshToken: "refresh-new"}
	assert.Equal(t, want, s.Current())
	assert.Equal(t, want, storedPair(t, store))

	restored := New(&fakeAuth{}, store)
	require.NoError(t, restored.Hydrate(ctx))
	assert.Equal(t, want, restored.Current())
}
