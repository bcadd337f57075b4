package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/client/secretstore"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/stretchr/testify/require"
)

// fakeAuth is a hand-written AuthService. Unset funcs succeed with fixed pairs.
type fakeAuth struct {
	mu            sync.Mutex
	refreshCalls  int
	refreshedWith []string
	loggedOut     []string

	loginFn   func(ctx context.Context, email, password string) (models.TokenPair, error)
	googleFn  func(ctx context.Context, idToken string) (models.TokenPair, error)
	refreshFn func(ctx context.Context, refreshToken string) (models.TokenPair, error)
	logoutFn  func(ctx context.Context, refreshToken string) error
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password)
	}
	return models.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}, nil
}

func (f *fakeAuth) Register(ctx context.Context, email, password, _ string) (models.TokenPair, error) {
	return f.Login(ctx, email, password)
}

func (f *fakeAuth) LoginWithGoogle(ctx context.Context, idToken string) (models.TokenPair, error) {
	if f.googleFn != nil {
		return f.googleFn(ctx, idToken)
	}
	return models.TokenPair{AccessToken: "g-access", RefreshToken: "g-refresh"}, nil
}

func (f *fakeAuth) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	f.mu.Lock()
	f.refreshCalls++
	f.refreshedWith = append(f.refreshedWith, refreshToken)
	fn := f.refreshFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, refreshToken)
	}
	return models.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil
}

func (f *fakeAuth) Logout(ctx context.Context, refreshToken string) error {
	f.mu.Lock()
	f.loggedOut = append(f.loggedOut, refreshToken)
	fn := f.logoutFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, refreshToken)
	}
	return nil
}

func (f *fakeAuth) refreshes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

// backend accepts requests whose bearer credential is in valid and answers
// 401 otherwise. Every request is recorded.
type backend struct {
	srv *httptest.Server

	mu      sync.Mutex
	valid   map[string]bool
	seen    []string
	bodies  []string
	rejects atomic.Int32
	hits    atomic.Int32
}

func newBackend(t *testing.T, valid ...string) *backend {
	t.Helper()

	b := &backend{valid: map[string]bool{}}
	for _, v := range valid {
		b.valid[v] = true
	}

	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)

		body, _ := io.ReadAll(r.Body)
		token := strings.TrimPrefix(r.Header.Get(common.AuthorizationHeaderName), common.BearerPrefix)

		b.mu.Lock()
		b.seen = append(b.seen, token)
		b.bodies = append(b.bodies, string(body))
		ok := b.valid[token]
		b.mu.Unlock()

		if !ok {
			b.rejects.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"token expired"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) tokens() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.seen...)
}

func (b *backend) requestBodies() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bodies...)
}

// newTestSession returns a session holding access-1/refresh-1, persisted in a
// memory store.
func newTestSession(t *testing.T, auth *fakeAuth, opts ...Option) (*Session, *secretstore.MemoryStore) {
	t.Helper()

	store := secretstore.NewMemoryStore()
	s := New(auth, store, opts...)
	require.NoError(t, s.SetTokens(context.Background(), "access-1", "refresh-1"))
	return s, store
}

func storedPair(t *testing.T, store secretstore.Store) models.TokenPair {
	t.Helper()

	ctx := context.Background()
	access, _, err := store.Get(ctx, common.AccessTokenSecretName)
	require.NoError(t, err)
	refresh, _, err := store.Get(ctx, common.RefreshTokenSecretName)
	require.NoError(t, err)
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}
}

func get(t *testing.T, hc *http.Client, url string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := hc.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
