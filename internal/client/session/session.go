package session

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/docvault/internal/client/client"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/client/secretstore"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/logging"
)

// DefaultRevokeTimeout bounds the best-effort revocation call made by Logout.
const DefaultRevokeTimeout = 5 * time.Second

// Session is the façade over credential state, secret store and renewal. It
// is the only component that reads or writes the secret store.
type Session struct {
	auth    client.AuthService
	store   secretstore.Store
	creds   *Credentials
	coord   *Coordinator
	logger  logging.Logger
	metrics *Metrics
	base    http.RoundTripper

	revokeTimeout time.Duration
	hydrated      atomic.Bool

	// persistMu makes each credential change and its store write one step,
	// so memory and the store never disagree once the holder returns.
	persistMu sync.Mutex
}

type Option func(*Session)

func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithBaseTransport sets the transport decorated requests are sent through.
// Defaults to http.DefaultTransport.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(s *Session) { s.base = rt }
}

func WithRevokeTimeout(d time.Duration) Option {
	return func(s *Session) { s.revokeTimeout = d }
}

// New creates an empty, unauthenticated session. Call Hydrate to restore a
// previously persisted pair.
func New(auth client.AuthService, store secretstore.Store, opts ...Option) *Session {
	s := &Session{
		auth:          auth,
		store:         store,
		creds:         &Credentials{},
		logger:        logging.NewNop(),
		base:          http.DefaultTransport,
		revokeTimeout: DefaultRevokeTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "session")
	s.coord = newCoordinator(s.creds, auth, s, s.logger, s.metrics)
	return s
}

// Hydrate restores the pair from the secret store. The pair is used only
// when both secrets are present. Hydrated reports true afterwards even when
// reading the store failed.
func (s *Session) Hydrate(ctx context.Context) error {
	defer s.hydrated.Store(true)

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	access, okA, err := s.store.Get(ctx, common.AccessTokenSecretName)
	if err != nil {
		s.logger.Error(ctx, "failed to load tokens from storage", "error", err)
		return fmt.Errorf("hydrate: %w", err)
	}
	refresh, okR, err := s.store.Get(ctx, common.RefreshTokenSecretName)
	if err != nil {
		s.logger.Error(ctx, "failed to load tokens from storage", "error", err)
		return fmt.Errorf("hydrate: %w", err)
	}

	pair := models.TokenPair{AccessToken: access, RefreshToken: refresh}
	if !okA || !okR || !pair.Complete() {
		s.logger.Debug(ctx, "no stored session")
		return nil
	}

	s.creds.Set(pair)
	s.logger.Info(ctx, "session restored from storage")
	return nil
}

// Hydrated reports whether Hydrate has completed.
func (s *Session) Hydrated() bool {
	return s.hydrated.Load()
}

// Authenticated reports whether an access credential is held.
func (s *Session) Authenticated() bool {
	return s.creds.Current().Authenticated()
}

// Current returns a snapshot of the credential pair.
func (s *Session) Current() models.TokenPair {
	return s.creds.Current()
}

// Coordinator exposes the renewal state machine, mainly for diagnostics.
func (s *Session) Coordinator() *Coordinator {
	return s.coord
}

// Login authenticates with email and password and establishes the returned
// pair. Rejected credentials are reported as common.ErrInvalidCredentials.
func (s *Session) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	if err := validateEmailPassword(email, password); err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.auth.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("login: %w", err)
	}
	return s.establish(ctx, pair)
}

// Register creates an account and establishes the returned pair.
func (s *Session) Register(ctx context.Context, email, password, displayName string) (models.TokenPair, error) {
	if err := validateEmailPassword(email, password); err != nil {
		return models.TokenPair{}, err
	}

	pair, err := s.auth.Register(ctx, strings.TrimSpace(email), password, strings.TrimSpace(displayName))
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("register: %w", err)
	}
	return s.establish(ctx, pair)
}

// LoginWithGoogle exchanges a Google ID token for a session. The resulting
// session is indistinguishable from a password login.
func (s *Session) LoginWithGoogle(ctx context.Context, idToken string) (models.TokenPair, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return models.TokenPair{}, fmt.Errorf("%w: empty id token", common.ErrValidation)
	}

	pair, err := s.auth.LoginWithGoogle(ctx, idToken)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("google login: %w", err)
	}
	return s.establish(ctx, pair)
}

// SetTokens installs a pair obtained outside Login, persisting it first.
func (s *Session) SetTokens(ctx context.Context, access, refresh string) error {
	pair := models.TokenPair{AccessToken: access, RefreshToken: refresh}
	if !pair.Complete() {
		return fmt.Errorf("%w: both tokens are required", common.ErrValidation)
	}
	_, err := s.establish(ctx, pair)
	return err
}

// Logout asks the server to revoke the refresh credential, ignoring any
// failure, then clears the pair in memory and in the store. The in-memory
// pair is always cleared; a store failure is returned.
func (s *Session) Logout(ctx context.Context) error {
	refresh := s.creds.Current().RefreshToken
	if refresh == "" {
		stored, ok, err := s.store.Get(ctx, common.RefreshTokenSecretName)
		if err == nil && ok {
			refresh = stored
		}
	}

	if refresh != "" {
		rctx, cancel := context.WithTimeout(ctx, s.revokeTimeout)
		if err := s.auth.Logout(rctx, refresh); err != nil {
			s.logger.Warn(ctx, "refresh token revocation failed", "error", err)
		}
		cancel()
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.creds.Clear()

	if err := s.deleteSecrets(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info(ctx, "logged out")
	return nil
}

// establish persists pair and then makes it current.
func (s *Session) establish(ctx context.Context, pair models.TokenPair) (models.TokenPair, error) {
	if !pair.Complete() {
		return models.TokenPair{}, fmt.Errorf("%w: incomplete token pair", common.ErrValidation)
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if err := secretstore.SetAll(ctx, s.store, secrets(pair)); err != nil {
		return models.TokenPair{}, fmt.Errorf("save tokens: %w", err)
	}
	s.creds.Set(pair)
	return pair, nil
}

func (s *Session) renewed(ctx context.Context, usedRefresh string, pair models.TokenPair) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if !s.creds.CompareAndSet(usedRefresh, pair) {
		s.logger.Info(ctx, "session changed during renewal, discarding renewed tokens")
		return
	}
	if err := secretstore.SetAll(ctx, s.store, secrets(pair)); err != nil {
		s.logger.Error(ctx, "failed to persist renewed tokens", "error", err)
	}
}

func (s *Session) expired(ctx context.Context, usedRefresh string) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if !s.creds.CompareAndClear(usedRefresh) {
		return
	}
	if err := s.deleteSecrets(ctx); err != nil {
		s.logger.Error(ctx, "failed to clear stored tokens", "error", err)
	}
}

func (s *Session) deleteSecrets(ctx context.Context) error {
	return secretstore.DeleteAll(ctx, s.store, common.AccessTokenSecretName, common.RefreshTokenSecretName)
}

// Transport returns the decorating, renewing round tripper.
func (s *Session) Transport() *Transport {
	return &Transport{
		base:    s.base,
		creds:   s.creds,
		coord:   s.coord,
		logger:  s.logger,
		metrics: s.metrics,
	}
}

// HTTPClient returns an *http.Client whose requests go through Transport.
func (s *Session) HTTPClient() *http.Client {
	return &http.Client{Transport: s.Transport()}
}

func secrets(pair models.TokenPair) map[string]string {
	return map[string]string{
		common.AccessTokenSecretName:  pair.AccessToken,
		common.RefreshTokenSecretName: pair.RefreshToken,
	}
}

func validateEmailPassword(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email %q", common.ErrValidation, email)
	}
	return nil
}
