package devserver

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/cryptox"
	"github.com/google/uuid"
)

type user struct {
	ID          string
	Email       string
	DisplayName string
	salt        []byte
	verifier    []byte // nil for Google-only accounts
}

type refreshToken struct {
	UserID  string
	Expires time.Time
}

// accounts keeps users and server-side refresh tokens in memory.
type accounts struct {
	mu      sync.Mutex
	byEmail map[string]*user
	tokens  map[string]refreshToken
}

func newAccounts() *accounts {
	return &accounts{
		byEmail: map[string]*user{},
		tokens:  map[string]refreshToken{},
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// register creates a password account. An existing email is a validation error.
func (a *accounts) register(email, password, displayName string) (*user, error) {
	email = normalizeEmail(email)

	salt := cryptox.NewSalt()
	verifier := cryptox.DeriveKey([]byte(password), salt)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.byEmail[email]; ok {
		return nil, fmt.Errorf("%w: email already registered", common.ErrValidation)
	}
	u := &user{ID: uuid.NewString(), Email: email, DisplayName: displayName, salt: salt, verifier: verifier}
	a.byEmail[email] = u
	return u, nil
}

// authenticate checks a password login.
func (a *accounts) authenticate(email, password string) (*user, error) {
	a.mu.Lock()
	u, ok := a.byEmail[normalizeEmail(email)]
	a.mu.Unlock()

	if !ok || u.verifier == nil {
		return nil, common.ErrInvalidCredentials
	}
	candidate := cryptox.DeriveKey([]byte(password), u.salt)
	if subtle.ConstantTimeCompare(candidate, u.verifier) != 1 {
		return nil, common.ErrInvalidCredentials
	}
	return u, nil
}

// federated returns the account for email, creating a passwordless one on
// first use.
func (a *accounts) federated(email string) *user {
	email = normalizeEmail(email)

	a.mu.Lock()
	defer a.mu.Unlock()

	if u, ok := a.byEmail[email]; ok {
		return u
	}
	u := &user{ID: uuid.NewString(), Email: email}
	a.byEmail[email] = u
	return u
}

func (a *accounts) issueRefresh(userID string, ttl time.Duration) (string, error) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.tokens[token] = refreshToken{UserID: userID, Expires: time.Now().Add(ttl)}
	a.mu.Unlock()
	return token, nil
}

// consumeRefresh validates and deletes token, returning its owner. A token
// can be used once.
func (a *accounts) consumeRefresh(token string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rt, ok := a.tokens[token]
	if !ok {
		return "", common.ErrInvalidToken
	}
	delete(a.tokens, token)

	if rt.Expires.Before(time.Now()) {
		return "", common.ErrRefreshTokenExpired
	}
	return rt.UserID, nil
}

func (a *accounts) revoke(token string) {
	a.mu.Lock()
	delete(a.tokens, token)
	a.mu.Unlock()
}

func (a *accounts) activeRefreshTokens() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.tokens)
}
