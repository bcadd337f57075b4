package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/client/secretstore"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_StateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "refreshing", Refreshing.String())
}

func TestCoordinator_RenewWithoutRefreshToken(t *testing.T) {
	auth := &fakeAuth{}
	s := New(auth, secretstore.NewMemoryStore())

	err := s.Coordinator().Renew(context.Background(), "")

	assert.ErrorIs(t, err, ErrNoRefreshToken)
	assert.Equal(t, 0, auth.refreshes())
	assert.Equal(t, Idle, s.Coordinator().State())
}

func TestCoordinator_StaleRejectionReplaysWithoutRefresh(t *testing.T) {
	auth := &fakeAuth{}
	s, _ := newTestSession(t, auth)
	s.creds.Set(models.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"})

	require.NoError(t, s.Coordinator().Renew(context.Background(), "access-1"))
	assert.Equal(t, 0, auth.refreshes())
}

func TestCoordinator_FailureWrapsCause(t *testing.T) {
	cause := errors.New("refresh token revoked")
	auth := &fakeAuth{
		refreshFn: func(context.Context, string) (models.TokenPair, error) {
			return models.TokenPair{}, cause
		},
	}
	s, store := newTestSession(t, auth)

	err := s.Coordinator().Renew(context.Background(), "access-1")

	assert.ErrorIs(t, err, common.ErrRenewalFailed)
	assert.ErrorIs(t, err, cause)
	assert.False(t, s.Authenticated())
	assert.Equal(t, 0, store.Len())
}

func TestCoordinator_IncompletePairIsFailure(t *testing.T) {
	auth := &fakeAuth{
		refreshFn: func(context.Context, string) (models.TokenPair, error) {
			return models.TokenPair{AccessToken: "access-2"}, nil
		},
	}
	s, _ := newTestSession(t, auth)

	err := s.Coordinator().Renew(context.Background(), "access-1")

	assert.ErrorIs(t, err, common.ErrRenewalFailed)
	assert.False(t, s.Authenticated())
}

func TestCoordinator_HandleClearedBeforeWaitersRelease(t *testing.T) {
	gate := make(chan struct{})
	auth := &fakeAuth{
		refreshFn: func(context.Context, string) (models.TokenPair, error) {
			<-gate
			return models.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil
		},
	}
	s, _ := newTestSession(t, auth)
	c := s.Coordinator()

	done := make(chan error, 1)
	go func() { done <- c.Renew(context.Background(), "access-1") }()

	require.Eventually(t, func() bool { return c.State() == Refreshing }, time.Second, 5*time.Millisecond)
	close(gate)

	require.NoError(t, <-done)
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, "access-2", s.Current().AccessToken)

	// The next rejection with the now current credential starts a fresh renewal.
	auth.refreshFn = nil
	require.NoError(t, c.Renew(context.Background(), "access-2"))
	assert.Equal(t, 2, auth.refreshes())
	assert.Equal(t, []string{"refresh-1", "refresh-2"}, auth.refreshedWith)
}
