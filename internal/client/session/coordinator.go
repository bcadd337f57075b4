package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/logging"
)

// ErrNoRefreshToken is returned by Renew when there is nothing to renew with.
var ErrNoRefreshToken = errors.New("no refresh token")

// State of the renewal state machine.
type State int

const (
	Idle State = iota
	Refreshing
)

func (s State) String() string {
	if s == Refreshing {
		return "refreshing"
	}
	return "idle"
}

// Refresher exchanges a refresh credential for a new pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
}

// renewalSink applies a renewal outcome. usedRefresh is the refresh credential
// the renewal was started with, so a session that was logged out or replaced
// meanwhile is left alone.
type renewalSink interface {
	renewed(ctx context.Context, usedRefresh string, pair models.TokenPair)
	expired(ctx context.Context, usedRefresh string)
}

// renewal is the shared completion handle of one in-flight refresh call.
// err is written before done is closed and only read after.
type renewal struct {
	done chan struct{}
	err  error
}

// Coordinator runs at most one refresh call at a time. Requests that fail
// authentication while a renewal is in flight wait on the same handle instead
// of starting their own.
type Coordinator struct {
	creds     *Credentials
	refresher Refresher
	sink      renewalSink
	logger    logging.Logger
	metrics   *Metrics

	mu       sync.Mutex
	inflight *renewal
}

func newCoordinator(creds *Credentials, refresher Refresher, sink renewalSink, logger logging.Logger, metrics *Metrics) *Coordinator {
	return &Coordinator{
		creds:     creds,
		refresher: refresher,
		sink:      sink,
		logger:    logger.With("component", "renewal"),
		metrics:   metrics,
	}
}

// State reports whether a renewal is currently in flight.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight != nil {
		return Refreshing
	}
	return Idle
}

// Renew is called by a request that was rejected while carrying staleAccess.
// It returns nil when the credential state now holds a newer access
// credential and the request should be replayed. Any other result means the
// original failure must be surfaced: ErrNoRefreshToken, a wrapped
// common.ErrRenewalFailed, or ctx.Err() if the caller gave up waiting.
//
// Giving up does not cancel the renewal; other waiters still need it.
func (c *Coordinator) Renew(ctx context.Context, staleAccess string) error {
	c.mu.Lock()
	r := c.inflight
	if r == nil {
		cur := c.creds.Current()
		if cur.AccessToken != "" && cur.AccessToken != staleAccess {
			// Renewed after this request was dispatched.
			c.mu.Unlock()
			return nil
		}
		if cur.RefreshToken == "" {
			c.mu.Unlock()
			return ErrNoRefreshToken
		}

		r = &renewal{done: make(chan struct{})}
		c.inflight = r
		go c.run(context.WithoutCancel(ctx), r, cur.RefreshToken)
	} else {
		c.metrics.waiter()
	}
	c.mu.Unlock()

	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) run(ctx context.Context, r *renewal, refreshToken string) {
	c.logger.Info(ctx, "renewing access credential")

	pair, err := c.refresher.Refresh(ctx, refreshToken)
	if err == nil && !pair.Complete() {
		err = errors.New("refresh returned an incomplete token pair")
	}

	if err != nil {
		r.err = fmt.Errorf("%w: %w", common.ErrRenewalFailed, err)
		c.sink.expired(ctx, refreshToken)
		c.metrics.renewal(outcomeFailure)
		c.logger.Warn(ctx, "credential renewal failed, session ended", "error", err)
	} else {
		c.sink.renewed(ctx, refreshToken, pair)
		c.metrics.renewal(outcomeSuccess)
		c.logger.Info(ctx, "access credential renewed")
	}

	c.mu.Lock()
	c.inflight = nil
	c.mu.Unlock()

	close(r.done)
}
