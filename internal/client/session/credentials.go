package session

import (
	"sync"

	"github.com/dmitrijs2005/docvault/internal/client/models"
)

// Credentials is the in-memory credential pair shared by every request.
// It never touches the secret store.
type Credentials struct {
	mu   sync.RWMutex
	pair models.TokenPair
}

// Set replaces both credentials; the next dispatched request uses them.
func (c *Credentials) Set(pair models.TokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pair = pair
}

// Clear drops both credentials.
func (c *Credentials) Clear() {
	c.Set(models.TokenPair{})
}

// Current returns a snapshot of the pair.
func (c *Credentials) Current() models.TokenPair {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pair
}

// CompareAndSet replaces the pair only while its refresh credential is still
// expectedRefresh. It reports whether the swap happened.
func (c *Credentials) CompareAndSet(expectedRefresh string, pair models.TokenPair) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pair.RefreshToken != expectedRefresh {
		return false
	}
	c.pair = pair
	return true
}

// CompareAndClear clears the pair only while its refresh credential is still
// expectedRefresh.
func (c *Credentials) CompareAndClear(expectedRefresh string) bool {
	return c.CompareAndSet(expectedRefresh, models.TokenPair{})
}
