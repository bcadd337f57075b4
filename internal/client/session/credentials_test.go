package session

import (
	"net/http"
	"testing"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials(t *testing.T) {
	var c Credentials
	assert.False(t, c.Current().Authenticated())

	pair := models.TokenPair{AccessToken: "a1", RefreshToken: "r1"}
	c.Set(pair)
	assert.Equal(t, pair, c.Current())

	assert.False(t, c.CompareAndSet("other", models.TokenPair{AccessToken: "x", RefreshToken: "y"}))
	assert.Equal(t, pair, c.Current())

	next := models.TokenPair{AccessToken: "a2", RefreshToken: "r2"}
	assert.True(t, c.CompareAndSet("r1", next))
	assert.Equal(t, next, c.Current())

	assert.False(t, c.CompareAndClear("r1"))
	assert.True(t, c.CompareAndClear("r2"))
	assert.Equal(t, models.TokenPair{}, c.Current())

	c.Set(pair)
	c.Clear()
	assert.False(t, c.Current().Authenticated())
}

func TestDecorate(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://docvault.test/documents", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")

	out := Decorate(req, "a1")
	assert.Equal(t, "Bearer a1", out.Header.Get(common.AuthorizationHeaderName))
	assert.Equal(t, "application/json", out.Header.Get("Accept"))
	assert.Empty(t, req.Header.Get(common.AuthorizationHeaderName))

	out.Header.Set(common.AuthorizationHeaderName, "Bearer stale")
	cleared := Decorate(out, "")
	assert.Empty(t, cleared.Header.Values(common.AuthorizationHeaderName))
	assert.Equal(t, "Bearer stale", out.Header.Get(common.AuthorizationHeaderName))
}
