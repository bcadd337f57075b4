package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*************
 * Fake auth server
 *************/

type captured struct {
	path string
	body map[string]string
}

func newAuthServer(t *testing.T, status int, respBody string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.path = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&c.body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

const okTokens = `{"accessToken":"A1","refreshToken":"R1"}`

/*************
 * Token endpoints
 *************/

func TestAuthClient_Login(t *testing.T) {
	srv, c := newAuthServer(t, http.StatusOK, okTokens)
	ac := NewAuthClient(srv.URL+"/", srv.Client(), nil)

	pair, err := ac.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.TokenPair{AccessToken: "A1", RefreshToken: "R1"}, pair)
	assert.Equal(t, "/auth/login", c.path)
	assert.Equal(t, "a@b.c", c.body["email"])
	assert.Equal(t, "pw", c.body["password"])
}

func TestAuthClient_Register(t *testing.T) {
	srv, c := newAuthServer(t, http.StatusCreated, okTokens)
	ac := NewAuthClient(srv.URL, srv.Client(), nil)

	_, err := ac.Register(context.Background(), "a@b.c", "pw", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "/auth/register", c.path)
	assert.Equal(t, "Alice", c.body["displayName"])
}

func TestAuthClient_Google(t *testing.T) {
	srv, c := newAuthServer(t, http.StatusOK, okTokens)
	ac := NewAuthClient(srv.URL, srv.Client(), nil)

	_, err := ac.LoginWithGoogle(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "/auth/google", c.path)
	assert.Equal(t, "id-token", c.body["idToken"])
}

func TestAuthClient_Refresh(t *testing.T) {
	srv, c := newAuthServer(t, http.StatusOK, `{"accessToken":"A2","refreshToken":"R2"}`)
	ac := NewAuthClient(srv.URL, srv.Client(), nil)

	pair, err := ac.Refresh(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, "A2", pair.AccessToken)
	assert.Equal(t, "/auth/refresh", c.path)
	assert.Equal(t, "R1", c.body["refreshToken"])
}

func TestAuthClient_Logout(t *testing.T) {
	srv, c := newAuthServer(t, http.StatusNoContent, "")
	ac := NewAuthClient(srv.URL, srv.Client(), nil)

	require.NoError(t, ac.Logout(context.Background(), "R1"))
	assert.Equal(t, "/auth/logout", c.path)
	assert.Equal(t, "R1", c.body["refreshToken"])
}

/*************
 * Error mapping
 *************/

func TestAuthClient_LoginRejected(t *testing.T) {
	srv, _ := newAuthServer(t, http.StatusUnauthorized, `{"error":"bad password"}`)
	ac := NewAuthClient(srv.URL, srv.Client(), nil)

	_, err := ac.Login(context.Background(), "a@b.c", "wrong")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Contains(t, err.Error(), "bad password")
}

func TestAuthClient_RefreshRejected(t *testing.T) {
	srv, _ := newAuthServer(t, http.StatusUnauthorized, `refresh token revoked`)
	ac := NewAuthClient(srv.URL, srv.Client(), nil)

	_, err := ac.Refresh(context.Background(), "R1")
	require.ErrorIs(t, err, common.ErrUnauthorized)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "refresh token revoked")
}

func TestAuthClient_ServerUnavailable(t *testing.T) {
	srv, _ := newAuthServer(t, http.StatusServiceUnavailable, "")
	ac := NewAuthClient(srv.URL, srv.Client(), nil)

	_, err := ac.Login(context.Background(), "a@b.c", "pw")
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestAuthClient_TransportError(t *testing.T) {
	srv, _ := newAuthServer(t, http.StatusOK, okTokens)
	url := srv.URL
	srv.Close()

	ac := NewAuthClient(url, nil, nil)
	_, err := ac.Login(context.Background(), "a@b.c", "pw")
	assert.ErrorIs(t, err, common.ErrUnavailable)

	assert.ErrorIs(t, ac.Logout(context.Background(), "R"), common.ErrUnavailable)
}

func TestAuthClient_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "<html>"},
		{name: "missing refresh", body: `{"accessToken":"A"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newAuthServer(t, http.StatusOK, tt.body)
			ac := NewAuthClient(srv.URL, srv.Client(), nil)

			_, err := ac.Login(context.Background(), "a@b.c", "pw")
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, common.ErrUnauthorized, mapStatus(http.StatusUnauthorized))
	assert.Equal(t, common.ErrUnauthorized, mapStatus(http.StatusForbidden))
	assert.Equal(t, common.ErrValidation, mapStatus(http.StatusBadRequest))
	assert.Equal(t, common.ErrorNotFound, mapStatus(http.StatusNotFound))
	assert.Equal(t, common.ErrUnavailable, mapStatus(http.StatusGatewayTimeout))
	assert.Nil(t, mapStatus(http.StatusTeapot))
}
