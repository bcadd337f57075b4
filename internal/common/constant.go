// Package common contains shared constants and sentinel errors used across
// docvault components.
package common

// Names under which the credential pair is kept in a secret store.
const (
	AccessTokenSecretName  = "access_token"
	RefreshTokenSecretName = "refresh_token"
)

// AuthorizationHeaderName is the HTTP header (and lower-cased gRPC metadata
// key) that carries the bearer access token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the authorization value.
const BearerPrefix = "Bearer "

// RequestIDHeaderName is stamped on every request issued by the session
// transport so client and server logs can be correlated.
const RequestIDHeaderName = "X-Request-ID"
