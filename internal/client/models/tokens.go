// Package models defines client-side data models shared by the session layer,
// the API clients and the development server.
package models

// TokenPair is the access/refresh credential pair. An empty string means the
// credential is absent. Tokens are opaque to the client and never parsed.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Authenticated reports whether an access credential is present.
func (p TokenPair) Authenticated() bool {
	return p.AccessToken != ""
}

// Complete reports whether both credentials are present.
func (p TokenPair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// LoginRequest is the body of POST /auth/login and POST /auth/register.
type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

// RefreshRequest is the body of POST /auth/refresh and POST /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// GoogleLoginRequest is the body of POST /auth/google.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken"`
}
