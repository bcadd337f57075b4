package session

import (
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"golang.org/x/oauth2"
)

type tokenSource struct {
	creds *Credentials
}

// TokenSource exposes the live access credential to oauth2-aware clients.
// It never renews on its own; renewal stays with the coordinator.
func (s *Session) TokenSource() oauth2.TokenSource {
	return tokenSource{creds: s.creds}
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	pair := ts.creds.Current()
	if !pair.Authenticated() {
		return nil, fmt.Errorf("token source: %w", common.ErrUnauthorized)
	}
	return &oauth2.Token{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}
