package client

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/client/models"
)

// AuthService is the authentication backend consumed by the session layer.
type AuthService interface {
	Login(ctx context.Context, email, password string) (models.TokenPair, error)
	Register(ctx context.Context, email, password, displayName string) (models.TokenPair, error)
	LoginWithGoogle(ctx context.Context, idToken string) (models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}
