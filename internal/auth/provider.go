package auth

import (
	"context"

	"github.com/yadgarautos/jobfiles/internal/config"
	"github.com/yadgarautos/jobfiles/internal/domain/auth"
	"github.com/yadgarautos/jobfiles/internal/types"
)

// Provider signs the back office user in and validates the tokens it issued.
// A rejected sign in is an ErrPermissionDenied marked error.
type Provider interface {
	GetProvider() types.AuthProvider
	SignIn(ctx context.Context, identity, secret string) (*auth.Session, error)
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

func NewProvider(cfg *config.Configuration) (Provider, error) {
	switch cfg.Auth.Provider {
	case types.AuthProviderSupabase:
		return NewSupabaseAuth(cfg)
	default:
		return NewLocalAuth(cfg), nil
	}
}
