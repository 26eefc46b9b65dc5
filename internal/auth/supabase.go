package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/nedpals/supabase-go"
	"github.com/yadgarautos/jobfiles/internal/config"
	"github.com/yadgarautos/jobfiles/internal/domain/auth"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/types"
)

type supabaseAuth struct {
	cfg    config.AuthConfig
	client *supabase.Client
}

func NewSupabaseAuth(cfg *config.Configuration) (Provider, error) {
	client := supabase.CreateClient(cfg.Auth.Supabase.BaseURL, cfg.Auth.Supabase.ServiceKey)
	if client == nil {
		return nil, ierr.NewError("failed to create Supabase client").
			WithHint("Check auth.supabase.base_url and auth.supabase.service_key").
			Mark(ierr.ErrSystem)
	}

	return &supabaseAuth{
		cfg:    cfg.Auth,
		client: client,
	}, nil
}

func (s *supabaseAuth) GetProvider() types.AuthProvider {
	return types.AuthProviderSupabase
}

func (s *supabaseAuth) SignIn(ctx context.Context, identity, secret string) (*auth.Session, error) {
	details, err := s.client.Auth.SignIn(ctx, supabase.UserCredentials{
		Email:    identity,
		Password: secret,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid email or password").
			Mark(ierr.ErrPermissionDenied)
	}

	return &auth.Session{
		UserID:    details.User.ID,
		Email:     details.User.Email,
		Token:     details.AccessToken,
		ExpiresAt: time.Now().Add(time.Duration(details.ExpiresIn) * time.Second),
		Provider:  types.AuthProviderSupabase,
	}, nil
}

func (s *supabaseAuth) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	secret := s.cfg.Supabase.JWTSecret
	if secret == "" {
		secret = s.cfg.Secret
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewErrorf("unexpected signing method: %v", t.Header["alg"]).
				Mark(ierr.ErrUnauthenticated)
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Token parse error").
			Mark(ierr.ErrUnauthenticated)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token claims").
			Mark(ierr.ErrUnauthenticated)
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return nil, ierr.NewError("token missing user ID").
			WithHint("Token missing user ID").
			Mark(ierr.ErrUnauthenticated)
	}
	email, _ := claims["email"].(string)

	out := &auth.Claims{UserID: userID, Email: email}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out, nil
}
