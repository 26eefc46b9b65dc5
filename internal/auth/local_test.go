package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yadgarautos/jobfiles/internal/config"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/types"
	"golang.org/x/crypto/bcrypt"
)

func newTestLocalAuth(t *testing.T) *localAuth {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Auth.Admin = config.AdminConfig{Email: "admin@yadgarautos.com", PasswordHash: string(hash)}
	return NewLocalAuth(cfg)
}

func TestLocalSignIn(t *testing.T) {
	ctx := context.Background()
	a := newTestLocalAuth(t)

	session, err := a.SignIn(ctx, " Admin@YadgarAutos.com ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "admin@yadgarautos.com", session.Email)
	assert.Equal(t, types.AuthProviderLocal, session.Provider)
	assert.NotEmpty(t, session.Token)

	claims, err := a.ValidateToken(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, claims.UserID)
	assert.Equal(t, "admin@yadgarautos.com", claims.Email)
	assert.Equal(t, session.ExpiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestLocalSignInRejected(t *testing.T) {
	ctx := context.Background()
	a := newTestLocalAuth(t)

	_, err := a.SignIn(ctx, "admin@yadgarautos.com", "wrong")
	assert.True(t, ierr.IsPermissionDenied(err))

	_, err = a.SignIn(ctx, "someone@else.com", "s3cret")
	assert.True(t, ierr.IsPermissionDenied(err))
}

func TestLocalSignInWithoutAdmin(t *testing.T) {
	a := NewLocalAuth(config.GetDefaultConfig())
	_, err := a.SignIn(context.Background(), "admin@yadgarautos.com", "anything")
	assert.True(t, ierr.IsPermissionDenied(err))
}

func TestLocalValidateToken(t *testing.T) {
	ctx := context.Background()
	a := newTestLocalAuth(t)

	session, err := a.SignIn(ctx, "admin@yadgarautos.com", "s3cret")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { a.now = time.Now }()

		_, err := a.ValidateToken(ctx, session.Token)
		assert.True(t, ierr.IsUnauthenticated(err))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := newTestLocalAuth(t)
		other.cfg.Secret = "another-secret"
		_, err := other.ValidateToken(ctx, session.Token)
		assert.True(t, ierr.IsUnauthenticated(err))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := a.ValidateToken(ctx, "not.a.token")
		assert.True(t, ierr.IsUnauthenticated(err))
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	_, err = HashPassword("")
	assert.True(t, ierr.IsValidation(err))
}
