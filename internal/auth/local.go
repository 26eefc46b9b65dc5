package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/yadgarautos/jobfiles/internal/config"
	"github.com/yadgarautos/jobfiles/internal/domain/auth"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/types"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 12 * time.Hour

// localAuth knows a single admin account from configuration
type localAuth struct {
	cfg config.AuthConfig
	now func() time.Time
}

func NewLocalAuth(cfg *config.Configuration) *localAuth {
	return &localAuth{
		cfg: cfg.Auth,
		now: time.Now,
	}
}

func (l *localAuth) GetProvider() types.AuthProvider {
	return types.AuthProviderLocal
}

func (l *localAuth) SignIn(ctx context.Context, identity, secret string) (*auth.Session, error) {
	admin := l.cfg.Admin
	if admin.Email == "" || admin.PasswordHash == "" {
		return nil, ierr.NewError("admin account not configured").
			WithHint("Sign in is not available, the admin account is not configured").
			Mark(ierr.ErrPermissionDenied)
	}

	emailOK := strings.EqualFold(strings.TrimSpace(identity), admin.Email)
	// compare the password even on a wrong email so both paths cost the same
	passwordErr := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(secret))
	if !emailOK || passwordErr != nil {
		return nil, ierr.NewError("invalid credentials").
			WithHint("Invalid email or password").
			Mark(ierr.ErrPermissionDenied)
	}

	userID := adminUserID(admin.Email)
	token, expiresAt, err := l.generateToken(userID, admin.Email)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to generate token").
			Mark(ierr.ErrSystem)
	}

	return &auth.Session{
		UserID:    userID,
		Email:     admin.Email,
		Token:     token,
		ExpiresAt: expiresAt,
		Provider:  types.AuthProviderLocal,
	}, nil
}

func (l *localAuth) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewErrorf("unexpected signing method: %v", t.Header["alg"]).
				Mark(ierr.ErrUnauthenticated)
		}
		return []byte(l.cfg.Secret), nil
	}, jwt.WithoutClaimsValidation())
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

	exp, ok := claims["exp"].(float64)
	if !ok || l.now().Unix() >= int64(exp) {
		return nil, ierr.NewError("token expired").
			WithHint("Session expired, please sign in again").
			Mark(ierr.ErrUnauthenticated)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ierr.NewError("token missing user ID").
			WithHint("Token missing user ID").
			Mark(ierr.ErrUnauthenticated)
	}
	email, _ := claims["email"].(string)

	return &auth.Claims{
		UserID:    userID,
		Email:     email,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}

func (l *localAuth) generateToken(userID, email string) (string, time.Time, error) {
	ttl := l.cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := l.now()
	expiresAt := now.Add(ttl)

	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"jti":     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SESSION),
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(l.cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, time.Unix(expiresAt.Unix(), 0), nil
}

// adminUserID is stable across restarts so audit fields stay comparable
func adminUserID(email string) string {
	return types.UUID_PREFIX_USER + "_" + strings.ToLower(email)
}

// HashPassword produces the bcrypt hash stored in auth.admin.password_hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ierr.NewError("password is required").
			WithHint("Password is required").
			Mark(ierr.ErrValidation)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to hash password").
			Mark(ierr.ErrSystem)
	}
	return string(hashed), nil
}
