package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yadgarautos/jobfiles/internal/domain/auth"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/types"
)

const bearerPrefix = "Bearer "

// TokenValidator checks a bearer token, revocation included
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

// GuestAuthenticateMiddleware marks requests of public routes with the default user
func GuestAuthenticateMiddleware(c *gin.Context) {
	ctx := context.WithValue(c.Request.Context(), types.CtxUserID, types.DefaultUserID)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// AuthenticateMiddleware requires a valid bearer token and puts the user id
// and the raw token in the request context
func AuthenticateMiddleware(validator TokenValidator, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(types.HeaderAuthorization)
		if authHeader == "" {
			_ = c.Error(ierr.NewError("missing authorization header").
				WithHint("Please sign in").
				Mark(ierr.ErrUnauthenticated))
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, bearerPrefix) {
			_ = c.Error(ierr.NewError("invalid authorization header format").
				WithHint("Authorization header must be a bearer token").
				Mark(ierr.ErrUnauthenticated))
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			log.Debugw("rejected token", "error", err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		if claims == nil || claims.UserID == "" {
			_ = c.Error(ierr.NewError("invalid token claims").
				WithHint("Invalid token claims").
				Mark(ierr.ErrUnauthenticated))
			c.Abort()
			return
		}

		ctx := types.SetUserID(c.Request.Context(), claims.UserID)
		ctx = types.SetJWT(ctx, token)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
