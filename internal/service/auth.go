package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/yadgarautos/jobfiles/internal/api/dto"
	"github.com/yadgarautos/jobfiles/internal/cache"
	"github.com/yadgarautos/jobfiles/internal/domain/auth"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/pubsub"
	"github.com/yadgarautos/jobfiles/internal/types"
)

type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// SignOut revokes token until it would have expired anyway
	SignOut(ctx context.Context, token string) error
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
	// OnSessionChange calls fn for every sign in and sign out until ctx is done
	OnSessionChange(ctx context.Context, fn func(auth.SessionChange)) error
}

type authService struct {
	ServiceParams
}

func NewAuthService(params ServiceParams) AuthService {
	return &authService{ServiceParams: params}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	session, err := s.AuthProvider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		s.Logger.Warnw("sign in rejected", "email", req.Email, "error", err)
		return nil, err
	}

	s.publish(ctx, auth.SessionChange{
		Event:  types.SessionEventSignedIn,
		UserID: session.UserID,
		Email:  session.Email,
		At:     time.Now().UTC(),
	})

	s.Logger.Infow("signed in", "user_id", session.UserID, "provider", session.Provider)
	return dto.NewAuthResponse(session), nil
}

func (s *authService) SignOut(ctx context.Context, token string) error {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl > 0 {
		s.Cache.ForceSet(ctx, revokedKey(token), claims.UserID, ttl)
	}

	s.publish(ctx, auth.SessionChange{
		Event:  types.SessionEventSignedOut,
		UserID: claims.UserID,
		Email:  claims.Email,
		At:     time.Now().UTC(),
	})

	s.Logger.Infow("signed out", "user_id", claims.UserID)
	return nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, ierr.NewError("missing token").
			WithHint("Please sign in").
			Mark(ierr.ErrUnauthenticated)
	}

	if _, revoked := s.Cache.ForceGet(ctx, revokedKey(token)); revoked {
		return nil, ierr.NewError("token revoked").
			WithHint("Session ended, please sign in again").
			Mark(ierr.ErrUnauthenticated)
	}

	return s.AuthProvider.ValidateToken(ctx, token)
}

func (s *authService) OnSessionChange(ctx context.Context, fn func(auth.SessionChange)) error {
	messages, err := s.PubSub.Subscribe(ctx, pubsub.TopicAuthSession)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to subscribe to session changes").
			Mark(ierr.ErrSystem)
	}

	go func() {
		for msg := range messages {
			var change auth.SessionChange
			if err := json.Unmarshal(msg.Payload, &change); err != nil {
				s.Logger.Errorw("dropping malformed session change", "message_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			fn(change)
			msg.Ack()
		}
	}()
	return nil
}

// publish never fails the caller, a missed notification only delays listeners
func (s *authService) publish(ctx context.Context, change auth.SessionChange) {
	payload, err := json.Marshal(change)
	if err != nil {
		s.Logger.Errorw("failed to encode session change", "error", err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.PubSub.Publish(ctx, pubsub.TopicAuthSession, msg); err != nil {
		s.Logger.Errorw("failed to publish session change",
			"event", change.Event,
			"user_id", change.UserID,
			"error", err)
	}
}

// revokedKey hashes the token so raw credentials never sit in the cache
func revokedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return cache.GenerateKey(cache.PrefixRevokedJWT, hex.EncodeToString(sum[:]))
}
