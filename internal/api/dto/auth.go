package dto

import (
	"time"

	"github.com/yadgarautos/jobfiles/internal/domain/auth"
	"github.com/yadgarautos/jobfiles/internal/validator"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *LoginRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func NewAuthResponse(s *auth.Session) *AuthResponse {
	return &AuthResponse{
		Token:     s.Token,
		UserID:    s.UserID,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
	}
}
