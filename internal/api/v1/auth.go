package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yadgarautos/jobfiles/internal/api/dto"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/service"
	"github.com/yadgarautos/jobfiles/internal/types"
)

type AuthHandler struct {
	authService service.AuthService
	logger      *logger.Logger
}

func NewAuthHandler(authService service.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// @Summary Login
// @Description Sign the back office admin in
// @Tags Auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 429 {object} ierr.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrValidation))
		return
	}

	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, authResponse)
}

// @Summary Logout
// @Description Revoke the bearer token of the request
// @Tags Auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} ierr.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := types.GetJWT(c.Request.Context())
	if err := h.authService.SignOut(c.Request.Context(), token); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
