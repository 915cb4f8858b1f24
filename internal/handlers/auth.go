package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/travelit/backend/internal/config"
	"github.com/travelit/backend/internal/middleware"
	"github.com/travelit/backend/internal/services"
	"github.com/travelit/backend/pkg/response"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

// Register creates an unverified account and sends the verification email
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.Register(&req); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, "Registration successful. Please check your email to verify your account.")
}

// Verify consumes the emailed token and redirects to the front end
// GET /api/auth/verify?token=
func (h *AuthHandler) Verify(c *gin.Context) {
	if err := h.authService.VerifyEmail(c.Query("token")); err != nil {
		response.Error(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.cfg.VerifiedRedirectURL())
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// Me returns the current logged-in user
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.GetMe(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}
