package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/strokecovery/strokecovery-backend/internal/http/response"
	"github.com/strokecovery/strokecovery-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/auth/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.RegisterUser(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		respondServiceError(c, err, "registration_failed")
		return
	}
	response.RespondCreated(c, res)
}

// POST /api/auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "login_failed")
		return
	}
	response.RespondOK(c, res)
}

// GET /api/auth/me
func (ah *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	u, err := ah.authService.GetMe(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "load_user_failed")
		return
	}
	response.RespondOK(c, u)
}
