package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deployprobe/deployprobe/internal/auth"
)

// AuthHandler exchanges the admin secret for a bearer token.
type AuthHandler struct {
	service *auth.Service
}

func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type tokenRequest struct {
	Secret string `json:"secret"`
}

// Token handles POST /auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_json"})
		return
	}

	token, err := h.service.IssueToken(req.Secret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_secret"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":          token,
		"token_type":     "Bearer",
		"expires_in_sec": int(h.service.TokenTTL().Seconds()),
	})
}
