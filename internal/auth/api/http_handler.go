package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ridloal/retail-pos/internal/auth/domain"
	"github.com/ridloal/retail-pos/internal/auth/service"
	"github.com/ridloal/retail-pos/internal/platform/logger"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(as service.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// RegisterRoutes mounts the public login route. Extra handlers such as a
// rate limiter run before Login.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, guards ...gin.HandlerFunc) {
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", append(guards, h.Login)...)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Login: bad request", err, nil)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error(), "code": "VALIDATION"})
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "UNAUTHORIZED"})
			return
		}
		logger.Error("Login: service error", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login", "code": "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, response)
}
