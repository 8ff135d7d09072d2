package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yourusername/invoicely/config"
	"github.com/yourusername/invoicely/repository"
	"github.com/yourusername/invoicely/services"
)

type AuthHandler struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth: services.NewAuthService(repository.NewUserRepository(db), cfg),
		log:  log,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	payload := bindPayload(c)

	result, err := h.auth.Login(payload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondSuccess(c, result)
}
