package v1

import (
	"github.com/vibe-gaming/passwordless/internal/config"
	"github.com/vibe-gaming/passwordless/internal/service"
	"github.com/vibe-gaming/passwordless/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// @title Passwordless Auth API
// @version 1.0
// @description Email code and magic link sign-in

// @BasePath /api/v1

// @securityDefinitions.apikey SessionAuth
// @in header
// @name Authorization

type Handler struct {
	services    *service.Services
	issueWindow *limiter.Window
	config      *config.Config
}

func NewHandler(
	services *service.Services,
	issueWindow *limiter.Window,
	config *config.Config,
) *Handler {
	return &Handler{
		services:    services,
		issueWindow: issueWindow,
		config:      config,
	}
}

func (h *Handler) Init(api *gin.RouterGroup) {
	v1 := api.Group("v1")

	h.initAuthRoutes(v1)
}
