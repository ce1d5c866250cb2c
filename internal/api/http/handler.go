package apiHttp

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vibe-gaming/passwordless/docs"
	"github.com/vibe-gaming/passwordless/pkg/limiter"
	"github.com/vibe-gaming/passwordless/pkg/logger"
	"github.com/vibe-gaming/passwordless/pkg/validator"

	internalV1 "github.com/vibe-gaming/passwordless/internal/api/http/internal/v1"
	"github.com/vibe-gaming/passwordless/internal/config"
	"github.com/vibe-gaming/passwordless/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services    *service.Services
	issueWindow *limiter.Window
	config      *config.Config
}

func NewHandlers(
	services *service.Services,
	issueWindow *limiter.Window,
	cfg *config.Config,
) *Handler {
	return &Handler{
		services:    services,
		issueWindow: issueWindow,
		config:      cfg,
	}
}

func (h *Handler) Init(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	validator.RegisterGinValidator(cfg.Auth.Code.Length)

	router.Use(
		ginzap.Ginzap(logger.Logger(), time.RFC3339, true),
		limiter.Limit(cfg.Limiter.RPS, cfg.Limiter.Burst, cfg.Limiter.TTL),
		corsMiddleware(cfg.HttpServer.AllowedOrigins),
	)
	router.Use(ginzap.RecoveryWithZap(logger.Logger(), true))

	if cfg.HttpServer.SwaggerEnabled {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.NewHandler(), ginSwagger.InstanceName("internal")))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	h.initAPI(router)

	return router
}

func (h *Handler) initAPI(router *gin.Engine) {
	internalHandlersV1 := internalV1.NewHandler(h.services, h.issueWindow, h.config)
	api := router.Group("/api")
	internalHandlersV1.Init(api)
}
