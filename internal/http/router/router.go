package router

import (
	"net/http"
	"time"

	"basegraph.app/helpdesk/internal/http/handler"
	"basegraph.app/helpdesk/internal/http/middleware"
	"basegraph.app/helpdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	FrontendURL   string
	SuccessURL    string
	FailureURL    string
	SessionMaxAge time.Duration
	IsProduction  bool
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.Use(middleware.CORS(cfg.FrontendURL))

	healthHandler := handler.NewHealthHandler(services.Health())
	router.GET("/health", healthHandler.Check)

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	authService := services.Auth()
	authHandler := handler.NewAuthHandler(authService, handler.AuthConfig{
		SuccessURL:    cfg.SuccessURL,
		FailureURL:    cfg.FailureURL,
		SessionMaxAge: cfg.SessionMaxAge,
		IsProduction:  cfg.IsProduction,
	})
	AuthRouter(router.Group("/auth"), authHandler)

	api := router.Group("/api")
	api.Use(middleware.RequireAuth(authService, cfg.IsProduction))
	{
		api.GET("/user", authHandler.Me)

		messengerHandler := handler.NewMessengerHandler(services.Messenger())
		api.GET("/messenger", messengerHandler.Boot)

		requestHandler := handler.NewRequestHandler(services.Requests(), cfg.IsProduction)
		RequestRouter(api.Group("/requests"), requestHandler)
	}
}
