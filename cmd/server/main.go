package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"basegraph.app/helpdesk/common/id"
	"basegraph.app/helpdesk/common/logger"
	"basegraph.app/helpdesk/common/otel"
	"basegraph.app/helpdesk/core/config"
	"basegraph.app/helpdesk/internal/http/middleware"
	httprouter "basegraph.app/helpdesk/internal/http/router"
	"basegraph.app/helpdesk/internal/metrics"
	"basegraph.app/helpdesk/internal/service"
	"basegraph.app/helpdesk/internal/service/helpdesk"
	"basegraph.app/helpdesk/internal/store"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "support portal starting", "env", cfg.Env, "store", cfg.Store.Driver)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	requests, closeRequests, err := store.OpenRequestStore(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open request store", "error", err, "driver", cfg.Store.Driver)
		os.Exit(1)
	}
	defer closeRequests()
	slog.InfoContext(ctx, "request store connected", "driver", cfg.Store.Driver)

	sessions, closeSessions, err := store.OpenSessionStore(ctx, cfg.Redis)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open session store", "error", err)
		os.Exit(1)
	}
	defer closeSessions()
	slog.InfoContext(ctx, "redis connected")

	m := metrics.Default()

	bridge := helpdesk.NewIntercomClient(helpdesk.IntercomConfig{
		BaseURL:     cfg.Intercom.BaseURL,
		AccessToken: cfg.Intercom.AccessToken,
		APIVersion:  cfg.Intercom.APIVersion,
		Timeout:     cfg.Intercom.Timeout,
	}, nil, m)
	if !cfg.Intercom.Enabled() {
		slog.WarnContext(ctx, "INTERCOM_ACCESS_TOKEN not set, requests will be stored without helpdesk sync")
	}

	services := service.NewServices(
		store.NewStores(requests, sessions),
		bridge,
		service.NewWorkOSProvider(cfg.WorkOS.APIKey),
		m,
		cfg,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		FrontendURL:   cfg.FrontendURL,
		SuccessURL:    cfg.SuccessURL,
		FailureURL:    cfg.FailureURL,
		SessionMaxAge: cfg.Session.MaxAge,
		IsProduction:  cfg.IsProduction(),
		Metrics:       metrics.Handler(),
	})

	return router
}

const banner = `
 ___ _   _ ___ ___  ___  ___ _____   ___  ___  ___ _____ _   _
/ __| | | | _ \ _ \/ _ \| _ \_   _| | _ \/ _ \| _ \_   _/_\ | |
\__ \ |_| |  _/  _/ (_) |   / | |   |  _/ (_) |   / | |/ _ \| |__
|___/\___/|_| |_|  \___/|_|_\ |_|   |_|  \___/|_|_\ |_/_/ \_\____|
`
