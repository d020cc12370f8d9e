package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yanqian/findmy/internal/domain/auth"
	"github.com/yanqian/findmy/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	logger = logger.With("component", "http.router")

	router := gin.New()
	router.Use(
		gin.CustomRecoveryWithWriter(io.Discard, recoverPanic(logger)),
		otelgin.Middleware(cfg.Telemetry.ServiceName),
		requestIDMiddleware(),
		requestLogger(logger),
		metricsMiddleware(),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, logger),
	)

	router.GET("/healthz", handler.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.HTTP.EnablePprof {
		pprof.Register(router)
	}

	router.POST("/get-recommendations/", handler.Recommend)
	router.POST("/get-information/", handler.Inform)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/google", handler.GoogleSignIn)
		authGroup.GET("/me", authMiddleware(authSvc), handler.Me)
	}

	restaurants := router.Group("/restaurants", authMiddleware(authSvc))
	{
		restaurants.POST("/", handler.CreateRestaurant)
		restaurants.GET("/", handler.ListRestaurants)
		restaurants.GET("/:id", handler.GetRestaurant)
		restaurants.PUT("/:id", handler.UpdateRestaurant)
		restaurants.DELETE("/:id", handler.DeleteRestaurant)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
