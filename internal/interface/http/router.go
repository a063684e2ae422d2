package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/astroml/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Healthz)

	limited := generationLimit(cfg.HTTP.RateLimit, handler.logger)

	api := router.Group("/api/v1")
	{
		api.POST("/charts", handler.ComputeChart)

		api.POST("/readings", limited, handler.StartReading)
		api.GET("/readings/:id", handler.GetReading)
		api.DELETE("/readings/:id", handler.EndReading)
		api.POST("/readings/:id/submit", limited, handler.SubmitReading)
		api.POST("/readings/:id/daily", limited, handler.RequestDailyHoroscope)
		api.POST("/readings/:id/reset", handler.ResetReading)
		api.GET("/readings/:id/export", handler.ExportReading)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
