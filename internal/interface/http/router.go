package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-assistant/internal/infra/config"
	"github.com/yanqian/faq-assistant/internal/infra/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, m *metrics.Metrics) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger, m),
		corsMiddleware(),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/queries", handler.ProcessQuery)
		api.GET("/queries", handler.ListQueries)
		api.GET("/queries/:id", handler.GetQuery)
		api.GET("/analytics", handler.Analytics)

		api.POST("/faqs", handler.CreateFAQ)
		api.GET("/faqs", handler.ListFAQs)
		api.GET("/faqs/:id", handler.GetFAQ)
		api.PUT("/faqs/:id", handler.UpdateFAQ)
		api.DELETE("/faqs/:id", handler.DeleteFAQ)

		api.POST("/users", handler.CreateUser)
		api.GET("/users", handler.ListUsers)
		api.GET("/users/:id", handler.GetUser)
		api.PUT("/users/:id", handler.UpdateUser)
		api.DELETE("/users/:id", handler.DeleteUser)
		api.GET("/users/:id/sessions", handler.ListUserSessions)

		api.POST("/sessions", handler.CreateSession)
		api.POST("/sessions/cleanup", handler.CleanupSessions)
		api.GET("/sessions/:id", handler.GetSession)
		api.PUT("/sessions/:id", handler.UpdateSession)
		api.POST("/sessions/:id/extend", handler.ExtendSession)
		api.DELETE("/sessions/:id", handler.DeleteSession)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
