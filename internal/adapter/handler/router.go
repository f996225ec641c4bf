package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the Gin engine with the pantry routes and middlewares.
func NewRouter(h *HTTPHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/health", h.HealthCheck)

	users := r.Group("/api/users/:user_id")
	{
		users.GET("/stock", h.ListStock)
		users.POST("/stock", h.AddToStock)
		users.DELETE("/stock/:ingredient_id", h.RemoveFromStock)

		users.GET("/shopping-list", h.ListShoppingList)
		users.POST("/shopping-list", h.AddToShoppingList)
		users.POST("/shopping-list/checkout", h.Checkout)
		users.PATCH("/shopping-list/:ingredient_id", h.SetShoppingDone)
		users.DELETE("/shopping-list/:ingredient_id", h.RemoveFromShoppingList)

		users.GET("/cocktails/makeable", h.ListMakeable)
		users.GET("/cocktails/quasi", h.ListQuasiRealizable)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
