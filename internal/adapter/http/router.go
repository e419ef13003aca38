package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecomkit/shop-api/internal/adapter/http/middleware"
	"github.com/ecomkit/shop-api/internal/logging"
)

func NewRouter(products *ProductHandler, orders *OrderHandler, health *HealthHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "E-commerce Backend API is running"})
	})
	r.GET("/health", health.Check)
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/products", products.Create)
	r.GET("/products", products.List)
	r.POST("/orders", orders.Create)
	r.GET("/orders/:user_id", orders.ListByUser)

	return r
}
