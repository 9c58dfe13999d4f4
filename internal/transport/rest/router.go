package rest

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// NewRouter собирает gin-роутер со всеми маршрутами товарного API.
func NewRouter(handler *Handler, logger *log.Entry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	if logger != nil {
		router.Use(requestLogger(logger))
	}

	products := router.Group("/products")
	{
		products.GET("/all", handler.All)
		products.GET("/available", handler.Available)
		products.GET("/id/:product_id", handler.ByID)
		products.POST("/new", handler.Create)
		products.PUT("/update", handler.Update)
		products.PUT("/update-price/:product_id/:price", handler.UpdatePrice)
		products.PUT("/update-quantity/:product_id/:qty", handler.UpdateQuantity)
		products.POST("/place-order", handler.PlaceOrder)
	}

	return router
}

// requestLogger пишет одну структурированную строку на запрос.
func requestLogger(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("http request handled")
	}
}
