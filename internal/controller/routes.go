package controller

import (
	"net/http"

	"roadside-assist-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	Orders      *OrderController
	Garages     *GarageController
	AdminAPIKey string
	Logger      logrus.FieldLogger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(cfg.Logger))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Rutas públicas
	api.GET("/garages/nearby", cfg.Garages.Nearby)
	api.GET("/services", cfg.Garages.Categories)
	api.GET("/towing", cfg.Garages.Towing)
	api.POST("/estimates", cfg.Garages.Estimate)

	api.POST("/orders", cfg.Orders.CreateOrder)
	api.GET("/orders", cfg.Orders.ListOrders)
	api.GET("/orders/:id", cfg.Orders.GetOrder)
	api.GET("/orders/:id/track", cfg.Orders.TrackOrder)
	api.PATCH("/orders/:id/status", cfg.Orders.UpdateStatus)

	// Rutas admin
	admin := api.Group("/")
	admin.Use(middleware.AdminOnly(cfg.AdminAPIKey))
	admin.POST("/garages/seed", cfg.Garages.Seed)

	return r
}
