package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akylbek/payment-system/payment-result/internal/handlers"
	"github.com/akylbek/payment-system/payment-result/internal/telemetry"
)

func NewRouter(h *handlers.PaymentResultHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": telemetry.ServiceName})
	})

	r.POST("/payments/result", h.Resolve)
	r.POST("/payments/result/retry", h.Retry)
	r.DELETE("/payments/result/:clientId", h.Unmount)
	r.GET("/payments/:orderCode/result", h.GetResult)
	r.GET("/vnpay/payment-result", h.GatewayReturn)
	r.POST("/deeplinks", h.DeepLink)

	return r
}
