package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hyperifyio/seoscan/internal/app"
)

// NewRouter creates the Gin engine with all routes. Health and metrics sit
// outside rate limiting so probes and scrapers always work.
func NewRouter(a *app.App, cfg app.Config, startTime time.Time) *gin.Engine {
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/health", health(startTime))

	limited := v1.Group("")
	limited.Use(rateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	limited.POST("/analyze", analyzeHandler(a))
	limited.GET("/reports", reportHandler(a))
	limited.POST("/assistant", assistantHandler(a))

	return r
}
