package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HealthCheck 回傳 nil 表示依賴正常
type HealthCheck func(ctx context.Context) error

// RouterConfig 路由需要的元件
type RouterConfig struct {
	Handler        *Handler
	Verifier       TokenVerifier
	Health         HealthCheck
	AccessLog      zerolog.Logger
	RequestTimeout time.Duration

	// MetricsPath 為空時不掛 /metrics
	MetricsPath string
	Gatherer    prometheus.Gatherer
}

// NewRouter 建立 gin engine
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), AccessLog(cfg.AccessLog), RequestTimeout(cfg.RequestTimeout))

	router.GET("/health", health(cfg.Health))
	if cfg.MetricsPath != "" && cfg.Gatherer != nil {
		router.GET(cfg.MetricsPath, gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	h := cfg.Handler
	business := router.Group("/api/business/:businessId", Authenticate(cfg.Verifier, cfg.AccessLog))
	{
		business.POST("/scans", h.ProcessScan)
		business.GET("/scans/:rewardId/customerbalance/:qrCodeValue", h.GetBalance)
		business.GET("/scans/:rewardId/events/:scanEventId", h.GetScanEvent)
		business.GET("/redemptions/:rewardId/:redemptionId", h.GetRedemption)
		business.POST("/rewards", h.CreateReward)
	}

	return router
}

func health(check HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC()})
	}
}
