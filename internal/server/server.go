package server

import (
	"net/http"

	"quicknotes/internal/config"
	"quicknotes/internal/constants"
	mw "quicknotes/internal/middleware"

	"github.com/gin-gonic/gin"
)

// BuildEngine constructs the Gin engine with the standard middleware
// stack and all API routes mounted.
func BuildEngine(cfg *config.FileConfig, svc *Service, broadcaster *Broadcaster) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	_ = engine.SetTrustedProxies([]string{})

	engine.Use(mw.Recovery(), mw.RequestID(), mw.CORS())
	engine.Use(mw.RequestLogger())
	if cfg.RateLimitEnabled {
		engine.Use(mw.RateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	h := NewHandler(svc)

	api := engine.Group("/api")
	{
		api.GET("/token", h.GetToken)
		api.POST("/token", h.SetToken)
		api.GET("/pages", h.ListPages)
		api.GET("/pages/selected", h.GetSelected)
		api.PUT("/pages/selected", h.PutSelected)
		api.GET("/pages/:id", h.GetPage)
		api.POST("/notes", h.PostNote)
		api.GET("/ratelimit", h.GetRateLimit)
	}

	engine.GET("/ws/events", broadcaster.HandleWS)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": constants.Version,
		})
	})

	return engine
}
