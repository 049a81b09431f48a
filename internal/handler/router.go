package handler

import (
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/pmalov/spravka/internal/middleware"
)

type RouterOptions struct {
	CORSAllowlist   []string
	RateLimitWindow time.Duration
}

// NewRouter assembles the gin engine: status probe at the root, the ask
// endpoint under /api/v1.
func NewRouter(chat *ChatHandler, opts RouterOptions) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS(opts.CORSAllowlist))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	engine.GET("/", chat.Status)

	api := engine.Group("/api/v1")
	if opts.RateLimitWindow > 0 {
		api.Use(middleware.RateLimit(opts.RateLimitWindow))
	}
	api.POST("/ask", chat.Ask)
	return engine
}
