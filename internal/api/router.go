// Package api exposes the dish repository over HTTP with gin. Reads are
// public; writes need a bearer token issued by POST /api/login.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"chefmenu/internal/core"
	"chefmenu/internal/session"
)

// Deps wires the router to the rest of the application.
type Deps struct {
	Repo           *core.Repository
	Gate           *session.Gate
	Tokens         *session.Tokens
	Logger         logrus.FieldLogger
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

type handler struct {
	repo   *core.Repository
	gate   *session.Gate
	tokens *session.Tokens
	log    logrus.FieldLogger
}

// NewRouter builds the gin engine serving the dish API.
func NewRouter(d Deps) *gin.Engine {
	log := d.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	h := &handler{repo: d.Repo, gate: d.Gate, tokens: d.Tokens, log: log}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.POST("/login", h.login)
	api.POST("/logout", h.requireToken(), h.logout)

	dishes := api.Group("/dishes")
	dishes.GET("", h.listDishes)
	dishes.GET("/average", h.averagePrice)
	dishes.GET("/export", h.exportDishes)
	dishes.GET("/:id", h.getDish)
	dishes.POST("", h.requireToken(), h.createDish)
	dishes.POST("/import", h.requireToken(), h.importDishes)
	dishes.PUT("/:id", h.requireToken(), h.updateDish)
	dishes.DELETE("/:id", h.requireToken(), h.removeDish)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "route not found"})
	})
	return r
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}
