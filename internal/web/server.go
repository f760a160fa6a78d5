// Package web exposes the engine over HTTP: the annotated table feed
// consumed by the rendering layer and the calendar export download. The
// pipeline packages stay free of HTTP concerns; this layer only parses
// requests, calls the pure functions and shapes responses.
package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"badmincal/internal/catalog"
	"badmincal/internal/config"
	"badmincal/internal/export"
	"badmincal/internal/i18n"
	"badmincal/internal/logger"
)

// Server wires the handlers to their collaborators.
type Server struct {
	cfg      *config.Config
	store    *catalog.Store
	resolver *i18n.Resolver
	compiler *export.Compiler
	metrics  *Metrics
	logger   *zap.Logger

	// now is the reference-time source; injectable for tests.
	now func() time.Time
}

// NewServer constructs a Server.
func NewServer(cfg *config.Config, store *catalog.Store, resolver *i18n.Resolver, l *zap.Logger) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		compiler: export.NewCompiler(resolver, cfg.SiteURL),
		metrics:  NewMetrics(),
		logger:   l,
		now:      time.Now,
	}
}

// Router builds the gin engine with middleware and routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(s.logger))
	r.Use(s.metrics.Middleware())

	r.GET("/health", s.handleHealth)
	r.GET("/api/events", s.handleEvents)
	r.GET("/api/calendar", s.handleCalendar)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
