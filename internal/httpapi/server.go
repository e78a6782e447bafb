// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httpapi exposes the session over HTTP with gin: JSON endpoints for
// the view, filters and annotations, and a websocket feed of view changes.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/research-radar/internal/gateway"
	"github.com/pdiddy/research-radar/internal/session"
	"github.com/pdiddy/research-radar/internal/view"
	"github.com/pdiddy/research-radar/pkg/types"
)

const shutdownTimeout = 10 * time.Second

// Session is the user-facing surface served by the API. *session.Session
// implements it.
type Session interface {
	View() session.Snapshot
	Entity(id string) (types.ResearchEntity, bool)
	Criteria() types.FilterCriteria
	UpdateFilters(patch types.CriteriaPatch) (session.Snapshot, error)
	ResetFilters() session.Snapshot
	RefreshData(ctx context.Context) (session.Snapshot, gateway.IngestSummary)
	ToggleStar(ctx context.Context, id string) (session.Snapshot, error)
	ToggleInterest(ctx context.Context, id string) (session.Snapshot, error)
	ToggleRead(ctx context.Context, id string) (session.Snapshot, error)
	SetUserScore(ctx context.Context, id string, score int) (session.Snapshot, error)
	Stats() view.Stats
	Subscribe() (<-chan session.Snapshot, func())
}

// Server serves the API on the configured address.
type Server struct {
	cfg     types.ServerConfig
	handler http.Handler
	log     *zap.Logger
}

// NewServer builds the handler tree over sess.
func NewServer(cfg types.ServerConfig, sess Session, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "httpapi"))
	return &Server{cfg: cfg, handler: NewHandler(cfg, sess, log), log: log}
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// wsPath is the websocket feed. It is served by net/http directly because
// the connection must be hijacked before anything is written.
const wsPath = "/api/ws"

// NewHandler routes the websocket feed to net/http and everything else to
// the gin router.
func NewHandler(cfg types.ServerConfig, sess Session, log *zap.Logger) http.Handler {
	h := newHandler(cfg, sess, log)
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+wsPath, h.stream)
	mux.Handle("/", newRouter(cfg, h))
	return mux
}

// NewRouter registers the JSON routes on a fresh gin engine.
func NewRouter(cfg types.ServerConfig, sess Session, log *zap.Logger) *gin.Engine {
	return newRouter(cfg, newHandler(cfg, sess, log))
}

func newHandler(cfg types.ServerConfig, sess Session, log *zap.Logger) *handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &handler{session: sess, log: log, originPatterns: originPatterns(cfg.CORSOrigins)}
}

func newRouter(cfg types.ServerConfig, h *handler) *gin.Engine {
	sess := h.session
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.log))
	if c, ok := corsConfig(cfg.CORSOrigins); ok {
		router.Use(cors.New(c))
	}

	router.GET("/healthz", h.health)

	api := router.Group("/api")
	{
		api.GET("/items", h.items)
		api.GET("/items/:id", h.item)
		api.POST("/items/:id/star", h.toggle(sess.ToggleStar))
		api.POST("/items/:id/interest", h.toggle(sess.ToggleInterest))
		api.POST("/items/:id/read", h.toggle(sess.ToggleRead))
		api.PUT("/items/:id/score", h.score)

		api.GET("/filters", h.filters)
		api.PATCH("/filters", h.updateFilters)
		api.DELETE("/filters", h.resetFilters)

		api.POST("/refresh", h.refresh)
		api.GET("/stats", h.stats)
	}
	return router
}

// corsConfig builds the CORS policy. No origins disables the middleware;
// "*" allows every origin.
func corsConfig(origins []string) (cors.Config, bool) {
	if len(origins) == 0 {
		return cors.Config{}, false
	}
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c, true
		}
	}
	c.AllowOrigins = origins
	return c, true
}

// originPatterns turns CORS origins into websocket origin host patterns.
func originPatterns(origins []string) []string {
	var out []string
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
			continue
		}
		out = append(out, strings.TrimSpace(o))
	}
	return out
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
