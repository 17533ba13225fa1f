// Package server serves the portfolio page, its JSON endpoints and the
// analytics admin over gin.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/divymav/portfolio/internal/analytics"
	"github.com/divymav/portfolio/internal/config"
	"github.com/divymav/portfolio/internal/content"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// trackTimeout bounds one background analytics write.
const trackTimeout = 5 * time.Second

// Server owns the gin engine and its dependencies.
type Server struct {
	cfg        *config.Config
	content    *content.Content
	store      *analytics.Store
	log        *zap.Logger
	engine     *gin.Engine
	adminToken string

	// background analytics writes
	wg sync.WaitGroup
}

// New wires routes. store may be nil, which disables analytics and the admin.
func New(cfg *config.Config, c *content.Content, store *analytics.Store, log *zap.Logger) (*Server, error) {
	gin.SetMode(cfg.Mode)

	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		content: c,
		store:   store,
		log:     log,
	}

	r := gin.New()
	r.Use(requestLogger(log), gin.Recovery())
	if store != nil && cfg.TrackVisitors {
		r.Use(s.visitorTracking())
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(static))

	r.GET("/", s.index)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/content", s.getContent)
	api.GET("/carousel", s.getCarousel)
	api.GET("/carousel/window", s.getCarouselWindow)
	api.POST("/reveal", s.postReveal)

	if store != nil {
		token, err := analytics.RandomToken()
		if err != nil {
			return nil, err
		}
		s.adminToken = token
		s.setupAdminRoutes(r)
	}

	s.engine = r
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Wait blocks until background analytics writes finish.
func (s *Server) Wait() { s.wg.Wait() }

// Run serves until ctx is cancelled, then shuts down gracefully. Background
// work has finished whenever Run returns, so the store can be closed after it.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.store != nil {
		s.background(func(ctx context.Context) {
			n, err := s.store.Cleanup(ctx, s.cfg.Retention)
			if err != nil {
				s.log.Warn("analytics cleanup failed", zap.Error(err))
				return
			}
			if n > 0 {
				s.log.Info("analytics cleanup", zap.Int64("rows_deleted", n), zap.Duration("retention", s.cfg.Retention))
			}
		})
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", srv.Addr), zap.String("mode", s.cfg.Mode))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	err := srv.Shutdown(shutdownCtx)
	s.Wait()
	return err
}

// background runs fn on its own goroutine with a bounded context.
func (s *Server) background(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
		defer cancel()
		fn(ctx)
	}()
}
