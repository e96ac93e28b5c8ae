// Package web serves the consumption report as an HTML page.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rangosemfila/consumo/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets/logo.svg
var logoSVG []byte

// Config controls the page server.
type Config struct {
	Addr    string
	BaseURL string // reporting API, shown in /v1/status
}

// Status is served at /v1/status.
type Status struct {
	StartedAt    time.Time        `json:"started_at"`
	BaseURL      string           `json:"base_url"`
	LastRenderAt *time.Time       `json:"last_render_at,omitempty"`
	Renders      map[string]int64 `json:"renders"`
}

// Server renders report pages. Each request gets its own view.
type Server struct {
	cfg     Config
	fetcher view.Fetcher
	metrics *Metrics
	log     *zap.Logger
	engine  *gin.Engine

	mu           sync.RWMutex
	startedAt    time.Time
	lastRenderAt time.Time
	renders      map[string]int64
}

// New returns a page server that fetches reports through f.
// A nil metrics gets a fresh private registry.
func New(cfg Config, f view.Fetcher, metrics *Metrics, log *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:       cfg,
		fetcher:   f,
		metrics:   metrics,
		log:       log,
		startedAt: time.Now(),
		renders:   make(map[string]int64),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.accessLog())

	tmpl := template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
	engine.SetHTMLTemplate(tmpl)

	engine.GET("/", s.handlePage)
	engine.GET("/consumption", s.handlePage)
	engine.GET("/logo.svg", s.handleLogo)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/v1/status", s.handleStatus)
	engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	return engine
}

// Run serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("page server listening", zap.String("addr", s.cfg.Addr), zap.String("api", s.cfg.BaseURL))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("page server: %w", err)
	}
}

type pageData struct {
	Screen view.Screen
	ID     string
}

func (s *Server) handlePage(c *gin.Context) {
	id := c.Query("id")
	v := view.Load(c.Request.Context(), s.fetcher, id, s.log)
	defer v.Unmount()

	for _, date := range c.QueryArray("open") {
		if !v.Expanded(date) {
			v.ToggleDate(date)
		}
	}

	screen := v.Render()
	s.rendered(screen.State)

	status := http.StatusOK
	if screen.State == view.StateNotFound {
		status = http.StatusNotFound
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(status, "page.html", pageData{Screen: screen, ID: v.Identifier()})
}

func (s *Server) handleLogo(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/svg+xml", logoSVG)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.status())
}

func (s *Server) rendered(state view.State) {
	s.metrics.rendered(state)

	s.mu.Lock()
	s.renders[string(state)]++
	s.lastRenderAt = time.Now()
	s.mu.Unlock()
}

func (s *Server) status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	renders := make(map[string]int64, len(s.renders))
	for k, n := range s.renders {
		renders[k] = n
	}
	st := Status{
		StartedAt: s.startedAt,
		BaseURL:   s.cfg.BaseURL,
		Renders:   renders,
	}
	if !s.lastRenderAt.IsZero() {
		last := s.lastRenderAt
		st.LastRenderAt = &last
	}
	return st
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
