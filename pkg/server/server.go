// Package server is the HTTP surface of recipebox: the server-rendered
// listing, the live session endpoint, the thin client, metrics and health.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/recipebox/pkg/api"
	"github.com/vango-dev/recipebox/pkg/metrics"
	"github.com/vango-dev/recipebox/pkg/page"
	"github.com/vango-dev/recipebox/pkg/render"
)

// Routes.
const (
	PathIndex   = "/"
	PathSession = "/_ws"
	PathMetrics = "/metrics"
	PathHealth  = "/healthz"
)

// Page assets loaded before the client script.
var (
	StyleSheets = []string{
		"https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css",
		"https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.2/css/all.min.css",
	}
	Scripts = []string{
		"https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/js/bootstrap.bundle.min.js",
	}
)

// FlashUnavailable is shown when the listing cannot be loaded.
var FlashUnavailable = page.Flash{Category: "warning", Message: "Recipes are unavailable right now. Please try again later."}

// Config configures the server.
type Config struct {
	// Address is the listen address, e.g. "localhost:8080".
	Address string

	// Title is the page title (default: "RecipeBox").
	Title string

	// ShutdownTimeout bounds graceful shutdown (default: 10s).
	ShutdownTimeout time.Duration

	// Session configures live sessions.
	Session page.SessionConfig

	// CheckOrigin validates WebSocket origins. Nil uses the gorilla
	// same-origin check.
	CheckOrigin func(r *http.Request) bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets the collectors and the gatherer served on /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithTracerProvider sets the tracer provider for request spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracer = tp.Tracer(TracerName)
	}
}

// Server serves recipebox.
type Server struct {
	config   Config
	backend  *api.Client
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	tracer   trace.Tracer
	upgrader websocket.Upgrader
	logger   *slog.Logger
	router   chi.Router

	// sessionCtx is the parent of every live session; cancelled on Shutdown.
	sessionCtx    context.Context
	cancelSession context.CancelFunc
	sessions      sync.WaitGroup

	mu         sync.Mutex
	httpServer *http.Server
}

// New creates a Server that loads recipes from backend.
func New(config Config, backend *api.Client, opts ...Option) *Server {
	if config.Title == "" {
		config.Title = "RecipeBox"
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		config:   config,
		backend:  backend,
		gatherer: prometheus.DefaultGatherer,
		tracer:   otel.Tracer(TracerName),
		logger:   slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")
	s.sessionCtx, s.cancelSession = context.WithCancel(context.Background())
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.trace)
	r.Use(s.logRequests)

	r.Get(PathIndex, s.handleIndex)
	r.Get(PathSession, s.handleSession)
	r.Get(page.ClientScriptPath, s.handleClientScript)
	r.Get(PathHealth, s.handleHealth)
	r.Method(http.MethodGet, PathMetrics, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// pageNumber reads the ?page= query parameter.
func pageNumber(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// loadListing fetches the requested listing page as the requesting user.
// A failed fetch yields an empty listing with a flash.
func (s *Server) loadListing(r *http.Request, client *api.Client) (*api.RecipePage, []page.Flash) {
	listing, err := client.Recipes(r.Context(), pageNumber(r))
	if err != nil {
		s.logger.Warn("listing unavailable", "error", err, "request_id", middleware.GetReqID(r.Context()))
		return nil, []page.Flash{FlashUnavailable}
	}
	return listing, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	client := s.backend.WithCookies(r.Cookies())
	listing, flashes := s.loadListing(r, client)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := render.RenderPage(w, render.PageData{
		Body:         page.Listing(listing, flashes),
		Title:        s.config.Title,
		StyleSheets:  StyleSheets,
		Scripts:      Scripts,
		ClientScript: page.ClientScriptPath,
	})
	if err != nil {
		s.logger.Error("render page", "error", err)
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	client := s.backend.WithCookies(r.Cookies())
	listing, flashes := s.loadListing(r, client)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.metrics.RecordWSError("upgrade")
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	s.sessions.Add(1)
	defer s.sessions.Done()

	session := page.NewSession(conn, page.BuildDocument(listing, flashes), client, s.config.Session,
		page.WithLogger(s.logger),
		page.WithMetrics(s.metrics),
	)
	if err := session.Run(s.sessionCtx); err != nil {
		s.logger.Error("session ended with error", "session_id", session.ID(), "error", err)
	}
}

func (s *Server) handleClientScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(page.ClientScript)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Run serves on the configured address until ctx is done, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	hs := &http.Server{
		Addr:              s.config.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = hs
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown ends every live session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.cancelSession()

	s.mu.Lock()
	hs := s.httpServer
	s.mu.Unlock()
	if hs != nil {
		if err := hs.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("server shutdown complete")
	return nil
}
