package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/stargraph/pkg/engine"
	"github.com/matzehuels/stargraph/pkg/observability/prom"
	"github.com/matzehuels/stargraph/pkg/pipeline"
)

// Server is the HTTP host.
type Server struct {
	cfg      Config
	log      *log.Logger
	fetcher  pipeline.Fetcher
	metrics  *prom.Collector
	sessions *Registry
	validate *validator.Validate
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics serves c at /metrics and records request metrics into it.
func WithMetrics(c *prom.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithFetcher enables the users route and auto-expansion.
func WithFetcher(f pipeline.Fetcher) Option {
	return func(s *Server) { s.fetcher = f }
}

// New creates a server. Call Handler to mount it or ListenAndServe to run
// it standalone.
func New(cfg Config, opts ...Option) *Server {
	cfg.setDefaults()
	s := &Server{
		cfg:      cfg,
		log:      log.Default(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sessions = NewRegistry(cfg, s.log)
	if cfg.AutoExpand && s.fetcher != nil {
		s.sessions.OnClickRepo = s.expand
	}
	return s
}

// Sessions returns the session registry.
func (s *Server) Sessions() *Registry { return s.sessions }

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/ingest", s.ingest)
			r.Post("/users/{login}", s.fetchUser)
			r.Post("/click", s.click)
			r.Post("/viewport", s.viewport)
			r.Post("/resize", s.resize)
			r.Get("/scene", s.sceneJSON)
			r.Get("/scene.svg", s.sceneSVG)
			r.Get("/graph", s.graph)
			r.Get("/events", s.events)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// and closes every session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sessions.Run(sweepCtx)

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.sessions.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.sessions.Close()
	return err
}

// Close closes every session.
func (s *Server) Close() error {
	s.sessions.Close()
	return nil
}

// expand is the server-side host reaction to click-repo. It runs on the
// session's loop goroutine, so the fetch happens on its own goroutine and
// the result is submitted back through the loop.
func (s *Server) expand(sess *Session, ev engine.ClickRepo) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		u, err := s.fetcher.FetchUser(ctx, ev.Username, s.cfg.First, false)
		if err != nil {
			s.log.Warn("expand owner", "session", sess.ID, "login", ev.Username, "err", err)
			return
		}
		if err := sess.loop.Ingest(ctx, u); err != nil && !errors.Is(err, engine.ErrClosed) {
			s.log.Warn("ingest owner", "session", sess.ID, "login", ev.Username, "err", err)
		}
	}()
}
