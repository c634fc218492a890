package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/placement-engine/internal/query"
	"github.com/jonathan/placement-engine/internal/search"
	"github.com/jonathan/placement-engine/internal/store"
)

// Config holds server configuration
type Config struct {
	Port           int
	DatabaseURL    string
	RedisAddr      string
	RoleConfigPath string
	OptionTTL      time.Duration
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	store      store.Store
	closeStore func()
	svc        *search.Service
	options    *store.OptionCache
	logger     *slog.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	roleCfg := query.DefaultConfig()
	if cfg.RoleConfigPath != "" {
		loaded, err := query.LoadConfig(cfg.RoleConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load role config: %w", err)
		}
		roleCfg = loaded
	}

	pg, err := store.ConnectPostgres(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	optionOpts := []store.OptionCacheOption{}
	if cfg.RedisAddr != "" {
		optionOpts = append(optionOpts, store.WithRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})))
	}
	if cfg.OptionTTL > 0 {
		optionOpts = append(optionOpts, store.WithOptionTTL(cfg.OptionTTL))
	}

	s := &Server{
		store:      pg,
		closeStore: pg.Close,
		svc:        search.NewService(roleCfg, pg),
		options:    store.NewOptionCache(pg, optionOpts...),
		logger:     slog.Default(),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(s.routes())),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // long timeout for SSE streams
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes wires the handler table.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /collections", s.handleCollections)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /search/stream", s.handleSearchStream)
	mux.HandleFunc("GET /search/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /filters/options", s.handleFilterOptions)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("GET /export", s.handleExport)
	return mux
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-stop:
		case <-ctx.Done():
		}
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()

	s.svc.Close()
	s.closeStore()
	s.logger.Info("server stopped")
	return err
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging logs each request with its duration
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path,
			"duration_ms", time.Since(started).Milliseconds())
	})
}
