// Package backend serves the dashboard REST API over the login and game
// databases.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/nhath/gamedash/internal/db"
)

// DefaultPageSize is used when a search omits page_size
const DefaultPageSize = 30

// Config holds configuration for the API server.
type Config struct {
	Addr string
	// Login is the database holding the user and server tables
	Login *db.Catalog
	// OpenGame connects to one game database by name
	OpenGame OpenFunc

	UserTable     string
	ServerTable   string
	GamePrefix    string
	PlayerTable   string
	BackpackTable string

	Logger *slog.Logger
}

// Server is the API server.
type Server struct {
	addr   string
	login  *db.Catalog
	games  *gameRegistry
	tokens *tokenRegistry
	logger *slog.Logger

	userTable     string
	serverTable   string
	prefix        string
	playerTable   string
	backpackTable string
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		addr:          cfg.Addr,
		login:         cfg.Login,
		tokens:        newTokenRegistry(),
		logger:        logger,
		userTable:     cfg.UserTable,
		serverTable:   cfg.ServerTable,
		prefix:        cfg.GamePrefix,
		playerTable:   cfg.PlayerTable,
		backpackTable: cfg.BackpackTable,
	}
	s.games = newGameRegistry(cfg.OpenGame, s.knownDatabase, logger)
	return s
}

// Handler returns the routed API
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(s.logger),
		middleware.Recoverer,
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Post("/token", s.handleToken)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/logout", s.handleLogout)
		r.Get("/users/me", s.handleMe)
		r.Get("/tables", s.handleTables)
		r.Get("/table/{name}/columns", s.handleTableColumns)
		r.Get("/table/{name}", s.handleTableData)
		r.Get("/servers", s.handleServers)

		r.Get("/player/columns/{db}", s.handleGameColumns(s.playerTable))
		r.Get("/player/{db}", s.handleGameSearch(s.playerTable))
		r.Get("/backpack/columns/{db}", s.handleGameColumns(s.backpackTable))
		r.Get("/backpack/{db}", s.handleGameSearch(s.backpackTable))
	})
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting API server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		err := srv.Shutdown(shutdownCtx)
		s.games.Close()
		return err
	})

	return eg.Wait()
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"elapsed", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
