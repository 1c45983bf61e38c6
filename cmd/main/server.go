package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/CTAG07/charkov/pkg/corpus"
)

// Server wires the API handlers to a shared corpus store.
type Server struct {
	config    *Config
	store     *corpus.Store
	logger    *slog.Logger
	authAPI   *AuthAPI
	modelAPI  *ModelAPI
	corpusAPI *CorpusAPI
	mux       *http.ServeMux
}

// NewServer creates the API server. When a default corpus is configured a
// model named "default" is built from it before the server starts.
func NewServer(ctx context.Context, config *Config, logger *slog.Logger, db *sql.DB, store *corpus.Store) (*Server, error) {
	s := &Server{
		config:    config,
		store:     store,
		logger:    logger,
		authAPI:   NewAuthAPI(db, config.Server.APIKey, logger),
		modelAPI:  NewModelAPI(store, config.Model, config.Server, logger),
		corpusAPI: NewCorpusAPI(store, config.Server.MaxBodyBytes, logger),
		mux:       http.NewServeMux(),
	}

	apiMux := http.NewServeMux()
	s.authAPI.RegisterRoutes(apiMux)
	s.modelAPI.RegisterRoutes(apiMux)
	s.corpusAPI.RegisterRoutes(apiMux)

	// Make sure api functions must pass through authentication first
	s.mux.Handle("/api/", s.authAPI.Authenticate(apiMux))
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": Version})
	})

	if config.Model.Corpus != "" {
		req := CreateModelRequest{
			Name:         "default",
			WindowLength: config.Model.WindowLength,
			Seed:         config.Model.Seed,
			Corpus:       config.Model.Corpus,
		}
		if _, err := s.modelAPI.create(ctx, req); err != nil {
			return nil, fmt.Errorf("failed to build default model from corpus '%s': %w", config.Model.Corpus, err)
		}
		logger.Info("Default model ready", "corpus", config.Model.Corpus)
	}

	return s, nil
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// runServe hosts the HTTP API until ctx is cancelled, then shuts it down
// gracefully.
func (a *app) runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	addr := fs.String("addr", a.cfg.Server.Addr, "address to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, store, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() {
		store.Close()
		a.logger.Info("Closing database connection.")
		if err := db.Close(); err != nil {
			a.logger.Error("Failed to close database", "error", err)
		}
	}()

	server, err := NewServer(ctx, a.cfg, a.logger, db, store)
	if err != nil {
		return fmt.Errorf("failed to create server object: %w", err)
	}

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("Starting api server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err = <-serveErr:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Stopping server for shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Api server shutdown failed", "error", err)
	}
	a.logger.Info("HTTP server stopped.")
	return nil
}
