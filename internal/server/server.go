// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stibata/crudgen/internal/activity"
	"github.com/stibata/crudgen/internal/handler"
	"github.com/stibata/crudgen/internal/wizard"
)

// Config holds server configuration.
type Config struct {
	Port      int
	DataDir   string
	OutputDir string
}

// sessionMaxAge and sessionIdleTimeout bound how long an uploaded database
// sticks around on disk.
const (
	sessionMaxAge      = 24 * time.Hour
	sessionIdleTimeout = 30 * time.Minute
	cleanupInterval    = 5 * time.Minute
)

// Run starts the HTTP server with all routes registered. It blocks until
// ctx is canceled, then shuts down gracefully.
func Run(ctx context.Context, cfg Config) error {
	sessions := wizard.NewManager(sessionMaxAge, sessionIdleTimeout)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	h := handler.New(sessions, activity.NewMemoryStore(), cfg.DataDir, cfg.OutputDir)
	h.RegisterRoutes(r)
	handler.RegisterUI(r)

	// Expired sessions leave uploaded files behind; sweep them.
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions.Cleanup()
			}
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("starting server on %s", addr)

	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
