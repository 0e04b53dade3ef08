package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/regard"
)

// runServe starts the baseline gallery: a JSON listing of stored baselines
// plus the images themselves, for local review of captures and diffs.
func runServe(ctx context.Context, logger *slog.Logger, cfg *regard.Config, eng *regard.Engine, addr string) int {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Get("/api/baselines", func(w http.ResponseWriter, req *http.Request) {
		entries, err := eng.Store().List(req.Context())
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, map[string]any{"baselines": entries})
	})

	r.Get("/baselines/{file}", serveImage(cfg.BaselineDir))
	r.Get("/results/{file}", serveImage(cfg.ResultsDir))
	r.Get("/diffs/{file}", serveImage(cfg.DiffDir))

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gallery starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("gallery", "error", err)
		return exitError
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("gallery stopped")
	return exitOK
}

// serveImage serves PNG files from a single directory. The file name is
// flattened with Base so the route cannot address outside the directory.
func serveImage(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		name := filepath.Base(chi.URLParam(req, "file"))
		if !strings.HasSuffix(name, ".png") {
			http.NotFound(w, req)
			return
		}
		http.ServeFile(w, req, filepath.Join(dir, name))
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
