// Package serving exposes the production model over HTTP: predictions,
// health, and an authenticated reload hook the promotion flow pings after
// moving the champion pointer.
package serving

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/champlabs/champ/internal/evaluate"
	"github.com/champlabs/champ/internal/registry"
)

// activeModel is the immutable pair served between reloads. Swaps go
// through an atomic pointer so in-flight predictions keep the version they
// started with.
type activeModel struct {
	predictor evaluate.Predictor
	version   int
}

// Server serves the current production model of one registered model name.
type Server struct {
	registry    registry.Client
	model       string
	reloadToken string
	logger      *slog.Logger

	active atomic.Pointer[activeModel]
}

// Config configures a Server. Registry and Model are required. An empty
// ReloadToken leaves the reload endpoint open, which is only sensible on a
// private network.
type Config struct {
	Registry    registry.Client
	Model       string
	ReloadToken string
	Logger      *slog.Logger
}

// NewServer builds a Server. Call LoadProduction before serving traffic.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		registry:    cfg.Registry,
		model:       cfg.Model,
		reloadToken: cfg.ReloadToken,
		logger:      logger,
	}
}

// LoadProduction resolves the current champion and swaps it in.
func (s *Server) LoadProduction(ctx context.Context) error {
	champ, err := s.registry.ResolveChampion(ctx, s.model)
	if err != nil {
		return fmt.Errorf("serving: resolving champion of %s: %w", s.model, err)
	}
	if champ == nil {
		return fmt.Errorf("serving: %s has no production version", s.model)
	}
	p, err := s.registry.LoadPredictor(ctx, s.model, champ.Version)
	if err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	s.active.Store(&activeModel{predictor: p, version: champ.Version})
	s.logger.Info("loaded production model", slog.String("model", s.model), slog.Int("version", champ.Version))
	return nil
}

// Version returns the currently served version, or 0 before the first
// load.
func (s *Server) Version() int {
	if m := s.active.Load(); m != nil {
		return m.version
	}
	return 0
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("POST /reload", s.handleReload)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	m := s.active.Load()
	if m == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "no model loaded")
		return
	}

	var req struct {
		Features [][]float64 `json:"features"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("parsing request: %v", err))
		return
	}
	if len(req.Features) == 0 {
		writeJSONError(w, http.StatusBadRequest, "features must be a non-empty array of rows")
		return
	}

	preds, err := m.predictor.Predict(req.Features)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"predictions":   preds,
		"model_version": m.version,
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reloadToken != "" {
		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.reloadToken)) != 1 {
			writeJSONError(w, http.StatusUnauthorized, "invalid reload token")
			return
		}
	}

	if err := s.LoadProduction(r.Context()); err != nil {
		s.logger.Error("reload failed", slog.Any("error", err))
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "reloaded",
		"model_version": s.Version(),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	m := s.active.Load()
	if m == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "no model loaded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"model":         s.model,
		"model_version": m.version,
	})
}

// ListenAndServe serves until ctx is cancelled, then drains connections.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("serving", slog.String("addr", addr), slog.String("model", s.model))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
