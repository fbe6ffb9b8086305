// Package ops serves katamari's operational HTTP surface: liveness,
// Prometheus metrics, and the trim endpoint the chat orchestration loop
// calls on every turn.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/katamari-chat/katamari/internal/config"
	"github.com/katamari-chat/katamari/internal/logging"
	"github.com/katamari-chat/katamari/internal/metrics"
	"github.com/katamari-chat/katamari/internal/retention"
	"github.com/katamari-chat/katamari/internal/schema"
	"github.com/katamari-chat/katamari/internal/trim"
	"github.com/katamari-chat/katamari/internal/usage"
)

// Server wires the trim engine, retention scorer, metrics, and usage
// ledger behind HTTP handlers. It performs no outbound network calls.
type Server struct {
	cfg      *config.Config
	registry trim.EncodingRegistry
	scorer   *retention.Scorer
	metrics  *metrics.Registry
	store    *usage.Store // nil disables usage recording
	requests *logging.Logger
}

func NewServer(
	cfg *config.Config,
	registry trim.EncodingRegistry,
	scorer *retention.Scorer,
	metricsReg *metrics.Registry,
	store *usage.Store,
	requests *logging.Logger,
) *Server {
	return &Server{
		cfg:      cfg,
		registry: registry,
		scorer:   scorer,
		metrics:  metricsReg,
		store:    store,
		requests: requests,
	}
}

// Routes builds the HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("POST /trim", s.handleTrim)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Ops.Port),
		Handler: s.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("ops: listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ops: serve: %w", err)
	}
	return ctx.Err()
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// trimRequest is the wire form of one trim call. Unset fields fall back
// to the configured defaults; min_turns distinguishes "absent" from an
// explicit zero.
type trimRequest struct {
	Session       string               `json:"session"`
	Messages      []schema.WireMessage `json:"messages"`
	TargetTokens  int                  `json:"target_tokens"`
	Model         string               `json:"model"`
	MinTurns      *int                 `json:"min_turns"`
	PriorityRoles []string             `json:"priority_roles"`
}

func (s *Server) handleTrim(w http.ResponseWriter, r *http.Request) {
	var req trimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("decode request: %v", err)})
		return
	}

	opts := trim.Options{
		TargetTokens:  req.TargetTokens,
		Model:         req.Model,
		MinTurns:      s.cfg.Trim.MinTurns,
		PriorityRoles: req.PriorityRoles,
		Registry:      s.registry,
	}
	if opts.TargetTokens <= 0 {
		opts.TargetTokens = s.cfg.Trim.TargetTokens
	}
	if opts.Model == "" {
		opts.Model = s.cfg.Trim.Model
	}
	if req.MinTurns != nil {
		opts.MinTurns = *req.MinTurns
	}
	if opts.PriorityRoles == nil {
		opts.PriorityRoles = s.cfg.Trim.PriorityRoles
	}

	messages := make([]schema.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, m.Message())
	}

	start := time.Now()
	result := trim.Trim(messages, opts)
	result.Metrics.SemanticRetention = s.scorer.Score(messages, result.Messages)
	latency := time.Since(start)

	s.metrics.ObserveTrim(result.Metrics.CompressRatio, result.Metrics.SemanticRetention)
	if s.store != nil {
		err := s.store.Record(r.Context(), req.Session, opts.Model,
			result.Metrics.InputTokens, result.Metrics.OutputTokens, result.Metrics.CompressRatio)
		if err != nil {
			slog.Warn("ops: usage record failed", "err", err)
		}
	}
	s.requests.LogRequest(logging.RequestRecord{
		Session:       req.Session,
		Model:         opts.Model,
		TokensIn:      result.Metrics.InputTokens,
		TokensOut:     result.Metrics.OutputTokens,
		CompressRatio: result.Metrics.CompressRatio,
		Retention:     result.Metrics.SemanticRetention,
		Latency:       latency,
	})

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("ops: write response failed", "err", err)
	}
}
