package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/leadwizard"
	"github.com/aretw0/leadwizard/pkg/chat"
	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// MaxBodyBytes limits the size of a /chat request body.
	MaxBodyBytes = 64 << 10

	// HeaderSessionID carries the session id when the body omits it.
	HeaderSessionID = "X-Session-ID"
)

// ChatService handles one chat turn.
type ChatService interface {
	Handle(ctx context.Context, req chat.Request) (chat.Response, error)
}

// SessionResetter is implemented by services that can drop a session.
type SessionResetter interface {
	Reset(ctx context.Context, sessionID string) error
}

// Server holds the HTTP handlers.
type Server struct {
	Chat        ChatService
	logger      *slog.Logger
	gatherer    prometheus.Gatherer
	middlewares []func(http.Handler) http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer exposes the gatherer's metrics on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithMiddleware adds middlewares (authentication, rate limiting) in front of every route.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		s.middlewares = append(s.middlewares, mw...)
	}
}

// NewHandler creates a new HTTP handler for the chat service.
func NewHandler(svc ChatService, opts ...Option) http.Handler {
	server := &Server{Chat: svc}
	for _, opt := range opts {
		opt(server)
	}
	if server.logger == nil {
		server.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(server.middlewares...)

	r.Post("/chat", server.PostChat)
	if _, ok := svc.(SessionResetter); ok {
		r.Delete("/sessions/{session_id}", server.DeleteSession)
	}
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	if server.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, "+HeaderSessionID)
		w.Header().Set("Access-Control-Expose-Headers", HeaderSessionID)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Lead Wizard API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// ButtonView is a button in the widget's wire format.
type ButtonView struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// ChatResponse is the body of a successful POST /chat.
type ChatResponse struct {
	SessionID string       `json:"session_id"`
	Text      string       `json:"text"`
	Reply     string       `json:"reply"`
	NodeID    string       `json:"node_id,omitempty"`
	Buttons   []ButtonView `json:"buttons,omitempty"`
	LeadID    int64        `json:"lead_id,omitempty"`
	Completed bool         `json:"completed,omitempty"`
}

// PostChat handles the POST /chat request.
func (s *Server) PostChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "Invalid JSON format in request body")
		s.logger.Warn("chat: invalid JSON body")
		return
	}

	fieldErrs, err := chat.ValidateRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format in request body")
		return
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": fieldErrs})
		return
	}

	var req chat.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format in request body")
		return
	}

	if req.SessionID == "" {
		req.SessionID = strings.TrimSpace(r.Header.Get(HeaderSessionID))
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	resp, err := s.Chat.Handle(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			s.logger.Warn("chat: input rejected", "session_id", req.SessionID, "err", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal error")
		s.logger.Error("chat failed", "session_id", req.SessionID, "err", err)
		return
	}

	out := ChatResponse{
		SessionID: resp.SessionID,
		Text:      resp.Text,
		Reply:     resp.Text,
		NodeID:    resp.NodeID,
		LeadID:    resp.LeadID,
		Completed: resp.Completed,
	}
	for _, b := range resp.Buttons {
		out.Buttons = append(out.Buttons, ButtonView{Text: b.Label, Value: b.Value})
	}

	w.Header().Set(HeaderSessionID, resp.SessionID)
	writeJSON(w, http.StatusOK, out)
}

// DeleteSession handles the DELETE /sessions/{session_id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "session_id"))
	err := s.Chat.(SessionResetter).Reset(r.Context(), sessionID)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSessionDeleteUnsupported):
		writeError(w, http.StatusNotImplemented, "Session reset is not supported by this store")
	default:
		writeError(w, http.StatusInternalServerError, "Internal error")
		s.logger.Error("session reset failed", "session_id", sessionID, "err", err)
	}
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	} else if err != nil {
		s.logger.Error("failed to load OpenAPI document", "err", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "leadwizard-http",
		"version":     strings.TrimSpace(leadwizard.Version),
		"api_version": apiVersion,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
