// Package api provides the HTTP surface for Hookbridge: the public inbound
// webhook endpoint and the admin provisioning API for room connections.
//
// Handler serves both on a stdlib mux; ForgeAPI registers the admin routes
// into a Forge router with OpenAPI metadata. Mounting under a prefix is the
// caller's (or the extension's) concern.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/xraph/hookbridge"
)

// Handler is the root HTTP handler for the Hookbridge API.
type Handler struct {
	bridge *hookbridge.Bridge
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewHandler creates a new API handler.
func NewHandler(b *hookbridge.Bridge, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		bridge: b,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	// Service discovery
	h.mux.HandleFunc("GET /service", h.serviceInfo)

	// Inbound webhooks
	h.mux.HandleFunc("POST /webhook/{hookID}", h.handleWebhook)
	h.mux.HandleFunc("PUT /webhook/{hookID}", h.handleWebhook)

	// Connection provisioning
	h.mux.HandleFunc("PUT /rooms/{roomID}/connections", h.createConnection)
	h.mux.HandleFunc("GET /rooms/{roomID}/connections", h.listConnections)
	h.mux.HandleFunc("GET /rooms/{roomID}/connections/{stateKey}", h.getConnection)
	h.mux.HandleFunc("PATCH /rooms/{roomID}/connections/{stateKey}", h.updateConnection)
	h.mux.HandleFunc("DELETE /rooms/{roomID}/connections/{stateKey}", h.deleteConnection)

	// Recent webhook log
	h.mux.HandleFunc("GET /rooms/{roomID}/connections/{stateKey}/events", h.listRecentEvents)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.withMiddleware(h.mux).ServeHTTP(w, r)
}

func (h *Handler) withMiddleware(next http.Handler) http.Handler {
	return h.panicRecovery(h.logging(next))
}

func (h *Handler) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		h.logger.Info("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (h *Handler) panicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic recovered",
					"error", rec,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// JSON helpers.

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best effort
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// queryInt returns a query parameter as int or a default value.
func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	var n int
	for _, c := range v {
		if c < '0' || c > '9' {
			return defaultVal
		}
		n = n*10 + int(c-'0')
	}
	return n
}
