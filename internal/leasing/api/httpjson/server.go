// Package httpjson exposes the leasing service over a JSON HTTP surface.
//
// Lease mutations carry the caller principal in the request body; admin
// endpoints authenticate through bearer grants verified by the admin gate;
// the custody callback authenticates with the registry's shared secret.
package httpjson

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cazala/landgiver/internal/admingate"
	"github.com/cazala/landgiver/internal/leasing"
	apperrors "github.com/cazala/landgiver/internal/platform/errors"
)

// Config wires the HTTP surface.
type Config struct {
	Service *leasing.Service
	Logger  zerolog.Logger
	// AdminGate verifies admin bearer grants. When nil the admin endpoints
	// reject every call.
	AdminGate *admingate.Config
	// RegistrySecret authenticates custody callbacks from the registry.
	RegistrySecret string
}

// Server is the leasing HTTP API.
type Server struct {
	svc            *leasing.Service
	logger         zerolog.Logger
	adminGate      *admingate.Config
	registrySecret string
	mux            *http.ServeMux
}

// NewServer builds the API and registers its routes.
func NewServer(cfg Config) *Server {
	s := &Server{
		svc:            cfg.Service,
		logger:         cfg.Logger,
		adminGate:      cfg.AdminGate,
		registrySecret: cfg.RegistrySecret,
		mux:            http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the server's root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.mux.HandleFunc("POST /v1/leases/{coord}/acquire", s.handleAcquire)
	s.mux.HandleFunc("POST /v1/leases/{coord}/reclaim", s.handleReclaim)
	s.mux.HandleFunc("POST /v1/leases/{coord}/return", s.handleReturn)
	s.mux.HandleFunc("GET /v1/leases/{coord}", s.handleGetLease)

	s.mux.HandleFunc("GET /v1/land/available", s.handleAvailableLand)
	s.mux.HandleFunc("GET /v1/land/rented", s.handleRentedLand)
	s.mux.HandleFunc("GET /v1/land/reclaimable", s.handleReclaimableLand)

	s.mux.HandleFunc("GET /v1/events", s.handleListEvents)

	s.mux.HandleFunc("PUT /v1/admin/lease-duration", s.requireAdmin(s.handleSetLeaseDuration))
	s.mux.HandleFunc("POST /v1/admin/transfer", s.requireAdmin(s.handleTransferOwnership))
	s.mux.HandleFunc("POST /v1/admin/renounce", s.requireAdmin(s.handleRenounceOwnership))

	s.mux.HandleFunc("POST /v1/custody/accept", s.handleCustodyAccept)
}

type contextKey string

const requestIDKey contextKey = "request_id"

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		logger := s.logger.With().Str("request_id", requestID).Logger()
		ctx := context.WithValue(logger.WithContext(r.Context()), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request ID middleware attached, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// serveErr logs unexpected failures under the request ID, then writes the
// error response.
func (s *Server) serveErr(w http.ResponseWriter, r *http.Request, err error) {
	if apperrors.CodeOf(err) == apperrors.CodeUnknown {
		s.logger.Error().Err(err).
			Str("request_id", RequestIDFromContext(r.Context())).
			Msg("request failed")
	}
	writeErr(w, err)
}
