package httpjson

import (
	"net/http"
	"strings"
	"time"

	"github.com/cazala/landgiver/internal/admingate"
	apperrors "github.com/cazala/landgiver/internal/platform/errors"
)

// requireAdmin verifies the bearer grant and passes the grant subject to the
// wrapped handler as the calling principal. Whether that principal holds the
// owner role is the service's decision.
func (s *Server) requireAdmin(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminGate == nil {
			writeErrCode(w, apperrors.CodeInvalidCaller, "admin endpoints are not configured")
			return
		}
		grant := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		claims, err := admingate.Verify(grant, *s.adminGate)
		if err != nil {
			s.serveErr(w, r, err)
			return
		}
		next(w, r, claims.Subject)
	}
}

type setLeaseDurationReq struct {
	Seconds int64 `json:"seconds"`
}

func (s *Server) handleSetLeaseDuration(w http.ResponseWriter, r *http.Request, caller string) {
	var req setLeaseDurationReq
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	duration := time.Duration(req.Seconds) * time.Second
	if err := s.svc.SetLeaseDuration(r.Context(), caller, duration); err != nil {
		s.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type transferOwnershipReq struct {
	NewOwner string `json:"new_owner"`
}

func (s *Server) handleTransferOwnership(w http.ResponseWriter, r *http.Request, caller string) {
	var req transferOwnershipReq
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.svc.TransferOwnership(r.Context(), caller, req.NewOwner); err != nil {
		s.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRenounceOwnership(w http.ResponseWriter, r *http.Request, caller string) {
	if err := s.svc.RenounceOwnership(r.Context(), caller); err != nil {
		s.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
