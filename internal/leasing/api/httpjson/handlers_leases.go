package httpjson

import (
	"net/http"
	"strconv"

	"github.com/cazala/landgiver/internal/leasing/domain"
	"github.com/cazala/landgiver/internal/leasing/storage"
)

type acquireReq struct {
	Caller      string `json:"caller"`
	Beneficiary string `json:"beneficiary,omitempty"`
}

func (s *Server) handleAcquire(w http.ResponseWriter, r *http.Request) {
	coord, err := pathCoord(r)
	if err != nil {
		s.serveErr(w, r, err)
		return
	}
	var req acquireReq
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	lease, err := s.svc.Acquire(r.Context(), req.Caller, req.Beneficiary, coord)
	if err != nil {
		s.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leaseToBody(lease, domain.StatusRented))
}

type applyResp struct {
	Applied bool      `json:"applied"`
	Lease   leaseBody `json:"lease"`
}

func (s *Server) handleReclaim(w http.ResponseWriter, r *http.Request) {
	coord, err := pathCoord(r)
	if err != nil {
		s.serveErr(w, r, err)
		return
	}
	result, err := s.svc.Reclaim(r.Context(), coord)
	if err != nil {
		s.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, applyResp{
		Applied: result.Applied,
		Lease:   leaseToBody(result.Lease, ""),
	})
}

type returnReq struct {
	Caller string `json:"caller"`
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	coord, err := pathCoord(r)
	if err != nil {
		s.serveErr(w, r, err)
		return
	}
	var req returnReq
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	result, err := s.svc.Return(r.Context(), req.Caller, coord)
	if err != nil {
		s.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, applyResp{
		Applied: result.Applied,
		Lease:   leaseToBody(result.Lease, ""),
	})
}

func (s *Server) handleGetLease(w http.ResponseWriter, r *http.Request) {
	coord, err := pathCoord(r)
	if err != nil {
		s.serveErr(w, r, err)
		return
	}
	record, status, err := s.svc.Lease(r.Context(), coord)
	if err != nil {
		s.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leaseToBody(record, status))
}

type landResp struct {
	X []int32 `json:"x"`
	Y []int32 `json:"y"`
}

func (s *Server) handleAvailableLand(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.AvailableLand(r.Context())
	if err != nil {
		s.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, landResp{X: emptyNotNil(view.X), Y: emptyNotNil(view.Y)})
}

func (s *Server) handleRentedLand(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.RentedLand(r.Context())
	if err != nil {
		s.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, landResp{X: emptyNotNil(view.X), Y: emptyNotNil(view.Y)})
}

func (s *Server) handleReclaimableLand(w http.ResponseWriter, r *http.Request) {
	_, count, err := s.svc.ReclaimableLand(r.Context())
	if err != nil {
		s.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func emptyNotNil(values []int32) []int32 {
	if values == nil {
		return []int32{}
	}
	return values
}

type eventBody struct {
	Seq         int64  `json:"seq"`
	ID          string `json:"id"`
	Type        string `json:"type"`
	X           int32  `json:"x"`
	Y           int32  `json:"y"`
	Beneficiary string `json:"beneficiary"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}

type eventsResp struct {
	Events        []eventBody `json:"events"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

const (
	defaultEventPageSize = 50
	maxEventPageSize     = 500
)

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	pageSize := defaultEventPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "page_size must be a positive integer")
			return
		}
		pageSize = min(parsed, maxEventPageSize)
	}

	page, err := s.svc.Events(r.Context(), pageSize, r.URL.Query().Get("page_token"))
	if err != nil {
		s.serveErr(w, r, err)
		return
	}
	resp := eventsResp{
		Events:        make([]eventBody, 0, len(page.Events)),
		NextPageToken: page.NextPageToken,
	}
	for _, evt := range page.Events {
		resp.Events = append(resp.Events, eventToBody(evt))
	}
	writeJSON(w, http.StatusOK, resp)
}

func eventToBody(evt storage.AuditEvent) eventBody {
	body := eventBody{
		Seq:         evt.Seq,
		ID:          evt.ID,
		Type:        string(evt.Type),
		X:           evt.Coord.X,
		Y:           evt.Coord.Y,
		Beneficiary: evt.Beneficiary,
		OccurredAt:  evt.OccurredAt.UTC().Format(timeLayout),
	}
	if !evt.ExpiresAt.IsZero() {
		body.ExpiresAt = evt.ExpiresAt.UTC().Format(timeLayout)
	}
	return body
}
