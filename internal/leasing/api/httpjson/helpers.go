package httpjson

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cazala/landgiver/internal/leasing/domain"
	apperrors "github.com/cazala/landgiver/internal/platform/errors"
)

const timeLayout = time.RFC3339Nano

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func readJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErrCode(w http.ResponseWriter, code apperrors.Code, message string) {
	writeJSON(w, code.HTTPStatus(), errorBody{Error: errorDetail{
		Code:    string(code),
		Message: message,
	}})
}

// writeErr maps a service error to its HTTP status. Unknown codes get a
// generic message so internal details stay out of responses.
func writeErr(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	message := err.Error()
	if code == apperrors.CodeUnknown {
		message = "internal error"
	}
	writeErrCode(w, code, message)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
		Code:    "INVALID_ARGUMENT",
		Message: message,
	}})
}

type leaseBody struct {
	X         int32  `json:"x"`
	Y         int32  `json:"y"`
	Lessee    string `json:"lessee,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Status    string `json:"status,omitempty"`
}

func leaseToBody(record domain.LeaseRecord, status domain.Status) leaseBody {
	body := leaseBody{
		X:      record.Coord.X,
		Y:      record.Coord.Y,
		Lessee: record.Lessee,
		Status: string(status),
	}
	if !record.ExpiresAt.IsZero() {
		body.ExpiresAt = record.ExpiresAt.UTC().Format(timeLayout)
	}
	return body
}

// pathCoord parses the {coord} path segment in its canonical "x,y" form.
func pathCoord(r *http.Request) (domain.Coordinate, error) {
	return domain.ParseCoordinate(r.PathValue("coord"))
}
