package httpjson

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	apperrors "github.com/cazala/landgiver/internal/platform/errors"
)

// custodyAckToken is the fixed acknowledgment the registry expects from a
// valid custody recipient.
const custodyAckToken = "0xf0b9e5ba"

// registrySecretHeader carries the shared secret on registry callbacks.
const registrySecretHeader = "X-Landgiver-Registry-Secret"

type custodyAcceptReq struct {
	Operator string `json:"operator"`
	From     string `json:"from"`
	TokenID  string `json:"token_id"`
	Data     string `json:"data,omitempty"`
}

// handleCustodyAccept is the callback the registry invokes when it transfers
// a parcel into this system's custody. It only validates the caller and
// acknowledges; it never touches the ledger.
func (s *Server) handleCustodyAccept(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get(registrySecretHeader)
	if s.registrySecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(s.registrySecret)) != 1 {
		writeErrCode(w, apperrors.CodeInvalidCaller, "custody callback sender is not the registry")
		return
	}

	var req custodyAcceptReq
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if _, err := strconv.ParseUint(req.TokenID, 10, 64); err != nil {
		writeBadRequest(w, "token_id must be an unsigned integer")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"ack": custodyAckToken})
}
