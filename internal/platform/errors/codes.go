// Package errors provides structured, coded error handling for landgiver.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Leasing errors
	CodeAlreadyLeased   Code = "ALREADY_LEASED"
	CodePrincipalEmpty  Code = "PRINCIPAL_EMPTY"
	CodeCoordInvalid    Code = "COORD_INVALID"
	CodeDurationInvalid Code = "DURATION_INVALID"

	// Authorization errors
	CodeInvalidCaller Code = "INVALID_CALLER"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodePrincipalEmpty,
		CodeCoordInvalid,
		CodeDurationInvalid:
		return http.StatusBadRequest

	// Conflict - a lease record already occupies the coordinate
	case CodeAlreadyLeased:
		return http.StatusConflict

	// Forbidden - caller is not the admin principal or the registry
	case CodeInvalidCaller:
		return http.StatusForbidden

	case CodeNotFound:
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}
