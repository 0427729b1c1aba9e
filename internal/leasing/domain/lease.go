// Package domain holds the leasing ledger's core types and state predicates.
//
// A parcel is identified by a signed coordinate pair. Its lease record is
// never deleted: clearing a lease resets the lessee to the empty sentinel and
// the expiry to the zero time, which is indistinguishable from a parcel that
// was never leased.
package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/cazala/landgiver/internal/platform/errors"
)

// DefaultLeaseDuration is the lease term applied until the admin changes it.
const DefaultLeaseDuration = 86400 * time.Second

// Coordinate is the stable identity of a parcel.
type Coordinate struct {
	X int32
	Y int32
}

// String renders the coordinate in its canonical "x,y" form.
func (c Coordinate) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// ParseCoordinate parses the canonical "x,y" form.
func ParseCoordinate(value string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(value), ",")
	if len(parts) != 2 {
		return Coordinate{}, apperrors.New(apperrors.CodeCoordInvalid, fmt.Sprintf("malformed coordinate %q", value))
	}
	x, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 32)
	if err != nil {
		return Coordinate{}, apperrors.Wrap(apperrors.CodeCoordInvalid, fmt.Sprintf("malformed coordinate %q", value), err)
	}
	y, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 32)
	if err != nil {
		return Coordinate{}, apperrors.Wrap(apperrors.CodeCoordInvalid, fmt.Sprintf("malformed coordinate %q", value), err)
	}
	return Coordinate{X: int32(x), Y: int32(y)}, nil
}

// LeaseRecord is the ledger entry for one coordinate. A zero-value record
// (empty lessee) means the parcel carries no active or historical claim.
type LeaseRecord struct {
	Coord     Coordinate
	Lessee    string
	ExpiresAt time.Time
}

// Leased reports whether any lease record occupies the coordinate,
// regardless of expiry.
func (r LeaseRecord) Leased() bool {
	return r.Lessee != ""
}

// Rented reports whether the record holds an unexpired lease.
func (r LeaseRecord) Rented(now time.Time) bool {
	return r.Leased() && r.ExpiresAt.After(now)
}

// Reclaimable reports whether the record holds an expired, uncollected lease.
func (r LeaseRecord) Reclaimable(now time.Time) bool {
	return r.Leased() && !r.ExpiresAt.After(now)
}

// Status describes the derived state of a parcel at an instant.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusRented      Status = "RENTED"
	StatusReclaimable Status = "RECLAIMABLE"
)

// StatusAt derives the parcel status from the record. The three states are
// pairwise disjoint by construction.
func (r LeaseRecord) StatusAt(now time.Time) Status {
	switch {
	case !r.Leased():
		return StatusAvailable
	case r.ExpiresAt.After(now):
		return StatusRented
	default:
		return StatusReclaimable
	}
}

// ValidatePrincipal normalizes and validates a principal identifier.
func ValidatePrincipal(principal string) (string, error) {
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return "", apperrors.New(apperrors.CodePrincipalEmpty, "principal is required")
	}
	return principal, nil
}
