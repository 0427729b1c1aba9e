// Package registry adapts the external parcel registry that custodies the
// land inventory.
//
// The registry owns the assets; this service only holds delegate rights
// bookkeeping. The adapter exposes inventory enumeration and delegate-right
// assignment; the coordinate codec mirrors the registry's token packing.
package registry

import (
	"context"
)

// Adapter is the capability surface the leasing core consumes.
type Adapter interface {
	// Holdings enumerates the token IDs currently custodied by this system,
	// in registry enumeration order.
	Holdings(ctx context.Context) ([]uint64, error)
	// UpdateOperator assigns delegate rights over a parcel to the given
	// principal. An empty operator revokes any delegate.
	UpdateOperator(ctx context.Context, tokenID uint64, operator string) error
}
