// Package registrytest provides an in-memory registry adapter for tests.
package registrytest

import (
	"context"
	"sync"

	"github.com/cazala/landgiver/internal/leasing/domain"
	"github.com/cazala/landgiver/internal/registry"
)

// Fake is an in-memory registry.Adapter. Holdings are returned in the order
// the coordinates were added, matching registry enumeration order semantics.
type Fake struct {
	mu        sync.Mutex
	tokens    []uint64
	operators map[uint64]string

	// UpdateOperatorErr, when set, is returned by every UpdateOperator call.
	UpdateOperatorErr error
}

// NewFake creates a fake registry custodying the given coordinates.
func NewFake(coords ...domain.Coordinate) *Fake {
	f := &Fake{operators: make(map[uint64]string)}
	for _, coord := range coords {
		f.tokens = append(f.tokens, registry.EncodeTokenID(coord))
	}
	return f
}

// Add appends a coordinate to the custodied inventory.
func (f *Fake) Add(coord domain.Coordinate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, registry.EncodeTokenID(coord))
}

// Holdings returns the custodied token IDs in insertion order.
func (f *Fake) Holdings(ctx context.Context) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint64, len(f.tokens))
	copy(out, f.tokens)
	return out, nil
}

// UpdateOperator records the delegate assignment.
func (f *Fake) UpdateOperator(ctx context.Context, tokenID uint64, operator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateOperatorErr != nil {
		return f.UpdateOperatorErr
	}
	if operator == "" {
		delete(f.operators, tokenID)
		return nil
	}
	f.operators[tokenID] = operator
	return nil
}

// Operator returns the recorded delegate for a coordinate, or "".
func (f *Fake) Operator(coord domain.Coordinate) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.operators[registry.EncodeTokenID(coord)]
}

var _ registry.Adapter = (*Fake)(nil)
