// Package store defines the live collection store contract and the
// subscription manager that tracks live queries against it.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/placement-engine/internal/query"
	"github.com/jonathan/placement-engine/internal/types"
)

// ErrUnknownCollection is returned for collection names outside the three
// known collections.
var ErrUnknownCollection = errors.New("unknown collection")

// StoreUnavailableError wraps an underlying store failure. Consumers recover
// from it locally by showing an empty result set with a non-fatal error flag.
type StoreUnavailableError struct {
	Collection string
	Cause      error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable for collection %s: %v", e.Collection, e.Cause)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Cause }

// Snapshot is a complete, point-in-time list of records satisfying a
// subscription's constraints, delivered on every underlying change. Err is the
// side channel for store failures; a snapshot with Err set carries no records.
type Snapshot struct {
	Records []types.Record
	Err     error
}

// CancelFunc stops a subscription. It is idempotent and safe to call after
// the stream has ended.
type CancelFunc func()

// Store is the external live collection store the engine queries and
// subscribes to.
type Store interface {
	// Subscribe opens a live query. The returned channel yields a complete
	// snapshot on every change, starting with the current state. The channel
	// is closed after cancellation.
	Subscribe(ctx context.Context, collection string, constraints []query.Constraint, order query.Order) (<-chan Snapshot, CancelFunc, error)

	// FetchAll is a one-shot, non-subscribing read of a whole collection,
	// used to derive dynamic filter option lists.
	FetchAll(ctx context.Context, collection string) ([]types.Record, error)
}
