package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/placement-engine/internal/query"
	"github.com/jonathan/placement-engine/internal/types"
)

// Handle identifies a live subscription owned by the Manager.
type Handle = uuid.UUID

// SnapshotFunc receives every snapshot of a subscription. On store failure it
// is called with an empty record list and the error; it is never called again
// after Cancel for its handle has returned.
type SnapshotFunc func(records []types.Record, err error)

// Manager tracks at most one live subscription per logical
// (collection, role, constraint-set) key. Opening a new subscription for a key
// with an active one first cancels the prior one.
type Manager struct {
	store  Store
	logger *slog.Logger

	mu       sync.Mutex
	byKey    map[string]*subscription
	byHandle map[Handle]*subscription
	closed   bool
}

type subscription struct {
	handle Handle
	key    string
	cancel CancelFunc

	// deliverMu serializes deliveries against cancellation so that no
	// snapshot reaches the consumer after Cancel returns.
	deliverMu sync.Mutex
	stopped   bool
	stop      chan struct{}
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a subscription manager over the given store.
func NewManager(s Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    s,
		logger:   slog.Default(),
		byKey:    make(map[string]*subscription),
		byHandle: make(map[Handle]*subscription),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe opens a live subscription for (role, collection, constraints) and
// delivers every snapshot to fn until the handle is cancelled. A prior
// subscription with the same logical key is cancelled first.
func (m *Manager) Subscribe(ctx context.Context, role, collection string, constraints []query.Constraint, order query.Order, fn SnapshotFunc) (Handle, error) {
	key := query.Fingerprint(collection, role, constraints)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return uuid.Nil, context.Canceled
	}
	prior, hadPrior := m.byKey[key]
	if hadPrior {
		m.removeLocked(prior)
	}
	m.mu.Unlock()
	if hadPrior {
		prior.stopDelivery()
	}

	ch, cancel, err := m.store.Subscribe(ctx, collection, constraints, order)
	if err != nil {
		return uuid.Nil, &StoreUnavailableError{Collection: collection, Cause: err}
	}

	sub := &subscription{
		handle: uuid.New(),
		key:    key,
		cancel: cancel,
		stop:   make(chan struct{}),
	}

	m.mu.Lock()
	m.byKey[key] = sub
	m.byHandle[sub.handle] = sub
	m.mu.Unlock()

	go m.deliver(sub, collection, ch, fn)

	return sub.handle, nil
}

// deliver pumps snapshots from the store channel to the consumer callback.
func (m *Manager) deliver(sub *subscription, collection string, ch <-chan Snapshot, fn SnapshotFunc) {
	for {
		select {
		case <-sub.stop:
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			sub.deliverMu.Lock()
			if sub.stopped {
				sub.deliverMu.Unlock()
				return
			}
			if snap.Err != nil {
				m.logger.Warn("store delivered error; forwarding empty snapshot",
					"collection", collection, "err", snap.Err)
				fn([]types.Record{}, &StoreUnavailableError{Collection: collection, Cause: snap.Err})
			} else {
				fn(snap.Records, nil)
			}
			sub.deliverMu.Unlock()
		}
	}
}

// Cancel stops the subscription for a handle. Cancelling an unknown or
// already-cancelled handle is a no-op. Once Cancel returns, the handle's
// callback receives no further snapshots.
func (m *Manager) Cancel(handle Handle) {
	m.mu.Lock()
	sub, ok := m.byHandle[handle]
	if ok {
		m.removeLocked(sub)
	}
	m.mu.Unlock()
	if ok {
		sub.stopDelivery()
	}
}

// removeLocked unregisters a subscription. Caller holds m.mu. Delivery is
// stopped outside the manager lock so a consumer callback can re-enter the
// manager without deadlocking.
func (m *Manager) removeLocked(sub *subscription) {
	delete(m.byHandle, sub.handle)
	if m.byKey[sub.key] == sub {
		delete(m.byKey, sub.key)
	}
}

// stopDelivery marks the subscription stopped and cancels the store stream.
// After it returns, the consumer callback will not run again.
func (s *subscription) stopDelivery() {
	s.deliverMu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.stop)
	}
	s.deliverMu.Unlock()
	s.cancel()
}

// ActiveCount returns the number of live subscriptions.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byHandle)
}

// Close cancels every live subscription. Leaking an open subscription past
// consumer teardown is a correctness bug, so callers defer Close.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	subs := make([]*subscription, 0, len(m.byHandle))
	for _, sub := range m.byHandle {
		subs = append(subs, sub)
	}
	m.byHandle = make(map[Handle]*subscription)
	m.byKey = make(map[string]*subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.stopDelivery()
	}
}
