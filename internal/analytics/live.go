package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonathan/placement-engine/internal/query"
	"github.com/jonathan/placement-engine/internal/store"
	"github.com/jonathan/placement-engine/internal/types"
)

// DashboardFunc receives every recomputed dashboard.
type DashboardFunc func(*types.Dashboard)

// Live is the analytics-path consumer: it subscribes to the three source
// collections and recomputes the whole dashboard from scratch whenever any of
// them changes. Partial updates are deliberately not attempted.
type Live struct {
	manager *store.Manager
	logger  *slog.Logger
	fn      DashboardFunc
	clock   func() time.Time

	mu           sync.Mutex
	students     []types.Student
	internships  []types.Internship
	applications []types.Application
	lastErr      error
	handles      []store.Handle
	closed       bool
}

// LiveOption configures a Live consumer.
type LiveOption func(*Live)

// WithLiveLogger sets a custom logger. Default is slog.Default().
func WithLiveLogger(logger *slog.Logger) LiveOption {
	return func(l *Live) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the time source used for trend bucketing.
func WithClock(clock func() time.Time) LiveOption {
	return func(l *Live) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// NewLive opens unconstrained subscriptions on the three collections and
// delivers a fresh dashboard to fn on every change. Callers must Close it on
// teardown.
func NewLive(ctx context.Context, manager *store.Manager, fn DashboardFunc, opts ...LiveOption) (*Live, error) {
	l := &Live{
		manager: manager,
		logger:  slog.Default(),
		fn:      fn,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	order := query.DefaultOrder()
	collections := []string{types.CollectionStudents, types.CollectionInternships, types.CollectionApplications}
	for _, collection := range collections {
		collection := collection
		handle, err := manager.Subscribe(ctx, "analytics", collection, nil, order,
			func(records []types.Record, err error) {
				l.onSnapshot(collection, records, err)
			})
		if err != nil {
			l.Close()
			return nil, err
		}
		l.mu.Lock()
		l.handles = append(l.handles, handle)
		l.mu.Unlock()
	}
	return l, nil
}

// onSnapshot replaces one collection's held snapshot and recomputes.
func (l *Live) onSnapshot(collection string, records []types.Record, err error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	if err != nil {
		// The failed panel degrades to its last known state; other
		// collections keep the dashboard alive.
		l.logger.Warn("analytics snapshot failed", "collection", collection, "err", err)
		l.lastErr = err
		l.mu.Unlock()
		return
	}
	l.lastErr = nil

	switch collection {
	case types.CollectionStudents:
		l.students = l.students[:0]
		for _, r := range records {
			if st, ok := r.(types.Student); ok {
				l.students = append(l.students, st)
			}
		}
	case types.CollectionInternships:
		l.internships = l.internships[:0]
		for _, r := range records {
			if in, ok := r.(types.Internship); ok {
				l.internships = append(l.internships, in)
			}
		}
	case types.CollectionApplications:
		l.applications = l.applications[:0]
		for _, r := range records {
			if ap, ok := r.(types.Application); ok {
				l.applications = append(l.applications, ap)
			}
		}
	}

	dashboard := ComputeDashboard(l.students, l.internships, l.applications, l.clock())
	fn := l.fn
	l.mu.Unlock()

	fn(dashboard)
}

// Err returns the most recent store error, if the last delivery failed.
func (l *Live) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Close cancels the three collection subscriptions. Idempotent.
func (l *Live) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	handles := l.handles
	l.handles = nil
	l.mu.Unlock()

	for _, h := range handles {
		l.manager.Cancel(h)
	}
}
