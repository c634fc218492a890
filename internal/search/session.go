package search

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/placement-engine/internal/query"
	"github.com/jonathan/placement-engine/internal/store"
	"github.com/jonathan/placement-engine/internal/types"
)

// debounceDelay is the quiet window after a term or filter change before the
// live subscription is replaced, to avoid subscription churn on rapid typing.
const debounceDelay = 300 * time.Millisecond

// ResultFunc receives every recomputed result set of a live session.
type ResultFunc func(*types.ResultSet)

// Session is one consumer's live search: a debounced, self-replacing
// subscription over the active (collection, term, filters) state. All
// derived fields are recomputed on every delivered snapshot.
type Session struct {
	svc *Service
	ctx context.Context
	fn  ResultFunc

	role         string
	viewerSkills []string

	mu         sync.Mutex
	collection string
	term       string
	filters    query.FilterValues
	sortBy     string
	sortDesc   bool

	// gen invalidates in-flight deliveries and superseded resubscribes.
	gen       int
	handle    store.Handle
	hasHandle bool
	timer     *time.Timer
	results   []types.SearchResult
	closed    bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithViewerSkills sets the searching person's skills for skill-match
// annotation.
func WithViewerSkills(skills []string) SessionOption {
	return func(s *Session) { s.viewerSkills = skills }
}

// NewSession opens a live search session for a role. The initial collection
// is the first one the role may search; the first snapshot is delivered after
// the debounce window.
func (s *Service) NewSession(ctx context.Context, role string, fn ResultFunc, opts ...SessionOption) (*Session, error) {
	available := s.cfg.AvailableCollections(role)
	if len(available) == 0 {
		return nil, &ErrUnknownScope{Role: role}
	}

	sess := &Session{
		svc:        s,
		ctx:        ctx,
		fn:         fn,
		role:       role,
		collection: available[0].Key,
	}
	for _, opt := range opts {
		opt(sess)
	}

	sess.mu.Lock()
	sess.scheduleLocked()
	sess.mu.Unlock()
	return sess, nil
}

// UpdateQuery replaces the active term and filters. The resubscribe is
// debounced; only the most recent state after the quiet window is honored.
func (sess *Session) UpdateQuery(term string, filters query.FilterValues) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	sess.term = term
	sess.filters = filters
	sess.scheduleLocked()
}

// SwitchCollection changes the active collection, resetting term and filters
// and clearing held results atomically with respect to the previous
// collection's subscription: its generation is invalidated before the clear is
// delivered, so no late snapshot from the old collection can surface.
func (sess *Session) SwitchCollection(key string) error {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return nil
	}
	if sess.svc.cfg.CollectionConfig(sess.role, key) == nil {
		sess.mu.Unlock()
		return &ErrUnknownScope{Role: sess.role, Collection: key}
	}

	sess.collection = key
	sess.term = ""
	sess.filters = nil
	sess.sortBy = ""
	sess.sortDesc = false
	sess.results = nil
	sess.gen++
	handle, hadHandle := sess.detachHandleLocked()
	if sess.timer != nil {
		sess.timer.Stop()
		sess.timer = nil
	}
	fn := sess.fn
	sess.mu.Unlock()

	if hadHandle {
		sess.svc.manager.Cancel(handle)
	}
	fn(&types.ResultSet{Items: []types.SearchResult{}})

	sess.resubscribe()
	return nil
}

// SetSort re-sorts the currently held result set in place without
// re-querying, then redelivers it.
func (sess *Session) SetSort(field string, desc bool) {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return
	}
	sess.sortBy = field
	sess.sortDesc = desc
	SortResults(sess.results, field, desc)
	rs := &types.ResultSet{Items: sess.results, TotalCount: len(sess.results)}
	fn := sess.fn
	sess.mu.Unlock()

	fn(rs)
}

// Suggestions returns filter guidance for the currently held results.
func (sess *Session) Suggestions() []string {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return FilterSuggestions(len(sess.results), sess.term, sess.filters)
}

// Close tears the session down, cancelling its live subscription. It is
// idempotent; no result is delivered after Close returns.
func (sess *Session) Close() {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return
	}
	sess.closed = true
	sess.gen++
	if sess.timer != nil {
		sess.timer.Stop()
		sess.timer = nil
	}
	handle, hadHandle := sess.detachHandleLocked()
	sess.mu.Unlock()

	if hadHandle {
		sess.svc.manager.Cancel(handle)
	}
}

// scheduleLocked (re)arms the debounce timer. Caller holds sess.mu.
func (sess *Session) scheduleLocked() {
	if sess.timer != nil {
		sess.timer.Stop()
	}
	sess.timer = time.AfterFunc(debounceDelay, sess.resubscribe)
}

// detachHandleLocked takes ownership of the active handle, if any. Caller
// holds sess.mu; the actual Cancel happens outside the lock.
func (sess *Session) detachHandleLocked() (store.Handle, bool) {
	if !sess.hasHandle {
		return store.Handle{}, false
	}
	sess.hasHandle = false
	return sess.handle, true
}

// resubscribe replaces the live subscription with one matching the current
// session state. A superseded subscription is always cancelled, never left
// running.
func (sess *Session) resubscribe() {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return
	}
	sess.gen++
	gen := sess.gen
	role := sess.role
	collection := sess.collection
	filters := sess.filters
	oldHandle, hadOld := sess.detachHandleLocked()
	sess.mu.Unlock()

	if hadOld {
		sess.svc.manager.Cancel(oldHandle)
	}

	constraints, order := query.Build(sess.svc.cfg, role, collection, filters)
	handle, err := sess.svc.manager.Subscribe(sess.ctx, role, collection, constraints, order,
		func(records []types.Record, err error) {
			sess.deliver(gen, records, err)
		})
	if err != nil {
		sess.deliver(gen, nil, err)
		return
	}

	sess.mu.Lock()
	if sess.closed || sess.gen != gen {
		sess.mu.Unlock()
		sess.svc.manager.Cancel(handle)
		return
	}
	sess.handle = handle
	sess.hasHandle = true
	sess.mu.Unlock()
}

// deliver recomputes the result set from a snapshot and hands it to the
// consumer, unless the generation has been superseded.
func (sess *Session) deliver(gen int, records []types.Record, err error) {
	sess.mu.Lock()
	if sess.closed || gen != sess.gen {
		sess.mu.Unlock()
		return
	}

	if err != nil {
		sess.results = nil
		fn := sess.fn
		sess.mu.Unlock()
		fn(&types.ResultSet{Items: []types.SearchResult{}, Err: err})
		return
	}

	cc := sess.svc.cfg.CollectionConfig(sess.role, sess.collection)
	req := Request{
		Role:         sess.role,
		Collection:   sess.collection,
		Term:         sess.term,
		Filters:      sess.filters,
		SortBy:       sess.sortBy,
		SortDesc:     sess.sortDesc,
		ViewerSkills: sess.viewerSkills,
	}
	rs := sess.svc.evaluate(records, cc, req)
	sess.results = rs.Items
	fn := sess.fn
	sess.mu.Unlock()

	fn(rs)
}
