package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/placement-engine/internal/query"
	"github.com/jonathan/placement-engine/internal/types"
)

// MemStore is an in-memory Store. It backs the one-shot CLI mode and tests,
// and evaluates constraints in process on every change.
type MemStore struct {
	mu          sync.Mutex
	collections map[string]map[uuid.UUID]types.Record
	order       map[string][]uuid.UUID // insertion order per collection
	subscribers map[int]*memSubscriber
	nextSubID   int
}

type memSubscriber struct {
	collection  string
	constraints []query.Constraint
	order       query.Order
	ch          chan Snapshot
	stopped     bool
}

// NewMemStore creates an empty in-memory store with the three known
// collections.
func NewMemStore() *MemStore {
	s := &MemStore{
		collections: make(map[string]map[uuid.UUID]types.Record),
		order:       make(map[string][]uuid.UUID),
		subscribers: make(map[int]*memSubscriber),
	}
	for _, name := range []string{types.CollectionStudents, types.CollectionInternships, types.CollectionApplications} {
		s.collections[name] = make(map[uuid.UUID]types.Record)
	}
	return s
}

// Put inserts or replaces a record and notifies matching subscribers.
func (s *MemStore) Put(r types.Record) {
	s.mu.Lock()
	coll, ok := s.collections[r.Collection()]
	if !ok {
		s.mu.Unlock()
		return
	}
	if _, exists := coll[r.RecordID()]; !exists {
		s.order[r.Collection()] = append(s.order[r.Collection()], r.RecordID())
	}
	coll[r.RecordID()] = r
	s.notifyLocked(r.Collection())
	s.mu.Unlock()
}

// Delete removes a record and notifies matching subscribers.
func (s *MemStore) Delete(collection string, id uuid.UUID) {
	s.mu.Lock()
	coll, ok := s.collections[collection]
	if !ok {
		s.mu.Unlock()
		return
	}
	if _, exists := coll[id]; exists {
		delete(coll, id)
		ids := s.order[collection]
		for i, oid := range ids {
			if oid == id {
				s.order[collection] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		s.notifyLocked(collection)
	}
	s.mu.Unlock()
}

// Subscribe implements Store. The initial snapshot is delivered immediately.
func (s *MemStore) Subscribe(_ context.Context, collection string, constraints []query.Constraint, order query.Order) (<-chan Snapshot, CancelFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection]; !ok {
		return nil, nil, ErrUnknownCollection
	}

	sub := &memSubscriber{
		collection:  collection,
		constraints: constraints,
		order:       order,
		ch:          make(chan Snapshot, 1),
	}
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = sub

	sub.send(Snapshot{Records: s.snapshotLocked(sub)})

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			if cur, ok := s.subscribers[id]; ok && cur == sub {
				delete(s.subscribers, id)
				sub.stopped = true
				close(sub.ch)
			}
			s.mu.Unlock()
		})
	}
	return sub.ch, cancel, nil
}

// FetchAll implements Store.
func (s *MemStore) FetchAll(_ context.Context, collection string) ([]types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.collections[collection]
	if !ok {
		return nil, ErrUnknownCollection
	}
	out := make([]types.Record, 0, len(coll))
	for _, id := range s.order[collection] {
		out = append(out, coll[id])
	}
	return out, nil
}

// snapshotLocked evaluates a subscriber's constraints against the current
// collection state. Caller holds s.mu.
func (s *MemStore) snapshotLocked(sub *memSubscriber) []types.Record {
	coll := s.collections[sub.collection]
	all := make([]types.Record, 0, len(coll))
	for _, id := range s.order[sub.collection] {
		all = append(all, coll[id])
	}
	return query.Apply(all, sub.constraints, sub.order)
}

// notifyLocked pushes a fresh snapshot to every subscriber of the collection.
// Caller holds s.mu.
func (s *MemStore) notifyLocked(collection string) {
	for _, sub := range s.subscribers {
		if sub.collection == collection && !sub.stopped {
			sub.send(Snapshot{Records: s.snapshotLocked(sub)})
		}
	}
}

// send delivers with replace-on-change semantics: a pending undelivered
// snapshot is dropped in favor of the newer one.
func (sub *memSubscriber) send(snap Snapshot) {
	for {
		select {
		case sub.ch <- snap:
			return
		default:
			select {
			case <-sub.ch:
			default:
			}
		}
	}
}
