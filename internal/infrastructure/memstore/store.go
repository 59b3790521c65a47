// Package memstore is the in-process customer collection: a mutex-guarded
// document map with snapshot push to subscribers and optional JSON file
// persistence. It backs development setups and tests; production deployments
// use the postgres adapter.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/repository"
)

var _ repository.CustomerCollection = (*Store)(nil)

const subscriberBuffer = 8

// Store holds the documents. Every write broadcasts a full snapshot to all
// subscribers; a slow subscriber keeps only the latest snapshot.
type Store struct {
	persister *Persistence // nil disables persistence

	mu      sync.Mutex
	docs    map[string]map[string]any
	subs    map[int]chan entity.Snapshot
	nextSub int
	closed  bool
	wg      sync.WaitGroup
}

// New builds a store, loading existing documents from the persister when one
// is given.
func New(persister *Persistence) (*Store, error) {
	docs := make(map[string]map[string]any)
	if persister != nil {
		loaded, err := persister.Load()
		if err != nil {
			return nil, err
		}
		docs = loaded
	}
	return &Store{
		persister: persister,
		docs:      docs,
		subs:      make(map[int]chan entity.Snapshot),
	}, nil
}

// Subscribe registers a listener and immediately delivers the current
// snapshot (the initial load counts as one notification). The channel closes
// when ctx is done or the store closes.
func (s *Store) Subscribe(ctx context.Context) (<-chan entity.Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, domain.ErrStoreClosed
	}
	id := s.nextSub
	s.nextSub++
	ch := make(chan entity.Snapshot, subscriberBuffer)
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
		s.mu.Unlock()
	}()

	return ch, nil
}

// Set writes a document. With merge, the named fields are merged into an
// existing document; otherwise the document is replaced whole.
func (s *Store) Set(ctx context.Context, id string, fields map[string]any, merge bool) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrStoreClosed
	}
	doc := s.docs[id]
	if doc == nil || !merge {
		doc = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		doc[k] = v
	}
	s.docs[id] = doc
	s.afterWriteLocked()
	s.mu.Unlock()
	return nil
}

// Update applies a partial field map to an existing document.
func (s *Store) Update(ctx context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrStoreClosed
	}
	doc, ok := s.docs[id]
	if !ok {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	s.afterWriteLocked()
	s.mu.Unlock()
	return nil
}

// Delete removes a document. Deleting an absent id is a no-op and does not
// notify.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrStoreClosed
	}
	if _, ok := s.docs[id]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.docs, id)
	s.afterWriteLocked()
	s.mu.Unlock()
	return nil
}

// Close stops broadcasting, closes subscriber channels and waits for pending
// persistence writes.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// afterWriteLocked broadcasts the new snapshot and schedules persistence.
// Must be called with s.mu held.
func (s *Store) afterWriteLocked() {
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Buffer full: drop the oldest pending snapshot so the
			// subscriber always ends up with the latest state.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}

	if s.persister != nil {
		docs := s.copyDocsLocked()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.persister.Save(docs); err != nil {
				log.Error().Err(err).Msg("persist customer collection")
			}
		}()
	}
}

// snapshotLocked builds a deep-copied snapshot ordered by id, so identical
// store states always produce identical snapshots. Must hold s.mu.
func (s *Store) snapshotLocked() entity.Snapshot {
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	snap := make(entity.Snapshot, 0, len(ids))
	for _, id := range ids {
		fields := make(map[string]any, len(s.docs[id]))
		for k, v := range s.docs[id] {
			fields[k] = v
		}
		snap = append(snap, entity.Document{ID: id, Fields: fields})
	}
	return snap
}

// copyDocsLocked deep-copies the document map for background persistence.
// Must hold s.mu.
func (s *Store) copyDocsLocked() map[string]map[string]any {
	docs := make(map[string]map[string]any, len(s.docs))
	for id, doc := range s.docs {
		cp := make(map[string]any, len(doc))
		for k, v := range doc {
			cp[k] = v
		}
		docs[id] = cp
	}
	return docs
}
