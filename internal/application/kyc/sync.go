package kyc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/repository"
	"github.com/kobamelo-johnson/Letshego-Analytics/pkg/logger"
)

const (
	syncRetryMin = time.Second
	syncRetryMax = 30 * time.Second
)

// DashboardView is one immutable derived snapshot of the collection: the
// ordered record set plus every aggregation the dashboard renders. A view is
// never mutated after publication; readers hold whichever pointer they
// loaded.
type DashboardView struct {
	Records   []entity.Customer // newest first
	Summary   Summary
	Daily     []DailyBucket
	Documents []DocumentCount
	SyncedAt  time.Time
}

// SyncController subscribes to the customer collection and rebuilds the
// dashboard view on every snapshot. It is the only writer of the view; all
// readers take the current pointer. A lost or failed subscription is retried
// with capped exponential backoff and surfaced through LastError/Ready.
type SyncController struct {
	coll repository.CustomerCollection
	log  *logger.Logger
	loc  *time.Location

	view atomic.Pointer[DashboardView]

	mu      sync.Mutex
	lastErr error
}

// NewSyncController builds the controller. loc is the day-bucketing zone;
// nil means UTC.
func NewSyncController(coll repository.CustomerCollection, log *logger.Logger, loc *time.Location) *SyncController {
	if loc == nil {
		loc = time.UTC
	}
	return &SyncController{coll: coll, log: log, loc: loc}
}

// Run consumes snapshots until ctx is done. It blocks and is meant to be
// started as its own goroutine from main.
func (s *SyncController) Run(ctx context.Context) {
	backoff := syncRetryMin
	for {
		applied, err := s.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		if applied > 0 {
			backoff = syncRetryMin
		}
		s.setLastError(err)
		s.log.Error().Err(err).Dur("retry_in", backoff).Msg("customer subscription lost, retrying")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > syncRetryMax {
			backoff = syncRetryMax
		}
	}
}

// consume subscribes once and applies snapshots until the channel closes or
// ctx is done. Returns how many snapshots were applied in this session.
func (s *SyncController) consume(ctx context.Context) (int, error) {
	ch, err := s.coll.Subscribe(ctx)
	if err != nil {
		return 0, fmt.Errorf("subscribe: %w", err)
	}
	applied := 0
	for snap := range ch {
		s.Apply(snap)
		applied++
	}
	return applied, errors.New("snapshot channel closed")
}

// Apply replaces the dashboard view with one derived from snap: normalize,
// order newest-first, aggregate, swap.
func (s *SyncController) Apply(snap entity.Snapshot) {
	records := NormalizeSnapshot(snap)
	SortNewestFirst(records)

	view := &DashboardView{
		Records:   records,
		Summary:   Summarize(records),
		Daily:     DailyHistogram(records, s.loc),
		Documents: DocumentHistogram(records),
		SyncedAt:  time.Now(),
	}
	s.view.Store(view)
	s.setLastError(nil)
	s.log.Debug().Int("records", len(records)).Msg("dashboard view rebuilt")
}

// Current returns the latest view, or nil before the first snapshot arrives.
func (s *SyncController) Current() *DashboardView {
	return s.view.Load()
}

// Ready reports whether at least one snapshot has been applied.
func (s *SyncController) Ready() bool {
	return s.view.Load() != nil
}

// Location returns the day-bucketing zone.
func (s *SyncController) Location() *time.Location {
	return s.loc
}

// LastError returns the most recent subscription error, nil while healthy.
func (s *SyncController) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *SyncController) setLastError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}
