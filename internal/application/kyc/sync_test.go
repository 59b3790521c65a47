package kyc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/kyc"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/infrastructure/memstore"
	"github.com/kobamelo-johnson/Letshego-Analytics/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "test", Level: "error"})
}

func TestSyncController_ApplyBuildsOrderedView(t *testing.T) {
	ctrl := kyc.NewSyncController(nil, testLogger(), time.UTC)
	assert.False(t, ctrl.Ready())
	assert.Nil(t, ctrl.Current())

	ctrl.Apply(sampleSnapshot())

	require.True(t, ctrl.Ready())
	view := ctrl.Current()
	require.NotNil(t, view)
	assert.Equal(t, "ID2", view.Records[0].ID, "view holds the ordered record set")
	assert.Equal(t, 3, view.Summary.Total)
	assert.Equal(t, 1, view.Summary.PIPAlerts)
	require.Len(t, view.Daily, 1)
	assert.Equal(t, "05/01/2026", view.Daily[0].Label)
	assert.Len(t, view.Documents, 5)
}

func TestSyncController_ViewsAreSwappedNotMutated(t *testing.T) {
	ctrl := kyc.NewSyncController(nil, testLogger(), time.UTC)
	ctrl.Apply(sampleSnapshot())
	old := ctrl.Current()

	ctrl.Apply(entity.Snapshot{})

	// A reader holding the old pointer keeps a consistent view.
	assert.Equal(t, 3, old.Summary.Total)
	assert.Equal(t, 0, ctrl.Current().Summary.Total)
	assert.NotSame(t, old, ctrl.Current())
}

// flakyCollection fails the first Subscribe calls before delegating to the
// in-memory store, like a backend that is briefly unreachable at startup.
type flakyCollection struct {
	store *memstore.Store

	mu       sync.Mutex
	failures int
	err      error
}

func (f *flakyCollection) Subscribe(ctx context.Context) (<-chan entity.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return nil, f.err
	}
	return f.store.Subscribe(ctx)
}

func (f *flakyCollection) Set(ctx context.Context, id string, fields map[string]any, merge bool) error {
	return f.store.Set(ctx, id, fields, merge)
}

func (f *flakyCollection) Update(ctx context.Context, id string, fields map[string]any) error {
	return f.store.Update(ctx, id, fields)
}

func (f *flakyCollection) Delete(ctx context.Context, id string) error {
	return f.store.Delete(ctx, id)
}

// A failed subscription must be retried and surfaced through LastError until
// the first snapshot lands, then cleared.
func TestSyncController_RetriesAfterSubscribeFailure(t *testing.T) {
	store, err := memstore.New(nil)
	require.NoError(t, err)
	defer store.Close()

	subErr := errors.New("listener unavailable")
	coll := &flakyCollection{store: store, failures: 1, err: subErr}
	ctrl := kyc.NewSyncController(coll, testLogger(), time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	require.Eventually(t, func() bool {
		return errors.Is(ctrl.LastError(), subErr)
	}, time.Second, 5*time.Millisecond)
	assert.False(t, ctrl.Ready(), "no view before the first snapshot")

	// The retry kicks in after the backoff interval; the next subscribe
	// succeeds, a snapshot is applied and the error clears.
	require.Eventually(t, ctrl.Ready, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return ctrl.LastError() == nil
	}, time.Second, 5*time.Millisecond)
}

// A lost snapshot channel must also surface: closing the store ends the
// subscription, and the controller records the loss while keeping the last
// published view readable.
func TestSyncController_SurfacesLostSubscription(t *testing.T) {
	store, err := memstore.New(nil)
	require.NoError(t, err)

	ctrl := kyc.NewSyncController(store, testLogger(), time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)
	require.Eventually(t, ctrl.Ready, time.Second, 5*time.Millisecond)

	store.Close()

	require.Eventually(t, func() bool {
		return ctrl.LastError() != nil
	}, time.Second, 5*time.Millisecond)
	assert.True(t, ctrl.Ready(), "the last view stays available while degraded")
}

// End to end against the in-memory collection: every write produces a fresh
// view without any explicit refresh call.
func TestSyncController_RunFollowsCollectionWrites(t *testing.T) {
	store, err := memstore.New(nil)
	require.NoError(t, err)
	defer store.Close()

	ctrl := kyc.NewSyncController(store, testLogger(), time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	// Initial (empty) snapshot counts as one notification.
	require.Eventually(t, ctrl.Ready, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, ctrl.Current().Summary.Total)

	require.NoError(t, store.Set(ctx, "ID1", map[string]any{
		entity.FieldPIPStatus: "Flagged",
		entity.FieldCreatedAt: "2026-01-05T10:00:00Z",
	}, false))

	require.Eventually(t, func() bool {
		return ctrl.Current().Summary.Total == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, ctrl.Current().Summary.PIPAlerts)

	require.NoError(t, store.Delete(ctx, "ID1"))
	require.Eventually(t, func() bool {
		return ctrl.Current().Summary.Total == 0
	}, time.Second, 5*time.Millisecond)
}
