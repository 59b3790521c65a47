package kyc_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/kyc"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"
)

// fixture: two records on the same day (one flagged), one without a
// timestamp.
func sampleSnapshot() entity.Snapshot {
	return entity.Snapshot{
		{ID: "ID1", Fields: map[string]any{
			"created_at": "2026-01-05T10:00:00Z",
			"pip_status": "None",
			"full_name":  "Thabo Kgosi",
		}},
		{ID: "ID2", Fields: map[string]any{
			"created_at": "2026-01-05T12:00:00Z",
			"pip_status": "Flagged",
		}},
		{ID: "ID3", Fields: map[string]any{
			"full_name": "No Date",
		}},
	}
}

func TestNormalizeSnapshot_ParsesFieldsAndDropsDuplicates(t *testing.T) {
	snap := sampleSnapshot()
	// Duplicate and empty ids must be dropped, first occurrence wins.
	snap = append(snap, entity.Document{ID: "ID1", Fields: map[string]any{"full_name": "Impostor"}})
	snap = append(snap, entity.Document{ID: "", Fields: map[string]any{"full_name": "Ghost"}})

	records := kyc.NormalizeSnapshot(snap)
	require.Len(t, records, 3)

	assert.Equal(t, "Thabo Kgosi", records[0].FullName, "first occurrence of ID1 must win")
	assert.True(t, records[0].HasTimestamp())
	assert.Equal(t, "2026-01-05T10:00:00Z", records[0].CreatedAtRaw)
	assert.False(t, records[2].HasTimestamp(), "absent created_at must parse to the zero time")
}

func TestNormalize_UnparsableTimestamp(t *testing.T) {
	c := kyc.Normalize(entity.Document{ID: "IDX", Fields: map[string]any{"created_at": "yesterday-ish"}})
	assert.False(t, c.HasTimestamp())
	assert.Equal(t, "yesterday-ish", c.CreatedAtRaw, "raw value must survive for export")
}

// Ordering: created_at descending, undated records last in original order.
func TestSortNewestFirst_MixedDatedAndUndated(t *testing.T) {
	records := kyc.NormalizeSnapshot(sampleSnapshot())
	kyc.SortNewestFirst(records)

	ids := []string{records[0].ID, records[1].ID, records[2].ID}
	assert.Equal(t, []string{"ID2", "ID1", "ID3"}, ids)
}

func TestSortNewestFirst_StableForTiesAndUndated(t *testing.T) {
	records := []entity.Customer{
		{ID: "U1"},
		{ID: "A", CreatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "U2"},
		{ID: "B", CreatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "U3"},
	}
	kyc.SortNewestFirst(records)

	var ids []string
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	// A and B tie and keep input order; the undated block keeps U1,U2,U3.
	assert.Equal(t, []string{"A", "B", "U1", "U2", "U3"}, ids)
}

func TestSummarize_CountsAlerts(t *testing.T) {
	records := kyc.NormalizeSnapshot(sampleSnapshot())
	s := kyc.Summarize(records)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.PIPAlerts, "only ID2 carries a status other than None")
}

func TestDailyHistogram_SameDayGrouping(t *testing.T) {
	records := kyc.NormalizeSnapshot(sampleSnapshot())
	buckets := kyc.DailyHistogram(records, time.UTC)

	require.Len(t, buckets, 1, "ID3 has no timestamp and must be excluded")
	assert.Equal(t, "05/01/2026", buckets[0].Label)
	assert.Equal(t, 2, buckets[0].Count)
}

func TestDailyHistogram_ChronologicalByDateNotLabel(t *testing.T) {
	// Label text order would put 01/02/2026 before 02/01/2026; the
	// underlying dates say otherwise.
	records := []entity.Customer{
		{ID: "A", CreatedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)},
		{ID: "B", CreatedAt: time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)},
		{ID: "C", CreatedAt: time.Date(2026, 1, 2, 19, 0, 0, 0, time.UTC)},
	}
	buckets := kyc.DailyHistogram(records, time.UTC)

	require.Len(t, buckets, 2)
	assert.Equal(t, "02/01/2026", buckets[0].Label)
	assert.Equal(t, 2, buckets[0].Count)
	assert.Equal(t, "01/02/2026", buckets[1].Label)
	assert.Equal(t, 1, buckets[1].Count)

	// Bucket counts sum to the number of dated records.
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, 3, total)
}

func TestDocumentHistogram_FixedCategories(t *testing.T) {
	records := []entity.Customer{
		{ID: "A", OmangFileURL: "https://files/omang.pdf", PayslipURL: "https://files/slip.pdf"},
		{ID: "B", OmangFileURL: "https://files/omang2.pdf"},
		{ID: "C"},
	}
	counts := kyc.DocumentHistogram(records)

	require.Len(t, counts, 5, "always five categories, zeros included")
	assert.Equal(t, "Omang", counts[0].Label)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, "Payslip", counts[1].Label)
	assert.Equal(t, 1, counts[1].Count)
	for _, c := range counts[2:] {
		assert.Zero(t, c.Count)
	}
}

func TestFilterByDay_MatchesHistogramRule(t *testing.T) {
	records := kyc.NormalizeSnapshot(sampleSnapshot())
	kyc.SortNewestFirst(records)

	subset := kyc.FilterByDay(records, "05/01/2026", time.UTC)
	require.Len(t, subset, 2)
	assert.Equal(t, "ID2", subset[0].ID, "input order preserved")
	assert.Equal(t, "ID1", subset[1].ID)

	// Idempotent: same label, same input, same subset and order.
	again := kyc.FilterByDay(records, "05/01/2026", time.UTC)
	assert.Equal(t, subset, again)

	assert.Empty(t, kyc.FilterByDay(records, "06/01/2026", time.UTC))
}
