package kyc

import (
	"sort"

	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"
)

// SortNewestFirst orders records in place by created_at descending. Records
// without a parseable timestamp carry the zero time, so they all sort after
// the dated ones. The sort is stable: equal timestamps (and the undated
// block) keep their relative order from the input snapshot.
func SortNewestFirst(records []entity.Customer) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
