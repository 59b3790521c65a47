package kyc

import (
	"time"

	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"
)

// FilterByDay returns the records whose created_at falls on the calendar day
// named by label, under the same zone and format as the daily histogram.
// Input order is preserved, so re-running with the same label on the same
// records yields the same subset in the same order. Records without a
// parseable timestamp never match.
func FilterByDay(records []entity.Customer, label string, loc *time.Location) []entity.Customer {
	var out []entity.Customer
	for _, r := range records {
		if !r.HasTimestamp() {
			continue
		}
		if DayLabel(r.CreatedAt, loc) == label {
			out = append(out, r)
		}
	}
	return out
}
