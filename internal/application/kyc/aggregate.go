package kyc

import (
	"sort"
	"time"

	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"
)

// DayLabelLayout is the fixed day-label format (dd/mm/yyyy). The label is
// both the display string and the grouping key of the daily histogram.
const DayLabelLayout = "02/01/2006"

// Summary holds the stats-panel counters.
type Summary struct {
	Total     int
	PIPAlerts int
}

// DailyBucket is one bar of the daily submissions chart. Day is midnight of
// the calendar day in the bucketing zone; buckets sort by Day, not by label
// text.
type DailyBucket struct {
	Day   time.Time
	Label string
	Count int
}

// DocumentCount is one slice of the document-type chart.
type DocumentCount struct {
	Field string
	Label string
	Count int
}

// Chart labels for the five document fields, in entity.DocumentFields order.
var documentLabels = map[string]string{
	entity.FieldOmangFile:          "Omang",
	entity.FieldPayslip:            "Payslip",
	entity.FieldUtilityBill:        "Utility",
	entity.FieldConfirmationLetter: "Letter",
	entity.FieldAffidavit:          "Affidavit",
}

// DayLabel formats a timestamp as its day-label in the given zone.
// A nil location means UTC.
func DayLabel(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayLabelLayout)
}

// Summarize counts records and active PIP alerts.
func Summarize(records []entity.Customer) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.PIPAlert() {
			s.PIPAlerts++
		}
	}
	return s
}

// DailyHistogram groups records by calendar day in loc and returns the
// buckets chronologically ascending. Records without a parseable created_at
// are excluded, so the bucket counts sum to the number of dated records.
func DailyHistogram(records []entity.Customer, loc *time.Location) []DailyBucket {
	if loc == nil {
		loc = time.UTC
	}
	counts := make(map[time.Time]int)
	for _, r := range records {
		if !r.HasTimestamp() {
			continue
		}
		t := r.CreatedAt.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		counts[day]++
	}

	buckets := make([]DailyBucket, 0, len(counts))
	for day, n := range counts {
		buckets = append(buckets, DailyBucket{Day: day, Label: day.Format(DayLabelLayout), Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Day.Before(buckets[j].Day)
	})
	return buckets
}

// DocumentHistogram counts, per document field, the records that carry a
// link. Always exactly five categories in fixed order, zeros included.
func DocumentHistogram(records []entity.Customer) []DocumentCount {
	out := make([]DocumentCount, 0, len(entity.DocumentFields))
	for _, field := range entity.DocumentFields {
		n := 0
		for _, r := range records {
			if r.DocumentURL(field) != "" {
				n++
			}
		}
		out = append(out, DocumentCount{Field: field, Label: documentLabels[field], Count: n})
	}
	return out
}
