// Package kyc contains the dashboard's data pipeline: normalization of raw
// backend documents, the newest-first ordering policy, the derived-view
// aggregations, day filtering, CSV export/import and the live sync controller.
package kyc

import (
	"strings"
	"time"

	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"
)

// Timestamp layouts accepted for created_at. The backend writes RFC 3339;
// the looser layouts cover bulk-imported historical data.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a created_at value. Returns the zero time when the
// value is empty or matches no accepted layout.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Normalize converts a raw backend document into the uniform record shape.
// Non-string field values are ignored.
func Normalize(doc entity.Document) entity.Customer {
	raw := stringField(doc.Fields, entity.FieldCreatedAt)
	return entity.Customer{
		ID:                    doc.ID,
		FullName:              stringField(doc.Fields, entity.FieldFullName),
		PIPStatus:             stringField(doc.Fields, entity.FieldPIPStatus),
		CreatedAtRaw:          raw,
		CreatedAt:             ParseTimestamp(raw),
		OmangFileURL:          stringField(doc.Fields, entity.FieldOmangFile),
		PayslipURL:            stringField(doc.Fields, entity.FieldPayslip),
		UtilityBillURL:        stringField(doc.Fields, entity.FieldUtilityBill),
		ConfirmationLetterURL: stringField(doc.Fields, entity.FieldConfirmationLetter),
		AffidavitURL:          stringField(doc.Fields, entity.FieldAffidavit),
	}
}

// NormalizeSnapshot converts a full backend snapshot. Ids are a set: a
// duplicate or empty id is dropped, first occurrence wins.
func NormalizeSnapshot(snap entity.Snapshot) []entity.Customer {
	seen := make(map[string]struct{}, len(snap))
	records := make([]entity.Customer, 0, len(snap))
	for _, doc := range snap {
		if doc.ID == "" {
			continue
		}
		if _, dup := seen[doc.ID]; dup {
			continue
		}
		seen[doc.ID] = struct{}{}
		records = append(records, Normalize(doc))
	}
	return records
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
