package entity

import "time"

// Backend field names of a customer document. The collection stores loose
// field maps; these constants are the only keys the dashboard reads or writes.
const (
	FieldFullName           = "full_name"
	FieldPIPStatus          = "pip_status"
	FieldCreatedAt          = "created_at"
	FieldOmangFile          = "omang_file_url"
	FieldPayslip            = "payslip_url"
	FieldUtilityBill        = "utility_bill_url"
	FieldConfirmationLetter = "confirmation_letter_url"
	FieldAffidavit          = "affidavit_url"
)

// PIPNone is the pip_status value that means "no alert".
const PIPNone = "None"

// DocumentFields lists the five attachable document-link fields in their
// fixed display order (matches the document-type chart).
var DocumentFields = [5]string{
	FieldOmangFile,
	FieldPayslip,
	FieldUtilityBill,
	FieldConfirmationLetter,
	FieldAffidavit,
}

// Customer is a normalized KYC record. CreatedAt is the parsed timestamp and
// is the zero value when the backend field is absent or unparsable;
// CreatedAtRaw preserves the stored string for export.
type Customer struct {
	ID                    string
	FullName              string
	PIPStatus             string
	CreatedAtRaw          string
	CreatedAt             time.Time
	OmangFileURL          string
	PayslipURL            string
	UtilityBillURL        string
	ConfirmationLetterURL string
	AffidavitURL          string
}

// HasTimestamp reports whether created_at was present and parseable.
func (c Customer) HasTimestamp() bool {
	return !c.CreatedAt.IsZero()
}

// PIPAlert reports whether the record carries an active PIP alert: any
// present status other than "None".
func (c Customer) PIPAlert() bool {
	return c.PIPStatus != "" && c.PIPStatus != PIPNone
}

// DocumentURL returns the stored URL for one of the five document fields,
// or "" when the field is absent or unknown.
func (c Customer) DocumentURL(field string) string {
	switch field {
	case FieldOmangFile:
		return c.OmangFileURL
	case FieldPayslip:
		return c.PayslipURL
	case FieldUtilityBill:
		return c.UtilityBillURL
	case FieldConfirmationLetter:
		return c.ConfirmationLetterURL
	case FieldAffidavit:
		return c.AffidavitURL
	}
	return ""
}

// Document is a raw backend document: opaque id plus loose field map.
type Document struct {
	ID     string
	Fields map[string]any
}

// Snapshot is the complete current state of the collection, delivered whole
// on every change notification. It is never a diff.
type Snapshot []Document
