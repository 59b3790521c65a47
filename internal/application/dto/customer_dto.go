package dto

import "github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"

// CustomerResponse one KYC record as rendered by the table view. created_at
// is the stored string; it doubles as the last-activity marker.
type CustomerResponse struct {
	ID                    string `json:"id"`
	FullName              string `json:"full_name"`
	PIPStatus             string `json:"pip_status"`
	CreatedAt             string `json:"created_at"`
	PIPAlert              bool   `json:"pip_alert"`
	OmangFileURL          string `json:"omang_file_url,omitempty"`
	PayslipURL            string `json:"payslip_url,omitempty"`
	UtilityBillURL        string `json:"utility_bill_url,omitempty"`
	ConfirmationLetterURL string `json:"confirmation_letter_url,omitempty"`
	AffidavitURL          string `json:"affidavit_url,omitempty"`
}

// NewCustomerResponse maps a record to its response shape.
func NewCustomerResponse(c entity.Customer) CustomerResponse {
	status := c.PIPStatus
	if status == "" {
		status = entity.PIPNone
	}
	return CustomerResponse{
		ID:                    c.ID,
		FullName:              c.FullName,
		PIPStatus:             status,
		CreatedAt:             c.CreatedAtRaw,
		PIPAlert:              c.PIPAlert(),
		OmangFileURL:          c.OmangFileURL,
		PayslipURL:            c.PayslipURL,
		UtilityBillURL:        c.UtilityBillURL,
		ConfirmationLetterURL: c.ConfirmationLetterURL,
		AffidavitURL:          c.AffidavitURL,
	}
}

// NewCustomerResponses maps a record slice, preserving order.
func NewCustomerResponses(records []entity.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(records))
	for _, r := range records {
		out = append(out, NewCustomerResponse(r))
	}
	return out
}

// EditCustomerRequest body of PUT /api/customers/:id.
type EditCustomerRequest struct {
	FullName  string `json:"full_name"`
	PIPStatus string `json:"pip_status"`
}

// AttachResponse result of a document attach.
type AttachResponse struct {
	Field string `json:"field"`
	URL   string `json:"url"`
}

// ImportResponse aggregate acknowledgment of a bulk import.
type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
