package kyc

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"
)

// MasterFilename is the fixed download name of the full export.
const MasterFilename = "Letshego_KYC_Master.csv"

// ExportHeader is the CSV header of both export modes. The daily report uses
// the same data block as the master export.
var ExportHeader = []string{
	"id",
	entity.FieldFullName,
	entity.FieldPIPStatus,
	entity.FieldCreatedAt,
	entity.FieldOmangFile,
	entity.FieldPayslip,
	entity.FieldUtilityBill,
	entity.FieldConfirmationLetter,
	entity.FieldAffidavit,
}

// WriteMaster serializes the record set as RFC 4180 CSV: header row, then one
// row per record in the given order.
func WriteMaster(w io.Writer, records []entity.Customer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ID,
			r.FullName,
			r.PIPStatus,
			r.CreatedAtRaw,
			r.OmangFileURL,
			r.PayslipURL,
			r.UtilityBillURL,
			r.ConfirmationLetterURL,
			r.AffidavitURL,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDailyReport serializes a day subset with the report preamble: the
// selected day-label, the generation wall-clock time, a blank line, then the
// same CSV block as the master export.
func WriteDailyReport(w io.Writer, label string, generatedAt time.Time, records []entity.Customer) error {
	if _, err := fmt.Fprintf(w, "REPORT FOR DATE: %s\nGENERATED: %s\n\n",
		label, generatedAt.Format("02/01/2006 15:04:05")); err != nil {
		return fmt.Errorf("write report preamble: %w", err)
	}
	return WriteMaster(w, records)
}

// DailyReportFilename builds the daily report download name, replacing the
// path-unsafe date separators in the label.
func DailyReportFilename(label string) string {
	return fmt.Sprintf("Letshego_Report_%s.csv", strings.ReplaceAll(label, "/", "-"))
}
