package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/dto"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/kyc"
)

// ExportHandler serves the CSV downloads: the full master export and the
// day-filtered report.
type ExportHandler struct {
	sync *kyc.SyncController
}

// NewExportHandler builds the handler.
func NewExportHandler(sync *kyc.SyncController) *ExportHandler {
	return &ExportHandler{sync: sync}
}

// Master GET /api/customers/export
//
// The entire active set, current in-memory order, fixed filename.
func (h *ExportHandler) Master(c *fiber.Ctx) error {
	view := h.sync.Current()
	if view == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "SYNC_PENDING", Message: "no collection snapshot received yet"})
	}

	var buf bytes.Buffer
	if err := kyc.WriteMaster(&buf, view.Records); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "EXPORT_FAILED", Message: err.Error()})
	}
	setDownloadHeaders(c, kyc.MasterFilename)
	return c.Send(buf.Bytes())
}

// Daily GET /api/customers/export/daily?date=dd/mm/yyyy
//
// The subset submitted on the selected day, prefixed with the report
// preamble. The generation timestamp is the wall-clock time of this request,
// not of the data.
func (h *ExportHandler) Daily(c *fiber.Ctx) error {
	label := c.Query("date")
	if label == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query parameter 'date' is required"})
	}
	view := h.sync.Current()
	if view == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "SYNC_PENDING", Message: "no collection snapshot received yet"})
	}

	records := kyc.FilterByDay(view.Records, label, h.sync.Location())
	var buf bytes.Buffer
	if err := kyc.WriteDailyReport(&buf, label, time.Now(), records); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "EXPORT_FAILED", Message: err.Error()})
	}
	setDownloadHeaders(c, kyc.DailyReportFilename(label))
	return c.Send(buf.Bytes())
}

func setDownloadHeaders(c *fiber.Ctx, filename string) {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
}
