package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/dto"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/kyc"
)

// DashboardHandler serves the derived dashboard view. Reads come straight
// from the sync controller's current snapshot; no backend round-trip.
type DashboardHandler struct {
	sync *kyc.SyncController
}

// NewDashboardHandler builds the handler.
func NewDashboardHandler(sync *kyc.SyncController) *DashboardHandler {
	return &DashboardHandler{sync: sync}
}

// Get GET /api/dashboard
//
// Returns the stats panel, both chart series and the ordered table rows,
// all derived from the same collection snapshot. 503 until the first
// snapshot has arrived.
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	view := h.sync.Current()
	if view == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "SYNC_PENDING", Message: "no collection snapshot received yet"})
	}

	daily := make([]dto.DailyBucketDTO, 0, len(view.Daily))
	for _, b := range view.Daily {
		daily = append(daily, dto.DailyBucketDTO{Label: b.Label, Count: b.Count})
	}
	docs := make([]dto.DocumentCountDTO, 0, len(view.Documents))
	for _, d := range view.Documents {
		docs = append(docs, dto.DocumentCountDTO{Label: d.Label, Count: d.Count})
	}

	return c.JSON(dto.DashboardResponse{
		Summary:   dto.SummaryDTO{Total: view.Summary.Total, PIPAlerts: view.Summary.PIPAlerts},
		Daily:     daily,
		Documents: docs,
		Records:   dto.NewCustomerResponses(view.Records),
		SyncedAt:  view.SyncedAt,
	})
}
