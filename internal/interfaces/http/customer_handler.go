package http

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/dto"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/kyc"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain"
)

// CustomerHandler handles record listing and the backend writes (edit,
// delete, attach, bulk import). Writes go to the collection and show up on
// the next snapshot; responses never include optimistic state.
type CustomerHandler struct {
	sync *kyc.SyncController
	uc   *kyc.CustomerUseCase
}

// NewCustomerHandler builds the handler.
func NewCustomerHandler(sync *kyc.SyncController, uc *kyc.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{sync: sync, uc: uc}
}

// List GET /api/customers?date=dd/mm/yyyy
//
// Without date: the full record set, newest first. With date: the subset
// submitted on that calendar day, in the same order.
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	view := h.sync.Current()
	if view == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "SYNC_PENDING", Message: "no collection snapshot received yet"})
	}
	records := view.Records
	if date := c.Query("date"); date != "" {
		records = kyc.FilterByDay(records, date, h.sync.Location())
	}
	return c.JSON(dto.NewCustomerResponses(records))
}

// Edit PUT /api/customers/:id
func (h *CustomerHandler) Edit(c *fiber.Ctx) error {
	var in dto.EditCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	err := h.uc.Edit(c.Context(), c.Params("id"), in.FullName, in.PIPStatus)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "customer not found"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "customer id is required"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "customer profile synchronized"})
}

// Delete DELETE /api/customers/:id
//
// Removes the record and all associated document links.
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "customer id is required"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "customer deleted"})
}

// Attach POST /api/customers/:id/documents/:field (multipart, field "file")
//
// Uploads the file to blob storage and links the URL into the named document
// field. A storage failure leaves the record untouched.
func (h *CustomerHandler) Attach(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "multipart field 'file' is required"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: "cannot read uploaded file"})
	}
	defer f.Close()
	data := make([]byte, fileHeader.Size)
	if _, err := io.ReadFull(f, data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: "cannot read uploaded file"})
	}

	field := c.Params("field")
	url, err := h.uc.Attach(c.Context(), c.Params("id"), field, fileHeader.Filename, data)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownField) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNKNOWN_FIELD", Message: "not an attachable document field"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "customer not found"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "customer id is required"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "UPLOAD_FAILED", Message: "storage upload failed"})
	}
	return c.JSON(dto.AttachResponse{Field: field, URL: url})
}

// Import POST /api/customers/import (multipart, field "file")
//
// Bulk-creates records from a CSV file. Rows without an identifying value
// are skipped; the response carries only the aggregate counts.
func (h *CustomerHandler) Import(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "multipart field 'file' is required"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: "cannot read uploaded file"})
	}
	defer f.Close()

	res, err := h.uc.ImportCSV(c.Context(), f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "IMPORT_FAILED", Message: err.Error()})
	}
	return c.JSON(dto.ImportResponse{Imported: res.Imported, Skipped: res.Skipped})
}
