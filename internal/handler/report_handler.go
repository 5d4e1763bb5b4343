package handler

import (
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	return h.build(c, service.ReportSales)
}

func (h *ReportHandler) Purchases(c *fiber.Ctx) error {
	return h.build(c, service.ReportPurchases)
}

func (h *ReportHandler) build(c *fiber.Ctx, kind service.ReportKind) error {
	report, err := h.service.Build(c.UserContext(), kind, c.Query("from"), c.Query("to"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": report})
}

// Export streams the report as a file download.
// GET /api/v1/reports/export?type=sales|purchases&format=xlsx|csv&from=&to=
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	kind := service.ReportKind(c.Query("type", string(service.ReportSales)))
	export, err := h.service.Export(c.UserContext(), kind, c.Query("format", "xlsx"), c.Query("from"), c.Query("to"))
	if err != nil {
		return fail(c, err)
	}
	c.Attachment(export.Filename)
	c.Set(fiber.HeaderContentType, export.ContentType)
	return c.Send(export.Body)
}
