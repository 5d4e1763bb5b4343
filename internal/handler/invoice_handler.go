package handler

import (
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InvoiceHandler struct {
	service service.InvoiceService
}

func NewInvoiceHandler(s service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: s}
}

type PaymentStatusRequest struct {
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
}

// Generate bills a sale once; a missing sale is a client error here, not a 404.
// POST /api/v1/invoices/generate/:saleId
func (h *InvoiceHandler) Generate(c *fiber.Ctx) error {
	saleID, err := paramID(c, "saleId")
	if err != nil {
		return fail(c, err)
	}
	var req service.GenerateInvoiceRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c)
		}
	}

	invoice, err := h.service.Generate(c.UserContext(), actor(c), saleID, &req)
	if err != nil {
		return failWith(c, err, 400)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "data": invoice, "invoiceId": invoice.ID})
}

// UpdatePaymentStatus
// PATCH /api/v1/invoices/:id/payment-status
func (h *InvoiceHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req PaymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	invoice, err := h.service.UpdatePaymentStatus(c.UserContext(), actor(c), id, req.PaymentStatus)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": invoice})
}

func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.Delete(c.UserContext(), actor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Invoice deleted"})
}

func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	invoices, err := h.service.List(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": invoices})
}

func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	invoice, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": invoice})
}
