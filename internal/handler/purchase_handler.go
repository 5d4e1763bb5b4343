package handler

import (
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PurchaseHandler struct {
	service service.PurchaseService
}

func NewPurchaseHandler(s service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: s}
}

// Create records a supplier bill and receives its items into stock.
// POST /api/v1/purchases
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var req service.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	master, err := h.service.Create(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "master": master})
}

func (h *PurchaseHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	master, err := h.service.Update(c.UserContext(), actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "master": master})
}

func (h *PurchaseHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.Delete(c.UserContext(), actor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Purchase deleted"})
}

func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	masters, err := h.service.List(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": masters})
}

func (h *PurchaseHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	master, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": master})
}

func (h *PurchaseHandler) SupplierBills(c *fiber.Ctx) error {
	id, err := paramID(c, "supplierId")
	if err != nil {
		return fail(c, err)
	}
	masters, err := h.service.SupplierBills(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": masters})
}

func (h *PurchaseHandler) NextBillNo(c *fiber.Ctx) error {
	billNo, err := h.service.NextBillNo(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "billNo": billNo})
}
