package handler

import (
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PartyHandler serves suppliers and customers.
type PartyHandler struct {
	service service.PartyService
}

func NewPartyHandler(s service.PartyService) *PartyHandler {
	return &PartyHandler{service: s}
}

func (h *PartyHandler) ListSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.service.ListSuppliers(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": suppliers})
}

func (h *PartyHandler) GetSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	supplier, err := h.service.GetSupplier(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": supplier})
}

func (h *PartyHandler) CreateSupplier(c *fiber.Ctx) error {
	var req service.PartyRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	supplier, err := h.service.CreateSupplier(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "data": supplier})
}

func (h *PartyHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.PartyRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	supplier, err := h.service.UpdateSupplier(c.UserContext(), actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": supplier})
}

func (h *PartyHandler) DeleteSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.DeleteSupplier(c.UserContext(), actor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Supplier deleted"})
}

func (h *PartyHandler) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.service.ListCustomers(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": customers})
}

func (h *PartyHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	customer, err := h.service.GetCustomer(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": customer})
}

func (h *PartyHandler) CreateCustomer(c *fiber.Ctx) error {
	var req service.PartyRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	customer, err := h.service.CreateCustomer(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "data": customer})
}

func (h *PartyHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.PartyRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	customer, err := h.service.UpdateCustomer(c.UserContext(), actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": customer})
}

func (h *PartyHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.DeleteCustomer(c.UserContext(), actor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Customer deleted"})
}
