package handler

import (
	"errors"

	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	service service.CatalogService
}

func NewInventoryHandler(s service.CatalogService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// actor reads the caller set by RequireAuth.
func actor(c *fiber.Ctx) service.Actor {
	a := service.Actor{ID: "system", Name: "Unknown"}
	if v, ok := c.Locals("user_id").(string); ok {
		a.ID = v
	}
	if v, ok := c.Locals("user_name").(string); ok {
		a.Name = v
	}
	if v, ok := c.Locals("user_email").(string); ok {
		a.Email = v
	}
	return a
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, &service.ValidationError{Field: name, Message: "must be a valid id"}
	}
	return id, nil
}

func badBody(c *fiber.Ctx) error {
	return c.Status(400).JSON(fiber.Map{"success": false, "message": "Invalid JSON"})
}

// statusFor maps service errors onto HTTP codes; notFound is the code used for NotFoundError.
func statusFor(err error, notFound int) int {
	var (
		ve *service.ValidationError
		ce *service.ConflictError
		ie *service.InsufficientStockError
		ne *service.NotFoundError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &ce), errors.As(err, &ie):
		return 400
	case errors.As(err, &ne):
		return notFound
	case errors.Is(err, service.ErrUnauthorized):
		return 401
	}
	return 500
}

func fail(c *fiber.Ctx, err error) error {
	return failWith(c, err, 404)
}

func failWith(c *fiber.Ctx, err error, notFound int) error {
	status := statusFor(err, notFound)
	message := err.Error()
	if status == 500 {
		logger.LogError("handler", c.Route().Path, c.Method(), nil, err)
		message = "Internal server error"
	}
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	product, err := h.service.CreateProduct(c.UserContext(), actor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"success": true, "message": "Product created", "data": product})
}

func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": products})
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Product updated", "data": product})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.DeleteProduct(c.UserContext(), actor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Product deleted"})
}

func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	rows, err := h.service.GetStock(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": rows})
}

// GetAvailable answers the closing stock of one product, 0 when it has no ledger row.
// GET /api/v1/stock/product/:productId
func (h *InventoryHandler) GetAvailable(c *fiber.Ctx) error {
	id, err := paramID(c, "productId")
	if err != nil {
		return fail(c, err)
	}
	available, err := h.service.Available(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "available": available})
}

func (h *InventoryHandler) GetMismatches(c *fiber.Ctx) error {
	rows, err := h.service.Mismatches(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": rows})
}

func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	fixed, err := h.service.Reconcile(c.UserContext(), actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "fixed": len(fixed), "data": fixed})
}
