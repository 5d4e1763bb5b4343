package handler

import (
	"go-inventory-ledger/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles every route handler so that main and tests mount the same table.
type Handlers struct {
	Auth      *AuthHandler
	Inventory *InventoryHandler
	Party     *PartyHandler
	Purchase  *PurchaseHandler
	Sales     *SalesHandler
	Invoice   *InvoiceHandler
	Report    *ReportHandler
	Dashboard *DashboardHandler
	Role      *RoleHandler
}

// Mount registers the /api/v1 routes; requireAuth guards everything outside /auth.
func Mount(api fiber.Router, h *Handlers, requireAuth fiber.Handler) {
	can := middleware.RequirePrivilege

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Post("/validate-token", h.Auth.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", h.Dashboard.GetStockMovement)

	protected.Get("/products", h.Inventory.GetProducts)
	protected.Post("/products", can("product:create"), h.Inventory.CreateProduct)
	protected.Put("/products/:id", can("product:update"), h.Inventory.UpdateProduct)
	protected.Delete("/products/:id", can("product:delete"), h.Inventory.DeleteProduct)

	protected.Get("/stock", h.Inventory.GetStock)
	protected.Get("/stock/product/:productId", h.Inventory.GetAvailable)
	protected.Get("/stock/reconcile", can("stock:reconcile"), h.Inventory.GetMismatches)
	protected.Post("/stock/reconcile", can("stock:reconcile"), h.Inventory.Reconcile)

	protected.Get("/suppliers", h.Party.ListSuppliers)
	protected.Get("/suppliers/:id", h.Party.GetSupplier)
	protected.Post("/suppliers", can("party:manage"), h.Party.CreateSupplier)
	protected.Put("/suppliers/:id", can("party:manage"), h.Party.UpdateSupplier)
	protected.Delete("/suppliers/:id", can("party:manage"), h.Party.DeleteSupplier)

	protected.Get("/customers", h.Party.ListCustomers)
	protected.Get("/customers/:id", h.Party.GetCustomer)
	protected.Post("/customers", can("party:manage"), h.Party.CreateCustomer)
	protected.Put("/customers/:id", can("party:manage"), h.Party.UpdateCustomer)
	protected.Delete("/customers/:id", can("party:manage"), h.Party.DeleteCustomer)

	// static segments before /:id
	protected.Get("/purchases", h.Purchase.List)
	protected.Get("/purchases/next-bill-no", h.Purchase.NextBillNo)
	protected.Get("/purchases/supplier-bills/:supplierId", h.Purchase.SupplierBills)
	protected.Get("/purchases/:id", h.Purchase.Get)
	protected.Post("/purchases", can("purchase:create"), h.Purchase.Create)
	protected.Put("/purchases/:id", can("purchase:update"), h.Purchase.Update)
	protected.Delete("/purchases/:id", can("purchase:delete"), h.Purchase.Delete)

	protected.Get("/sales", h.Sales.List)
	protected.Get("/sales/:id", h.Sales.Get)
	protected.Post("/sales", can("sale:create"), h.Sales.Create)
	protected.Put("/sales/:id", can("sale:update"), h.Sales.Update)
	protected.Delete("/sales/:id", can("sale:delete"), h.Sales.Delete)

	protected.Get("/invoices", h.Invoice.List)
	protected.Get("/invoices/:id", h.Invoice.Get)
	protected.Post("/invoices/generate/:saleId", can("invoice:create"), h.Invoice.Generate)
	protected.Patch("/invoices/:id/payment-status", can("invoice:update"), h.Invoice.UpdatePaymentStatus)
	protected.Delete("/invoices/:id", can("invoice:delete"), h.Invoice.Delete)

	protected.Get("/reports/sales", can("report:view"), h.Report.Sales)
	protected.Get("/reports/purchases", can("report:view"), h.Report.Purchases)
	protected.Get("/reports/export", can("report:view"), h.Report.Export)

	protected.Get("/roles", h.Role.GetRoles)
	protected.Get("/privileges", h.Role.GetPrivileges)
}
