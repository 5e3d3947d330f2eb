package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pasalhq/pasal-erp/internal/application/auth"
	"github.com/pasalhq/pasal-erp/internal/application/exchange"
	"github.com/pasalhq/pasal-erp/internal/application/fulfillment"
	"github.com/pasalhq/pasal-erp/internal/application/inventory"
	"github.com/pasalhq/pasal-erp/internal/application/usecase"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *usecase.ProductUseCase
	VendorUC    *usecase.VendorUseCase
	OrderUC     *usecase.OrderUseCase
	Transition  *fulfillment.Service
	Engine      *inventory.Engine
	Exchange    *exchange.Service
	JWTSecret   string
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (public)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Protected routes (Bearer token required)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catalog
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.Get)

	variants := protected.Group("/variants")
	variants.Put("/:id", productHandler.UpdateVariant)
	variants.Delete("/:id", productHandler.DeactivateVariant)
	variants.Get("/:id/movements", productHandler.Movements)

	// Vendors
	vendors := protected.Group("/vendors")
	vendorHandler := NewVendorHandler(deps.VendorUC)
	vendors.Post("/", vendorHandler.Create)
	vendors.Get("/", vendorHandler.List)
	vendors.Get("/:id", vendorHandler.Get)

	// Inventory transactions (maker-checker). Approve/void are checker
	// actions restricted to admin and manager.
	inv := protected.Group("/inventory/transactions")
	inventoryHandler := NewInventoryHandler(deps.Engine)
	inv.Post("/", inventoryHandler.Create)
	inv.Get("/", inventoryHandler.List)
	inv.Get("/:id", inventoryHandler.Get)
	checker := RequireRole(entity.RoleAdmin, entity.RoleManager)
	inv.Post("/:id/approve", checker, inventoryHandler.Approve)
	inv.Post("/:id/reject", checker, inventoryHandler.Reject)
	inv.Post("/:id/void", checker, inventoryHandler.Void)

	// Orders and fulfillment
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC, deps.Transition)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.Get)
	orders.Get("/:id/logs", orderHandler.Logs)
	orders.Delete("/:id", orderHandler.Delete)
	orders.Post("/:id/transition", orderHandler.Transition)
	orders.Post("/:id/assign-rider", orderHandler.AssignRider)
	orders.Post("/:id/assign-courier", orderHandler.AssignCourier)
	orders.Post("/:id/reassign", orderHandler.Reassign)

	// Exchanges
	exchangeHandler := NewExchangeHandler(deps.Exchange)
	orders.Post("/:id/exchange", exchangeHandler.Reconcile)
	orders.Post("/:id/settle-pickup", exchangeHandler.SettlePickup)
}
