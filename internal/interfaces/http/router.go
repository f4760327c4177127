package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *inventory.LedgerUseCase
	Stock         *inventory.StockUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Transfers     *inventory.TransferUseCase
	SlipGenerator inventory.SlipGenerator
	Metrics       *metrics.Metrics // nil = sin /metrics
	JWTSecret     string
	JWTIssuer     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", deps.Metrics.Handler())
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	operators := RequireRole(RoleAdmin, RoleBodeguero)

	// Ledger y proyecciones de stock
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Stock, deps.Replenishment)
	invGroup.Post("/movements", operators, inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/stock", inventoryHandler.GetStock)
	invGroup.Put("/stock", operators, inventoryHandler.UpdateStock)
	invGroup.Put("/stock/thresholds", operators, inventoryHandler.SetThresholds)
	invGroup.Get("/low-stock", inventoryHandler.LowStock)
	invGroup.Get("/replenishment-list", inventoryHandler.GetReplenishmentList)
	invGroup.Get("/reconciliation/:product_id", RequireRole(RoleAdmin), inventoryHandler.Reconcile)

	// Traslados entre bodegas
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Transfers, deps.SlipGenerator)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/number", transferHandler.NextNumber)
	transfers.Post("/validate-availability", transferHandler.ValidateAvailability)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Get("/:id/slip", transferHandler.Slip)
	transfers.Post("/:id/submit", transferHandler.Submit)
	transfers.Post("/:id/approve", operators, transferHandler.Approve)
	transfers.Post("/:id/ship", operators, transferHandler.Ship)
	transfers.Post("/:id/complete", operators, transferHandler.Complete)
	transfers.Post("/:id/cancel", operators, transferHandler.Cancel)
}
