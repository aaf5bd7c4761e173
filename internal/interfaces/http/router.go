package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/inventory"
	"github.com/jhoicas/Inventario-pos/internal/application/sales"
	"github.com/jhoicas/Inventario-pos/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC     *usecase.ProductUseCase
	LocationUC    *usecase.LocationUseCase
	Ledger        *inventory.LedgerUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Sales         *sales.SaleUseCase
	Receipts      *sales.ReceiptUseCase
	JWTSecret     string
	// SalesPerMinute límite por IP de POST /api/sales; 0 desactiva.
	SalesPerMinute int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	locations := api.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Post("/", locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)

	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Replenishment)
	inv.Post("/movements", inventoryHandler.RecordMovement)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/movements/:id", inventoryHandler.GetMovement)
	inv.Put("/movements/:id", inventoryHandler.CorrectMovement)
	inv.Delete("/movements/:id", inventoryHandler.DeleteMovement)
	inv.Post("/movements/:id/cancel", inventoryHandler.CancelMovement)
	inv.Post("/movements/:id/complete", inventoryHandler.CompleteMovement)
	inv.Post("/adjustments", inventoryHandler.Adjust)
	inv.Post("/write-offs", inventoryHandler.WriteOff)
	inv.Post("/transfers", inventoryHandler.Transfer)
	inv.Get("/balances", inventoryHandler.ListBalances)
	inv.Put("/balances/thresholds", inventoryHandler.SetThresholds)
	inv.Get("/low-stock", inventoryHandler.LowStock)
	inv.Get("/out-of-stock", inventoryHandler.OutOfStock)
	inv.Get("/batches/:batchNumber", inventoryHandler.ByBatch)
	inv.Get("/serials/:serialNumber", inventoryHandler.BySerial)
	inv.Get("/expiring", inventoryHandler.Expiring)
	inv.Get("/expired", inventoryHandler.Expired)
	inv.Get("/statistics", inventoryHandler.Statistics)
	inv.Get("/replenishment", inventoryHandler.GetReplenishmentList)

	salesGroup := api.Group("/sales", RequireRole(RoleAdmin, RoleSupervisor, RoleCashier))
	saleHandler := NewSaleHandler(deps.Sales, deps.Receipts)
	if deps.SalesPerMinute > 0 {
		salesGroup.Post("/", SaleRateLimit(deps.SalesPerMinute, time.Minute), saleHandler.Create)
	} else {
		salesGroup.Post("/", saleHandler.Create)
	}
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.Get)
	salesGroup.Delete("/:id", RequireRole(RoleAdmin), saleHandler.Delete)
	salesGroup.Post("/:id/hold", saleHandler.Hold)
	salesGroup.Post("/:id/resume", saleHandler.Resume)
	salesGroup.Post("/:id/refund", RequireRole(RoleAdmin, RoleSupervisor), saleHandler.Refund)
	salesGroup.Post("/:id/payments", saleHandler.AddPayments)
	salesGroup.Get("/:id/payments", saleHandler.ListPayments)
	salesGroup.Get("/:id/receipt", saleHandler.DownloadReceipt)
}

// SaleRateLimit limita peticiones por IP con httprate (net/http) adaptado a Fiber.
func SaleRateLimit(requests int, window time.Duration) fiber.Handler {
	limiter := httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiadas ventas, intente en un momento"})
		}),
	)
	return adaptor.HTTPMiddleware(limiter)
}
