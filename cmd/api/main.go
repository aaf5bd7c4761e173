package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/language"

	"github.com/jhoicas/Inventario-pos/internal/application/inventory"
	"github.com/jhoicas/Inventario-pos/internal/application/sales"
	"github.com/jhoicas/Inventario-pos/internal/application/usecase"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Inventario-pos/internal/infrastructure/pdf"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Inventario-pos/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Inventario-pos/internal/interfaces/http"
	"github.com/jhoicas/Inventario-pos/pkg/config"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// txRunner une las transacciones del libro y de ventas.
type txRunner interface {
	inventory.TxRunner
	sales.SaleTxRunner
}

// stores agrupa los repositorios del driver elegido.
type stores struct {
	tx        txRunner
	products  repository.ProductRepository
	locations repository.LocationRepository
	movements repository.StockMovementRepository
	balances  repository.StockBalanceRepository
	sales     repository.SaleRepository
	payments  repository.PaymentRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Str("sequence", cfg.Sales.SequenceDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		st   stores
		pool *pgxpool.Pool
	)
	switch cfg.Store.Driver {
	case config.DriverMemory:
		mem := memory.NewStore()
		st = stores{
			tx:        mem,
			products:  mem.Products(),
			locations: mem.Locations(),
			movements: mem.Movements(),
			balances:  mem.Balances(),
			sales:     mem.Sales(),
			payments:  mem.Payments(),
		}
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migración del esquema")
			}
			log.Info().Msg("esquema aplicado")
		}
		st = stores{
			tx:        postgres.NewTxRunner(pool),
			products:  postgres.NewProductRepository(pool),
			locations: postgres.NewLocationRepository(pool),
			movements: postgres.NewStockMovementRepository(pool),
			balances:  postgres.NewStockBalanceRepository(pool),
			sales:     postgres.NewSaleRepository(pool),
			payments:  postgres.NewPaymentRepository(pool),
		}
	}

	var allocator sales.SaleNumberAllocator
	switch cfg.Sales.SequenceDriver {
	case config.DriverRedis:
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		allocator = infraredis.NewSaleSequence(client)
	case config.DriverMemory:
		allocator = memory.NewSaleSequence()
	default:
		if pool == nil {
			log.Fatal().Msg("la secuencia postgres requiere STORE_DRIVER=postgres")
		}
		allocator = postgres.NewSaleSequence(pool)
	}

	ledger := inventory.NewLedgerUseCase(st.tx, st.products, st.locations, st.movements, st.balances, cfg.Inventory.ExpiryDays)
	saleUC := sales.NewSaleUseCase(st.tx, ledger, allocator, st.sales, st.payments, st.products, st.locations,
		log.Component("sales"), sales.Config{
			NumberPrefix: cfg.Sales.NumberPrefix,
			MaxAttempts:  cfg.Sales.NumberMaxAttempts,
		})
	receiptUC := sales.NewReceiptUseCase(st.sales, st.payments, st.products, st.locations,
		infrapdf.NewReceiptGenerator(language.Spanish))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.App.DocsEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "POS Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:      usecase.NewProductUseCase(st.products),
		LocationUC:     usecase.NewLocationUseCase(st.locations),
		Ledger:         ledger,
		Replenishment:  inventory.NewReplenishmentUseCase(st.balances),
		Sales:          saleUC,
		Receipts:       receiptUC,
		JWTSecret:      cfg.JWT.Secret,
		SalesPerMinute: cfg.Sales.RateLimitPerMinute,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
