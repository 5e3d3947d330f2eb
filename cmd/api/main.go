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

	"github.com/pasalhq/pasal-erp/internal/application/auth"
	"github.com/pasalhq/pasal-erp/internal/application/exchange"
	"github.com/pasalhq/pasal-erp/internal/application/fulfillment"
	"github.com/pasalhq/pasal-erp/internal/application/inventory"
	"github.com/pasalhq/pasal-erp/internal/application/ledger"
	"github.com/pasalhq/pasal-erp/internal/application/usecase"
	"github.com/pasalhq/pasal-erp/internal/infrastructure/notify"
	"github.com/pasalhq/pasal-erp/internal/infrastructure/postgres"
	httpRouter "github.com/pasalhq/pasal-erp/internal/interfaces/http"
	"github.com/pasalhq/pasal-erp/pkg/config"
	"github.com/pasalhq/pasal-erp/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	variantRepo := postgres.NewVariantRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	vendorRepo := postgres.NewVendorRepository(pool)
	orderLogRepo := postgres.NewOrderLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	stockLedger := ledger.New(log)
	notifier := notify.NewSMSNotifier(cfg.SMS, log)

	engine := inventory.NewEngine(txRunner, stockLedger, log)
	transition := fulfillment.NewService(txRunner, stockLedger, notifier, log)
	exchangeSvc := exchange.NewService(txRunner, stockLedger, log)
	orderUC := usecase.NewOrderUseCase(txRunner, orderLogRepo, log)
	productUC := usecase.NewProductUseCase(productRepo, variantRepo, movementRepo)
	vendorUC := usecase.NewVendorUseCase(vendorRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Pasal ERP API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		ProductUC:  productUC,
		VendorUC:   vendorUC,
		OrderUC:    orderUC,
		Transition: transition,
		Engine:     engine,
		Exchange:   exchangeSvc,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
