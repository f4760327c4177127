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

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	infrakafka "github.com/jhoicas/stock-ledger/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stock-ledger/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
	}

	txRunner := postgres.NewTxRunner(pool)
	repos := postgres.NewRepos(pool)

	// Números de traslado: consecutivo diario en Redis si está configurado, si no la secuencia de PostgreSQL.
	var numbers inventory.TransferNumberGenerator = postgres.NewTransferNumberSequence(pool)
	if cfg.Redis.Addr != "" {
		rdb := infraredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		numbers = infraredis.NewTransferNumberGenerator(rdb, cfg.Redis.KeyPrefix)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("números de traslado desde Redis")
	}

	// Eventos de traslado en Kafka (opcional).
	var publisher inventory.TransferEventPublisher
	if cfg.Kafka.Enabled() {
		writer := infrakafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		kp := infrakafka.NewTransferPublisher(writer)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor Kafka")
			}
		}()
		publisher = kp
		log.Info().Str("topic", cfg.Kafka.Topic).Msg("eventos de traslado hacia Kafka")
	}

	var (
		promMetrics *metrics.Metrics
		appMetrics  inventory.Metrics
	)
	if cfg.Metrics.Enabled {
		promMetrics = metrics.New(cfg.Metrics.Namespace)
		appMetrics = promMetrics
	}

	ledgerUC := inventory.NewLedgerUseCase(txRunner, repos.Movements, appMetrics, log.Component("ledger"))
	stockUC := inventory.NewStockUseCase(txRunner, repos.Stocks, repos.Products, appMetrics, log.Component("stock"))
	replenishmentUC := inventory.NewReplenishmentUseCase(repos.Stocks)
	transferUC := inventory.NewTransferUseCase(txRunner, repos.Transfers, repos.Stocks, numbers, publisher, appMetrics, log.Component("transfers"))

	// PDF: remisión de traslado
	slipGenerator := infrapdf.NewMarotoSlipGenerator(cfg.Transfer.SlipCompany)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (requiere `swag init` previo)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:        ledgerUC,
		Stock:         stockUC,
		Replenishment: replenishmentUC,
		Transfers:     transferUC,
		SlipGenerator: slipGenerator,
		Metrics:       promMetrics,
		JWTSecret:     cfg.JWT.Secret,
		JWTIssuer:     cfg.JWT.Issuer,
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
