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

	"github.com/jhoicas/optica-core/internal/application/caisse"
	"github.com/jhoicas/optica-core/internal/application/inventory"
	"github.com/jhoicas/optica-core/internal/application/ports"
	"github.com/jhoicas/optica-core/internal/infrastructure/kafka"
	"github.com/jhoicas/optica-core/internal/infrastructure/memory"
	"github.com/jhoicas/optica-core/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/optica-core/internal/infrastructure/pdf"
	"github.com/jhoicas/optica-core/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/optica-core/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/optica-core/internal/interfaces/http"
	"github.com/jhoicas/optica-core/pkg/config"
	"github.com/jhoicas/optica-core/pkg/jwt"
	"github.com/jhoicas/optica-core/pkg/logger"
	"github.com/jhoicas/optica-core/pkg/tracing"
)

const version = "1.0.0"

//go:generate swag init -g cmd/api/main.go -d ../../ -o ../../docs --outputTypes json

// @title           Optica Core API
// @version         1.0.0
// @description     Traslados entre almacenes, libro de stock y jornadas de caja.
// @BasePath        /
// @schemes         http https
// @accept          json
// @produce         json
// @securityDefinitions.apikey Bearer
// @in              header
// @name            Authorization
// @description     Bearer <token>
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

	signer, err := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.Expiration)*time.Minute)
	if err != nil {
		log.Fatal().Err(err).Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		tp, err := tracing.Init(cfg.App.Name, version, cfg.Tracing.JaegerEndpoint, log)
		if err != nil {
			log.Fatal().Err(err).Msg("inicializar tracing")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
				log.Error().Err(err).Msg("apagado del tracer")
			}
		}()
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	warehouseRepo := postgres.NewWarehouseRepository(pool)
	recordRepo := postgres.NewInventoryRecordRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	registerRepo := postgres.NewCashRegisterRepository(pool)
	sessionRepo := postgres.NewCashSessionRepository(pool)
	operationRepo := postgres.NewCashOperationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Eventos: Kafka si hay brokers; si no, se descartan.
	var events ports.EventPublisher = ports.NopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers, kafka.Topics{
			Transfers: cfg.Kafka.TopicTransfers,
			Caisse:    cfg.Kafka.TopicCaisse,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("publicador Kafka")
		}
		defer publisher.Close()
		events = publisher
	}

	var appMetrics ports.Metrics = ports.NopMetrics{}
	var prom *metrics.Prometheus
	if cfg.Metrics.Enabled {
		prom = metrics.New("optica_core")
		appMetrics = prom
	}

	// Idempotencia: Redis si está configurado; si no, memoria local (una sola instancia).
	var idempotency ports.IdempotencyStore = memory.NewIdempotencyStore()
	if cfg.Redis.Addr != "" {
		client, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		idempotency = infraredis.NewIdempotencyStore(client)
	}

	transferUC := inventory.NewTransferUseCase(txRunner, recordRepo, transferRepo, warehouseRepo, events, appMetrics, log)
	bulkUC := inventory.NewBulkUseCase(transferUC)
	ledgerUC := inventory.NewLedgerUseCase(recordRepo, movementRepo)
	registerMovementUC := inventory.NewRegisterMovementUseCase(txRunner, warehouseRepo, log)
	sessionUC := caisse.NewSessionUseCase(txRunner, registerRepo, sessionRepo, operationRepo,
		caisse.Config{VarianceTolerance: cfg.Caisse.VarianceTolerance}, events, appMetrics, log)
	reportUC := caisse.NewReportUseCase(sessionUC, registerRepo, infrapdf.NewMarotoReportGenerator())

	app := fiber.New(httpRouter.AppConfig(cfg.App.Name))
	app.Use(recover.New())
	if cfg.Tracing.Enabled {
		app.Use(httpRouter.TracingMiddleware(cfg.App.Name))
	}
	if prom != nil {
		app.Use(httpRouter.MetricsMiddleware(prom))
	}
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Optica Core API",
	}))

	deps := httpRouter.RouterDeps{
		ServiceName:      cfg.App.Name,
		Transfers:        transferUC,
		Bulk:             bulkUC,
		Ledger:           ledgerUC,
		RegisterMovement: registerMovementUC,
		Sessions:         sessionUC,
		Reports:          reportUC,
		Idempotency:      idempotency,
		IdempotencyTTL:   cfg.Redis.IdempotencyTTL,
		Signer:           signer,
		Logger:           log,
	}
	if prom != nil {
		deps.MetricsHandler = prom.Handler()
	}
	httpRouter.Router(app, deps)

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
