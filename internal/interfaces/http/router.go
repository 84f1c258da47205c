package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/optica-core/internal/application/caisse"
	"github.com/jhoicas/optica-core/internal/application/inventory"
	"github.com/jhoicas/optica-core/internal/application/ports"
	"github.com/jhoicas/optica-core/pkg/jwt"
	"github.com/jhoicas/optica-core/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName      string
	Transfers        *inventory.TransferUseCase
	Bulk             *inventory.BulkUseCase
	Ledger           *inventory.LedgerUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Sessions         *caisse.SessionUseCase
	Reports          *caisse.ReportUseCase
	Idempotency      ports.IdempotencyStore
	IdempotencyTTL   time.Duration
	// MetricsHandler se monta en /metrics si no es nil.
	MetricsHandler http.Handler
	Signer         *jwt.Signer
	Logger         *logger.Logger
}

// AppConfig configuración de Fiber compartida por el binario y los tests.
// Immutable copia params, query y cabeceras: los repositorios guardan esos strings
// más allá de la vida del request.
func AppConfig(appName string) fiber.Config {
	return fiber.Config{
		AppName:      appName,
		Immutable:    true,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: ErrorHandler,
	}
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api", AuthMiddleware(deps.Signer))
	if deps.Idempotency != nil {
		ttl := deps.IdempotencyTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		api.Use(IdempotencyMiddleware(deps.Idempotency, ttl, log.Named("idempotency")))
	}

	stock := RequireRole(RoleAdmin, RoleMagasinier)
	cash := RequireRole(RoleAdmin, RoleCaissier)

	// Traslados entre almacenes
	transferHandler := NewTransferHandler(deps.Transfers, deps.Bulk)
	transfers := api.Group("/transfers", stock)
	transfers.Post("/", transferHandler.Initiate)
	transfers.Post("/bulk/ship", transferHandler.BulkShip)
	transfers.Post("/bulk/receive", transferHandler.BulkReceive)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/ship", transferHandler.Ship)
	transfers.Post("/:id/receive", transferHandler.Receive)
	transfers.Post("/:id/cancel", transferHandler.Cancel)
	api.Get("/warehouses/:id/transfers/active", stock, transferHandler.ActiveForWarehouse)

	// Registros de inventario y libro de movimientos
	ledgerHandler := NewLedgerHandler(deps.Ledger, deps.RegisterMovement)
	records := api.Group("/records", stock)
	records.Get("/:id", transferHandler.GetRecord)
	records.Get("/:id/movements", ledgerHandler.RecordMovements)
	records.Get("/:id/reconcile", ledgerHandler.Reconcile)
	records.Post("/:id/ship", transferHandler.ShipFromRecord)
	records.Post("/:id/receive", transferHandler.ReceiveIntoRecord)
	records.Post("/:id/cancel", transferHandler.CancelForRecord)
	api.Get("/documents/:id/movements", stock, ledgerHandler.DocumentMovements)
	api.Post("/inventory/movements", stock, ledgerHandler.RegisterMovement)

	// Caja
	caisseHandler := NewCaisseHandler(deps.Sessions, deps.Reports)
	cg := api.Group("/caisse", cash)
	cg.Post("/registers/:id/open", caisseHandler.Open)
	cg.Get("/registers/:id/suggested-opening", caisseHandler.SuggestedOpening)
	cg.Get("/registers/:id/session", caisseHandler.OpenSession)
	cg.Get("/sessions/:id", caisseHandler.GetSession)
	cg.Post("/sessions/:id/operations", caisseHandler.RecordOperation)
	cg.Get("/sessions/:id/operations", caisseHandler.ListOperations)
	cg.Post("/sessions/:id/close", caisseHandler.Close)
	cg.Get("/sessions/:id/report", caisseHandler.Report)
	cg.Delete("/operations/:id", caisseHandler.DeleteOperation)
	cg.Post("/transfers", caisseHandler.Transfer)
}
