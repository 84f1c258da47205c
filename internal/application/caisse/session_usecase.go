package caisse

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/optica-core/internal/application/ports"
	"github.com/jhoicas/optica-core/internal/domain"
	dcaisse "github.com/jhoicas/optica-core/internal/domain/caisse"
	"github.com/jhoicas/optica-core/internal/domain/entity"
	"github.com/jhoicas/optica-core/internal/domain/repository"
	"github.com/jhoicas/optica-core/pkg/logger"
)

// Config parámetros de la jornada de caja.
type Config struct {
	// VarianceTolerance: ecart máximo (en valor absoluto) aceptado sin justificación.
	// Cero exige justificar cualquier diferencia; un valor negativo toma DefaultVarianceTolerance.
	VarianceTolerance decimal.Decimal
}

// SessionUseCase gestiona el ciclo OUVERTE -> FERMEE de las jornadas de caja.
// No existe reapertura: una jornada cerrada es definitiva.
type SessionUseCase struct {
	txRunner   TxRunner
	registers  repository.CashRegisterRepository
	sessions   repository.CashSessionRepository
	operations repository.CashOperationRepository
	cfg        Config
	events     ports.EventPublisher
	metrics    ports.Metrics
	log        *logger.Logger
	now        func() time.Time
}

// NewSessionUseCase construye el caso de uso. events, metrics y log pueden ser nil.
func NewSessionUseCase(
	txRunner TxRunner,
	registers repository.CashRegisterRepository,
	sessions repository.CashSessionRepository,
	operations repository.CashOperationRepository,
	cfg Config,
	events ports.EventPublisher,
	metrics ports.Metrics,
	log *logger.Logger,
) *SessionUseCase {
	if cfg.VarianceTolerance.IsNegative() {
		cfg.VarianceTolerance = dcaisse.DefaultVarianceTolerance
	}
	if events == nil {
		events = ports.NopPublisher{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SessionUseCase{
		txRunner:   txRunner,
		registers:  registers,
		sessions:   sessions,
		operations: operations,
		cfg:        cfg,
		events:     events,
		metrics:    metrics,
		log:        log.Named("caisse"),
		now:        time.Now,
	}
}

// OpenSessionInput entrada para abrir una jornada. OpeningBalance nil usa el saldo sugerido.
type OpenSessionInput struct {
	RegisterID     string
	OpeningBalance *decimal.Decimal
	Cashier        string
}

// RecordOperationInput entrada para registrar una operación de caja.
type RecordOperationInput struct {
	SessionID      string
	Type           string
	Amount         decimal.Decimal
	Means          string
	Classification string
	Reason         string
	InvoiceID      string
	Actor          string
}

// TransferInput entrada para un traslado de efectivo entre dos jornadas abiertas.
type TransferInput struct {
	Amount        decimal.Decimal
	FromSessionID string
	ToSessionID   string
	Reason        string
	Actor         string
}

// TransferResult las dos mitades del traslado.
type TransferResult struct {
	TransferID string
	Outflow    *entity.CashOperation
	Inflow     *entity.CashOperation
}

// CloseSessionInput entrada para el cierre con arqueo.
type CloseSessionInput struct {
	SessionID     string
	ActualBalance decimal.Decimal
	Justification string
	Actor         string
}

// SuggestedOpeningBalance devuelve el saldo real de la última jornada cerrada de la caja, o cero.
func (uc *SessionUseCase) SuggestedOpeningBalance(ctx context.Context, registerID string) (decimal.Decimal, error) {
	reg, err := uc.registers.GetByID(ctx, registerID)
	if err != nil {
		return decimal.Zero, err
	}
	if reg == nil {
		return decimal.Zero, domain.NotFound("caja", registerID)
	}
	last, err := uc.sessions.LastClosedByRegister(ctx, registerID)
	if err != nil {
		return decimal.Zero, err
	}
	return suggestedFrom(last), nil
}

// Open abre la jornada de una caja. Falla con ConflictError si ya hay una abierta.
func (uc *SessionUseCase) Open(ctx context.Context, in OpenSessionInput) (*entity.CashSession, error) {
	if in.RegisterID == "" {
		return nil, domain.Invalid("register_id", "requerido")
	}
	if in.OpeningBalance != nil && in.OpeningBalance.IsNegative() {
		return nil, domain.Invalid("opening_balance", "no puede ser negativo")
	}
	now := uc.now()
	var session *entity.CashSession
	err := uc.txRunner.RunCash(ctx, func(r CashRepos) error {
		reg, err := r.Registers.GetByID(ctx, in.RegisterID)
		if err != nil {
			return err
		}
		if reg == nil {
			return domain.NotFound("caja", in.RegisterID)
		}
		if !reg.Active {
			return domain.Invalid("register_id", "la caja está inactiva")
		}
		open, err := r.Sessions.GetOpenByRegister(ctx, in.RegisterID)
		if err != nil {
			return err
		}
		if open != nil {
			return domain.Conflict("la caja " + reg.Name + " ya tiene una jornada abierta")
		}

		opening := decimal.Zero
		if in.OpeningBalance != nil {
			opening = *in.OpeningBalance
		} else {
			last, err := r.Sessions.LastClosedByRegister(ctx, in.RegisterID)
			if err != nil {
				return err
			}
			opening = suggestedFrom(last)
		}

		session = &entity.CashSession{
			ID:             uuid.New().String(),
			RegisterID:     in.RegisterID,
			Statut:         entity.SessionOuverte,
			OpeningBalance: opening,
			OpenedAt:       now,
			OpenedBy:       in.Cashier,
			UpdatedAt:      now,
		}
		return r.Sessions.Create(ctx, session)
	})
	if err != nil {
		uc.fail("open", in.RegisterID, err)
		return nil, err
	}
	uc.done(ctx, "open", ports.EventCashSessionOpened, session, "", session.OpeningBalance, in.Cashier)
	return session, nil
}

// RecordOperation registra un encaissement o décaissement y actualiza los totales en la misma tx.
func (uc *SessionUseCase) RecordOperation(ctx context.Context, in RecordOperationInput) (*entity.CashOperation, error) {
	if err := normalizeOperation(&in); err != nil {
		return nil, err
	}
	now := uc.now()
	var (
		op      *entity.CashOperation
		session *entity.CashSession
	)
	err := uc.txRunner.RunCash(ctx, func(r CashRepos) error {
		s, err := lockOpenSession(ctx, r.Sessions, in.SessionID, "record_operation")
		if err != nil {
			return err
		}
		op = &entity.CashOperation{
			ID:             uuid.New().String(),
			SessionID:      s.ID,
			Type:           in.Type,
			Classification: in.Classification,
			Amount:         in.Amount,
			Means:          in.Means,
			InvoiceID:      in.InvoiceID,
			Reason:         in.Reason,
			CreatedBy:      in.Actor,
			CreatedAt:      now,
		}
		if op.Type == entity.OperationDecaissement && op.Means == entity.MeansEspeces {
			if balance := s.TheoreticalBalance(); op.Amount.GreaterThan(balance) {
				return &domain.InsufficientBalanceError{SessionID: s.ID, Balance: balance, Requested: op.Amount}
			}
		}
		dcaisse.Apply(s, op, 1)
		s.UpdatedAt = now
		if err := r.Operations.Create(ctx, op); err != nil {
			return err
		}
		if err := r.Sessions.Update(ctx, s); err != nil {
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		uc.fail("record_operation", in.SessionID, err)
		return nil, err
	}
	uc.done(ctx, "record_operation", ports.EventCashOperation, session, op.ID, op.Amount, in.Actor)
	return op, nil
}

// DeleteOperation elimina una operación mientras su jornada sigue abierta y revierte los totales.
// Las mitades de un traslado entre cajas no se eliminan por separado.
func (uc *SessionUseCase) DeleteOperation(ctx context.Context, operationID, actor string) error {
	if operationID == "" {
		return domain.Invalid("operation_id", "requerido")
	}
	now := uc.now()
	var (
		op      *entity.CashOperation
		session *entity.CashSession
	)
	err := uc.txRunner.RunCash(ctx, func(r CashRepos) error {
		var err error
		op, err = r.Operations.GetByID(ctx, operationID)
		if err != nil {
			return err
		}
		if op == nil {
			return domain.NotFound("operación de caja", operationID)
		}
		if op.TransferID != "" {
			return &domain.InvalidStateError{Entity: "operación de caja", ID: op.ID, State: "TRANSFERT_INTERNE", Action: "delete"}
		}
		s, err := lockOpenSession(ctx, r.Sessions, op.SessionID, "delete_operation")
		if err != nil {
			return err
		}
		before := s.TheoreticalBalance()
		dcaisse.Apply(s, op, -1)
		if s.TheoreticalBalance().IsNegative() {
			return &domain.InsufficientBalanceError{SessionID: s.ID, Balance: before, Requested: op.Amount}
		}
		s.UpdatedAt = now
		if err := r.Operations.Delete(ctx, op.ID); err != nil {
			return err
		}
		if err := r.Sessions.Update(ctx, s); err != nil {
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		uc.fail("delete_operation", operationID, err)
		return err
	}
	uc.log.Warn().
		Str("operation_id", op.ID).
		Str("session_id", op.SessionID).
		Str("type", op.Type).
		Str("amount", op.Amount.StringFixed(2)).
		Str("actor", actor).
		Msg("operación de caja eliminada")
	uc.done(ctx, "delete_operation", ports.EventCashOperationDelete, session, op.ID, op.Amount, actor)
	return nil
}

// Transfer mueve efectivo entre dos jornadas abiertas: DECAISSEMENT INTERNE en origen y
// ENCAISSEMENT INTERNE en destino, ambos en la misma transacción o ninguno.
func (uc *SessionUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.Invalid("amount", "debe ser positivo")
	}
	if in.FromSessionID == "" || in.ToSessionID == "" {
		return nil, domain.Invalid("session_id", "origen y destino requeridos")
	}
	if in.FromSessionID == in.ToSessionID {
		return nil, domain.Invalid("to_session_id", "origen y destino deben ser distintos")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "transfert inter-caisses"
	}
	now := uc.now()
	res := &TransferResult{TransferID: uuid.New().String()}
	var from *entity.CashSession
	err := uc.txRunner.RunCash(ctx, func(r CashRepos) error {
		first, second := in.FromSessionID, in.ToSessionID
		if second < first {
			first, second = second, first
		}
		a, err := lockOpenSession(ctx, r.Sessions, first, "transfer")
		if err != nil {
			return err
		}
		b, err := lockOpenSession(ctx, r.Sessions, second, "transfer")
		if err != nil {
			return err
		}
		src, dst := a, b
		if a.ID != in.FromSessionID {
			src, dst = b, a
		}
		if balance := src.TheoreticalBalance(); in.Amount.GreaterThan(balance) {
			return &domain.InsufficientBalanceError{SessionID: src.ID, Balance: balance, Requested: in.Amount}
		}

		res.Outflow = &entity.CashOperation{
			ID:             uuid.New().String(),
			SessionID:      src.ID,
			Type:           entity.OperationDecaissement,
			Classification: entity.ClassificationInterne,
			Amount:         in.Amount,
			Means:          entity.MeansEspeces,
			Reason:         reason,
			TransferID:     res.TransferID,
			CreatedBy:      in.Actor,
			CreatedAt:      now,
		}
		res.Inflow = &entity.CashOperation{
			ID:             uuid.New().String(),
			SessionID:      dst.ID,
			Type:           entity.OperationEncaissement,
			Classification: entity.ClassificationInterne,
			Amount:         in.Amount,
			Means:          entity.MeansEspeces,
			Reason:         reason,
			TransferID:     res.TransferID,
			CreatedBy:      in.Actor,
			CreatedAt:      now,
		}
		for _, pair := range []struct {
			s  *entity.CashSession
			op *entity.CashOperation
		}{{src, res.Outflow}, {dst, res.Inflow}} {
			dcaisse.Apply(pair.s, pair.op, 1)
			pair.s.UpdatedAt = now
			if err := r.Operations.Create(ctx, pair.op); err != nil {
				return err
			}
			if err := r.Sessions.Update(ctx, pair.s); err != nil {
				return err
			}
		}
		from = src
		return nil
	})
	if err != nil {
		uc.fail("transfer", in.FromSessionID, err)
		return nil, err
	}
	uc.done(ctx, "transfer", ports.EventCashTransfer, from, res.TransferID, in.Amount, in.Actor)
	return res, nil
}

// Close cierra la jornada con el saldo contado. ecart = real - teórico; si |ecart| supera
// la tolerancia se exige justificación. FERMEE es irreversible.
func (uc *SessionUseCase) Close(ctx context.Context, in CloseSessionInput) (*entity.CashSession, error) {
	if in.SessionID == "" {
		return nil, domain.Invalid("session_id", "requerido")
	}
	if in.ActualBalance.IsNegative() {
		return nil, domain.Invalid("actual_balance", "no puede ser negativo")
	}
	justification := strings.TrimSpace(in.Justification)
	now := uc.now()
	var session *entity.CashSession
	err := uc.txRunner.RunCash(ctx, func(r CashRepos) error {
		s, err := lockOpenSession(ctx, r.Sessions, in.SessionID, "close")
		if err != nil {
			return err
		}
		ecart := dcaisse.Ecart(s, in.ActualBalance)
		if dcaisse.NeedsJustification(ecart, uc.cfg.VarianceTolerance) && justification == "" {
			return domain.Invalid("justification", "obligatoria: ecart de "+ecart.StringFixed(2))
		}
		actual := in.ActualBalance
		s.ActualBalance = &actual
		s.Ecart = &ecart
		s.Justification = justification
		s.Statut = entity.SessionFermee
		s.ClosedAt = &now
		s.ClosedBy = in.Actor
		s.UpdatedAt = now
		if err := r.Sessions.Update(ctx, s); err != nil {
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		uc.fail("close", in.SessionID, err)
		return nil, err
	}
	uc.log.Info().
		Str("session_id", session.ID).
		Str("theoretical", session.TheoreticalBalance().StringFixed(2)).
		Str("actual", session.ActualBalance.StringFixed(2)).
		Str("ecart", session.Ecart.StringFixed(2)).
		Msg("arqueo de caja")
	uc.done(ctx, "close", ports.EventCashSessionClosed, session, "", *session.ActualBalance, in.Actor)
	return session, nil
}

// GetSession obtiene una jornada por ID.
func (uc *SessionUseCase) GetSession(ctx context.Context, id string) (*entity.CashSession, error) {
	s, err := uc.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("jornada", id)
	}
	return s, nil
}

// GetOpenSession devuelve la jornada abierta de la caja.
func (uc *SessionUseCase) GetOpenSession(ctx context.Context, registerID string) (*entity.CashSession, error) {
	s, err := uc.sessions.GetOpenByRegister(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("jornada abierta de la caja", registerID)
	}
	return s, nil
}

// ListOperations lista las operaciones de una jornada en orden cronológico.
func (uc *SessionUseCase) ListOperations(ctx context.Context, sessionID string) ([]*entity.CashOperation, error) {
	if _, err := uc.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return uc.operations.ListBySession(ctx, sessionID)
}

func (uc *SessionUseCase) done(ctx context.Context, operation, eventType string, s *entity.CashSession, opID string, amount decimal.Decimal, actor string) {
	uc.metrics.ObserveCash(operation, "ok")
	uc.log.Ctx(ctx).Info().
		Str("operation", operation).
		Str("session_id", s.ID).
		Str("register_id", s.RegisterID).
		Str("amount", amount.StringFixed(2)).
		Str("theoretical_balance", s.TheoreticalBalance().StringFixed(2)).
		Msg("operación de caja confirmada")
	event := ports.CashEvent{
		EventID:     uuid.New().String(),
		EventType:   eventType,
		SessionID:   s.ID,
		RegisterID:  s.RegisterID,
		OperationID: opID,
		Amount:      amount,
		Balance:     s.TheoreticalBalance(),
		Actor:       actor,
		Timestamp:   s.UpdatedAt,
	}
	if err := uc.events.PublishCash(ctx, event); err != nil {
		uc.log.Warn().Err(err).Str("session_id", s.ID).Msg("no se pudo publicar el evento de caja")
	}
}

func (uc *SessionUseCase) fail(operation, ref string, err error) {
	code := domain.Code(err)
	uc.metrics.ObserveCash(operation, code)
	ev := uc.log.Warn()
	if code == "INTERNAL" {
		ev = uc.log.Error()
	}
	ev.Err(err).Str("operation", operation).Str("ref", ref).Str("code", code).Msg("operación de caja rechazada")
}

func lockOpenSession(ctx context.Context, repo repository.CashSessionRepository, id, action string) (*entity.CashSession, error) {
	s, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("jornada", id)
	}
	if !s.IsOpen() {
		return nil, &domain.InvalidStateError{Entity: "jornada", ID: s.ID, State: s.Statut, Action: action}
	}
	return s, nil
}

func normalizeOperation(in *RecordOperationInput) error {
	if in.SessionID == "" {
		return domain.Invalid("session_id", "requerido")
	}
	if !dcaisse.ValidOperationType(in.Type) {
		return domain.Invalid("type", "debe ser ENCAISSEMENT o DECAISSEMENT")
	}
	if !in.Amount.IsPositive() {
		return domain.Invalid("amount", "debe ser positivo")
	}
	if in.Means == "" {
		in.Means = entity.MeansEspeces
	}
	if !dcaisse.ValidMeans(in.Means) {
		return domain.Invalid("means", "medio de pago desconocido: "+in.Means)
	}
	if in.Classification == "" {
		in.Classification = entity.ClassificationComptable
	}
	if !dcaisse.ValidClassification(in.Classification) {
		return domain.Invalid("classification", "debe ser COMPTABLE o INTERNE")
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Type == entity.OperationDecaissement && in.Reason == "" {
		return domain.Invalid("reason", "obligatorio en un décaissement")
	}
	return nil
}

func suggestedFrom(last *entity.CashSession) decimal.Decimal {
	if last == nil || last.ActualBalance == nil {
		return decimal.Zero
	}
	return *last.ActualBalance
}
