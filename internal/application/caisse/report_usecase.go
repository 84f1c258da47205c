package caisse

import (
	"context"
	"time"

	"github.com/jhoicas/optica-core/internal/domain"
	"github.com/jhoicas/optica-core/internal/domain/entity"
	"github.com/jhoicas/optica-core/internal/domain/repository"
)

// SessionReport datos del informe de jornada. Provisional es true mientras la jornada sigue abierta
// (informe X); cerrada, el informe incluye el arqueo (informe Z).
type SessionReport struct {
	Register    *entity.CashRegister
	Session     *entity.CashSession
	Operations  []*entity.CashOperation
	Provisional bool
	GeneratedAt time.Time
}

// ReportUseCase genera el informe de una jornada.
type ReportUseCase struct {
	sessions  *SessionUseCase
	registers repository.CashRegisterRepository
	generator ReportGenerator
	now       func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(sessions *SessionUseCase, registers repository.CashRegisterRepository, generator ReportGenerator) *ReportUseCase {
	return &ReportUseCase{sessions: sessions, registers: registers, generator: generator, now: time.Now}
}

// Build reúne jornada, caja y operaciones.
func (uc *ReportUseCase) Build(ctx context.Context, sessionID string) (*SessionReport, error) {
	s, err := uc.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	reg, err := uc.registers.GetByID(ctx, s.RegisterID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, domain.NotFound("caja", s.RegisterID)
	}
	ops, err := uc.sessions.ListOperations(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionReport{
		Register:    reg,
		Session:     s,
		Operations:  ops,
		Provisional: s.IsOpen(),
		GeneratedAt: uc.now(),
	}, nil
}

// Render devuelve el PDF del informe.
func (uc *ReportUseCase) Render(ctx context.Context, sessionID string) ([]byte, error) {
	report, err := uc.Build(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateSessionReport(ctx, *report)
}
