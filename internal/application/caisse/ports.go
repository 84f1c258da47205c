package caisse

import (
	"context"

	"github.com/jhoicas/optica-core/internal/domain/repository"
)

// CashRepos agrupa los repositorios de caja atados a una misma transacción.
type CashRepos struct {
	Registers  repository.CashRegisterRepository
	Sessions   repository.CashSessionRepository
	Operations repository.CashOperationRepository
}

// TxRunner ejecuta fn dentro de una transacción con los repositorios de caja.
type TxRunner interface {
	RunCash(ctx context.Context, fn func(repos CashRepos) error) error
}

// ReportGenerator renderiza el informe de una jornada (PDF).
type ReportGenerator interface {
	GenerateSessionReport(ctx context.Context, report SessionReport) ([]byte, error)
}
