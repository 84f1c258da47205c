package caisse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/optica-core/internal/application/caisse"
	"github.com/jhoicas/optica-core/internal/domain"
	"github.com/jhoicas/optica-core/internal/domain/entity"
)

type fakeReportGenerator struct {
	got *caisse.SessionReport
}

func (g *fakeReportGenerator) GenerateSessionReport(_ context.Context, r caisse.SessionReport) ([]byte, error) {
	g.got = &r
	return []byte("%PDF-fake"), nil
}

func TestReport_ProvisionalYDefinitivo(t *testing.T) {
	f := newCashFixture(t)
	ctx := context.Background()
	gen := &fakeReportGenerator{}
	reports := caisse.NewReportUseCase(f.uc, f.store.Registers(), gen)

	s := f.open(t, "reg-1", "100")
	f.record(t, s.ID, entity.OperationEncaissement, "40", entity.MeansEspeces, "")

	out, err := reports.Render(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(out))
	require.NotNil(t, gen.got)
	assert.True(t, gen.got.Provisional)
	assert.Equal(t, "Principal", gen.got.Register.Name)
	assert.Len(t, gen.got.Operations, 1)

	_, err = f.uc.Close(ctx, caisse.CloseSessionInput{SessionID: s.ID, ActualBalance: money("140"), Actor: "cajero-1"})
	require.NoError(t, err)
	rep, err := reports.Build(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, rep.Provisional)
	assert.True(t, rep.Session.Ecart.IsZero())

	_, err = reports.Render(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
