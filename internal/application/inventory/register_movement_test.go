package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/optica-core/internal/application/inventory"
	"github.com/jhoicas/optica-core/internal/domain"
	"github.com/jhoicas/optica-core/internal/domain/entity"
)

func TestRegisterMovement_EntradaRecalculaCosto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.stock(t, whA, 10) // 10 a 100

	cost := qty(200)
	mov, err := f.movements.RegisterMovement(ctx, inventory.MovementInputDTO{
		RecordID: rec, Type: entity.MovementEntreeAchat, Quantity: qty(10), UnitCost: &cost, DocumentID: "FAC-2",
	})
	require.NoError(t, err)
	assert.True(t, mov.Delta.Equal(qty(10)))
	assert.Equal(t, whA, mov.DestinationWarehouseID)

	got, err := f.store.Records().GetByID(ctx, rec)
	require.NoError(t, err)
	assert.True(t, got.QuantiteActuelle.Equal(qty(20)))
	assert.True(t, got.UnitCost.Equal(qty(150)), "got %s", got.UnitCost)
	assert.Equal(t, entity.StatutDisponible, got.Statut)
}

func TestRegisterMovement_VentaRespetaReservas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.stock(t, whA, 10)
	dst := f.stock(t, whB, 1)
	_ = f.initiate(t, src, dst, 7)

	_, err := f.movements.RegisterMovement(ctx, inventory.MovementInputDTO{
		RecordID: src, Type: entity.MovementSortieVente, Quantity: qty(4), DocumentID: "VTA-1",
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(qty(3)))

	mov, err := f.movements.RegisterMovement(ctx, inventory.MovementInputDTO{
		RecordID: src, Type: entity.MovementSortieVente, Quantity: qty(3), DocumentID: "VTA-1",
	})
	require.NoError(t, err)
	assert.True(t, mov.Delta.Equal(qty(-3)))
	assert.True(t, f.onHand(t, src).Equal(qty(7)))
	f.assertConsistent(t, src)
}

func TestRegisterMovement_AjusteEInventario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.stock(t, whA, 10)

	_, err := f.movements.RegisterMovement(ctx, inventory.MovementInputDTO{
		RecordID: rec, Type: entity.MovementAjustement, Quantity: qty(-2),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el ajuste exige motivo")

	_, err = f.movements.RegisterMovement(ctx, inventory.MovementInputDTO{
		RecordID: rec, Type: entity.MovementAjustement, Quantity: qty(-11), Reason: "merma",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.movements.RegisterMovement(ctx, inventory.MovementInputDTO{
		RecordID: rec, Type: entity.MovementAjustement, Quantity: qty(-2), Reason: "merma",
	})
	require.NoError(t, err)

	mov, err := f.movements.RegisterMovement(ctx, inventory.MovementInputDTO{
		RecordID: rec, Type: entity.MovementInventaire, Quantity: qty(5), Reason: "conteo anual",
	})
	require.NoError(t, err)
	assert.True(t, mov.Delta.Equal(qty(-3)))
	assert.True(t, f.onHand(t, rec).Equal(qty(5)))
	f.assertConsistent(t, rec)
}

func TestRegisterMovement_Rechazos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.stock(t, whA, 1)
	negative := decimal.NewFromInt(-1)

	cases := []struct {
		name string
		in   inventory.MovementInputDTO
		want error
	}{
		{"tipo de traslado", inventory.MovementInputDTO{RecordID: rec, Type: entity.MovementReception, Quantity: qty(1)}, domain.ErrInvalidInput},
		{"tipo desconocido", inventory.MovementInputDTO{RecordID: rec, Type: "REGALO", Quantity: qty(1)}, domain.ErrInvalidInput},
		{"sin registro ni producto", inventory.MovementInputDTO{Type: entity.MovementEntreeAchat, Quantity: qty(1)}, domain.ErrInvalidInput},
		{"costo negativo", inventory.MovementInputDTO{RecordID: rec, Type: entity.MovementEntreeAchat, Quantity: qty(1), UnitCost: &negative}, domain.ErrInvalidInput},
		{"venta sin fila", inventory.MovementInputDTO{ProductRef: "OTRO", WarehouseID: whA, Type: entity.MovementSortieVente, Quantity: qty(1)}, domain.ErrNotFound},
		{"almacén inexistente", inventory.MovementInputDTO{ProductRef: product, WarehouseID: "wh-x", Type: entity.MovementEntreeAchat, Quantity: qty(1)}, domain.ErrNotFound},
		{"rotura excesiva", inventory.MovementInputDTO{RecordID: rec, Type: entity.MovementCasse, Quantity: qty(2)}, domain.ErrInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.movements.RegisterMovement(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.True(t, f.onHand(t, rec).Equal(qty(1)))
}
