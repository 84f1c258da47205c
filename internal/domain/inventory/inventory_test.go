package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/optica-core/internal/domain/entity"
	"github.com/jhoicas/optica-core/internal/domain/inventory"
)

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestWeightedAverageCost(t *testing.T) {
	cases := []struct {
		name          string
		onHand, cost  string
		inQty, inCost string
		want          string
	}{
		{"10 a 100 + 10 a 200", "10", "100", "10", "200", "150"},
		{"fila vacía toma el costo de la entrada", "0", "0", "5", "42.5", "42.5"},
		{"fila negativa tras ajuste", "-2", "80", "5", "90", "90"},
		{"entrada sin unidades no cambia el costo", "4", "70", "0", "999", "70"},
		{"redondeo a 4 decimales", "3", "10", "1", "11", "10.25"},
		{"tercios", "2", "1", "1", "2", "1.3333"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &entity.InventoryRecord{
				QuantiteActuelle: decimal.RequireFromString(tc.onHand),
				UnitCost:         decimal.RequireFromString(tc.cost),
			}
			got := inventory.WeightedAverageCost(rec, decimal.RequireFromString(tc.inQty), decimal.RequireFromString(tc.inCost))
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s", got)
		})
	}
}

func TestCanReserve_CuentaReservasActivas(t *testing.T) {
	// t2 ya salió: los 10 de on-hand son lo que queda tras expedirlo.
	rec := &entity.InventoryRecord{ID: "A", QuantiteActuelle: qty(10)}
	out := []*entity.Transfer{
		{ID: "t1", SourceRecordID: "A", Quantity: qty(4), Status: "RESERVED"},
		{ID: "t2", SourceRecordID: "A", Quantity: qty(3), Status: "SHIPPED"},
		{ID: "t3", SourceRecordID: "A", Quantity: qty(9), Status: "CANCELLED"},
	}

	assert.True(t, inventory.CanReserve(rec, out, qty(6)))
	assert.False(t, inventory.CanReserve(rec, out, qty(7)))
	assert.True(t, inventory.Available(rec, out).Equal(qty(6)))
	assert.True(t, inventory.ReservedQuantity("A", out, "").Equal(qty(4)))
	assert.True(t, inventory.ReservedQuantity("A", out, "t1").IsZero())
}

func TestDeriveStatut(t *testing.T) {
	cases := []struct {
		name     string
		onHand   int64
		outgoing []*entity.Transfer
		incoming *entity.Transfer
		want     string
	}{
		{"sin movimiento", 5, nil, nil, entity.StatutDisponible},
		{"vacío", 0, nil, nil, entity.StatutEpuise},
		{"todo reservado", 4, []*entity.Transfer{{SourceRecordID: "A", Quantity: qty(4), Status: "RESERVED"}}, nil, entity.StatutReserve},
		{"reserva parcial", 5, []*entity.Transfer{{SourceRecordID: "A", Quantity: qty(4), Status: "RESERVED"}}, nil, entity.StatutDisponible},
		{"entrante enviado", 0, nil, &entity.Transfer{Status: "SHIPPED"}, entity.StatutEnTransit},
		{"entrante reservado", 2, nil, &entity.Transfer{Status: "RESERVED"}, entity.StatutDisponible},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &entity.InventoryRecord{ID: "A", QuantiteActuelle: qty(tc.onHand)}
			assert.Equal(t, tc.want, inventory.DeriveStatut(rec, tc.outgoing, tc.incoming))
		})
	}
}

func TestReservedQuantity_SinExcepcionCuentaTrasladosSinID(t *testing.T) {
	// Traslados aún no persistidos llegan sin ID; sin excepción todos cuentan.
	out := []*entity.Transfer{
		{SourceRecordID: "A", Quantity: qty(2), Status: "RESERVED"},
		{SourceRecordID: "A", Quantity: qty(3), Status: "RESERVED"},
		{SourceRecordID: "B", Quantity: qty(7), Status: "RESERVED"},
	}
	assert.True(t, inventory.ReservedQuantity("A", out, "").Equal(qty(5)))
	assert.True(t, inventory.Available(&entity.InventoryRecord{ID: "A", QuantiteActuelle: qty(5)}, out).IsZero())
}

func TestDedupeTransferEntries(t *testing.T) {
	list := []*entity.StockMovement{
		{ID: "1", Type: entity.MovementReception, TransferNumber: "TR-1"},
		{ID: "2", Type: entity.MovementTransfertEntree, TransferNumber: "TR-1"},
		{ID: "3", Type: entity.MovementTransfertEntree, TransferNumber: "TR-2"},
		{ID: "4", Type: entity.MovementTransfertSortie, TransferNumber: "TR-1"},
	}
	got := inventory.DedupeTransferEntries(list)
	ids := make([]string, 0, len(got))
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"1", "3", "4"}, ids)
}
