// Package memory implementa los repositorios y los TxRunner en memoria (tests y desarrollo local).
//
// Las transacciones se serializan con un mutex; ante error se restaura una copia del estado
// tomada al inicio, lo que da el mismo resultado observable que un Rollback en PostgreSQL.
// Las entidades se copian al guardar y al leer, así que modificar un puntero devuelto no
// altera el almacén hasta llamar a Update.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/optica-core/internal/application/caisse"
	"github.com/jhoicas/optica-core/internal/application/inventory"
	"github.com/jhoicas/optica-core/internal/domain/entity"
)

var (
	_ inventory.TxRunner = (*Store)(nil)
	_ caisse.TxRunner    = (*Store)(nil)
)

// Store guarda todo el estado del núcleo.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	warehouses map[string]entity.Warehouse
	records    map[string]entity.InventoryRecord
	transfers  map[string]entity.Transfer
	movements  []entity.StockMovement
	registers  map[string]entity.CashRegister
	sessions   map[string]entity.CashSession
	operations map[string]entity.CashOperation
	opSeq      map[string]int64
	seq        int64
}

type snapshot struct {
	warehouses map[string]entity.Warehouse
	records    map[string]entity.InventoryRecord
	transfers  map[string]entity.Transfer
	movements  []entity.StockMovement
	registers  map[string]entity.CashRegister
	sessions   map[string]entity.CashSession
	operations map[string]entity.CashOperation
	opSeq      map[string]int64
	seq        int64
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		warehouses: make(map[string]entity.Warehouse),
		records:    make(map[string]entity.InventoryRecord),
		transfers:  make(map[string]entity.Transfer),
		registers:  make(map[string]entity.CashRegister),
		sessions:   make(map[string]entity.CashSession),
		operations: make(map[string]entity.CashOperation),
		opSeq:      make(map[string]int64),
	}
}

// Warehouses, Records, ... devuelven repositorios fuera de transacción (equivalente al pool).
func (s *Store) Warehouses() *WarehouseRepo     { return &WarehouseRepo{s: s} }
func (s *Store) Records() *RecordRepo           { return &RecordRepo{s: s} }
func (s *Store) Transfers() *TransferRepo       { return &TransferRepo{s: s} }
func (s *Store) Movements() *MovementRepo       { return &MovementRepo{s: s} }
func (s *Store) Registers() *CashRegisterRepo   { return &CashRegisterRepo{s: s} }
func (s *Store) Sessions() *CashSessionRepo     { return &CashSessionRepo{s: s} }
func (s *Store) Operations() *CashOperationRepo { return &CashOperationRepo{s: s} }

// Run ejecuta fn con los repositorios de stock; revierte todo si fn devuelve error.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.StockRepos) error) error {
	return s.withTx(ctx, func() error {
		return fn(inventory.StockRepos{
			Records:   s.Records(),
			Transfers: s.Transfers(),
			Movements: s.Movements(),
		})
	})
}

// RunCash ejecuta fn con los repositorios de caja; revierte todo si fn devuelve error.
func (s *Store) RunCash(ctx context.Context, fn func(repos caisse.CashRepos) error) error {
	return s.withTx(ctx, func() error {
		return fn(caisse.CashRepos{
			Registers:  s.Registers(),
			Sessions:   s.Sessions(),
			Operations: s.Operations(),
		})
	})
}

func (s *Store) withTx(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// AllMovements devuelve una copia del libro en orden de inserción.
func (s *Store) AllMovements() []entity.StockMovement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.StockMovement, len(s.movements))
	copy(out, s.movements)
	return out
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		warehouses: cloneMap(s.warehouses),
		records:    cloneMap(s.records),
		transfers:  cloneMap(s.transfers),
		movements:  append([]entity.StockMovement(nil), s.movements...),
		registers:  cloneMap(s.registers),
		sessions:   cloneMap(s.sessions),
		operations: cloneMap(s.operations),
		opSeq:      cloneMap(s.opSeq),
		seq:        s.seq,
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses = snap.warehouses
	s.records = snap.records
	s.transfers = snap.transfers
	s.movements = snap.movements
	s.registers = snap.registers
	s.sessions = snap.sessions
	s.operations = snap.operations
	s.opSeq = snap.opSeq
	s.seq = snap.seq
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
