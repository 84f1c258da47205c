package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/optica-core/internal/domain"
	"github.com/jhoicas/optica-core/internal/domain/entity"
	"github.com/jhoicas/optica-core/internal/domain/repository"
)

var (
	_ repository.CashRegisterRepository  = (*CashRegisterRepo)(nil)
	_ repository.CashSessionRepository   = (*CashSessionRepo)(nil)
	_ repository.CashOperationRepository = (*CashOperationRepo)(nil)
)

// CashRegisterRepo cajas en memoria.
type CashRegisterRepo struct{ s *Store }

func (r *CashRegisterRepo) Create(_ context.Context, reg *entity.CashRegister) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.registers[reg.ID]; ok {
		return domain.Conflict("caja duplicada: " + reg.ID)
	}
	r.s.registers[reg.ID] = *reg
	return nil
}

func (r *CashRegisterRepo) GetByID(_ context.Context, id string) (*entity.CashRegister, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	reg, ok := r.s.registers[id]
	if !ok {
		return nil, nil
	}
	return &reg, nil
}

// CashSessionRepo jornadas en memoria.
type CashSessionRepo struct{ s *Store }

func (r *CashSessionRepo) Create(_ context.Context, sess *entity.CashSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.sessions {
		if existing.RegisterID == sess.RegisterID && existing.IsOpen() {
			return domain.Conflict("la caja ya tiene una jornada abierta")
		}
	}
	r.s.sessions[sess.ID] = *sess
	return nil
}

func (r *CashSessionRepo) GetByID(_ context.Context, id string) (*entity.CashSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (r *CashSessionRepo) GetForUpdate(ctx context.Context, id string) (*entity.CashSession, error) {
	return r.GetByID(ctx, id)
}

func (r *CashSessionRepo) GetOpenByRegister(_ context.Context, registerID string) (*entity.CashSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, sess := range r.s.sessions {
		if sess.RegisterID == registerID && sess.IsOpen() {
			sess := sess
			return &sess, nil
		}
	}
	return nil, nil
}

func (r *CashSessionRepo) LastClosedByRegister(_ context.Context, registerID string) (*entity.CashSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var last *entity.CashSession
	for _, sess := range r.s.sessions {
		if sess.RegisterID != registerID || sess.IsOpen() || sess.ClosedAt == nil {
			continue
		}
		if last == nil || sess.ClosedAt.After(*last.ClosedAt) {
			sess := sess
			last = &sess
		}
	}
	return last, nil
}

func (r *CashSessionRepo) Update(_ context.Context, sess *entity.CashSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sessions[sess.ID]; !ok {
		return domain.NotFound("jornada", sess.ID)
	}
	r.s.sessions[sess.ID] = *sess
	return nil
}

// CashOperationRepo operaciones de caja en memoria.
type CashOperationRepo struct{ s *Store }

func (r *CashOperationRepo) Create(_ context.Context, op *entity.CashOperation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.operations[op.ID]; ok {
		return domain.Conflict("operación duplicada: " + op.ID)
	}
	r.s.operations[op.ID] = *op
	r.s.opSeq[op.ID] = r.s.nextSeq()
	return nil
}

func (r *CashOperationRepo) GetByID(_ context.Context, id string) (*entity.CashOperation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	op, ok := r.s.operations[id]
	if !ok {
		return nil, nil
	}
	return &op, nil
}

func (r *CashOperationRepo) ListBySession(_ context.Context, sessionID string) ([]*entity.CashOperation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.CashOperation{}
	for _, op := range r.s.operations {
		if op.SessionID == sessionID {
			op := op
			out = append(out, &op)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.s.opSeq[out[i].ID] < r.s.opSeq[out[j].ID] })
	return out, nil
}

func (r *CashOperationRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.operations[id]; !ok {
		return domain.NotFound("operación de caja", id)
	}
	delete(r.s.operations, id)
	delete(r.s.opSeq, id)
	return nil
}
