package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"SmartRecover/internal/domain"
	"SmartRecover/internal/ports"
)

// Collection is an explicit debtor set supplied by the caller instead of the repository.
type Collection []domain.Debtor

var _ ports.DebtorSource = Collection(nil)

// FetchAll yields debtors in slice order.
func (c Collection) FetchAll(ctx context.Context, visit func(domain.Debtor) error) error {
	for _, d := range c {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := visit(d); err != nil {
			return err
		}
	}
	return nil
}

// MemoryRepository keeps debtors in a map. It backs ledger imports and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	debtors map[int64]domain.Debtor
}

var _ ports.DebtorRepository = (*MemoryRepository)(nil)

// NewMemoryRepository seeds the repository; later entries win on duplicate ids.
func NewMemoryRepository(debtors ...domain.Debtor) *MemoryRepository {
	r := &MemoryRepository{debtors: make(map[int64]domain.Debtor, len(debtors))}
	for _, d := range debtors {
		r.debtors[d.ID] = d
	}
	return r
}

// FetchAll yields debtors ordered by id.
func (r *MemoryRepository) FetchAll(ctx context.Context, visit func(domain.Debtor) error) error {
	r.mu.RLock()
	snapshot := make([]domain.Debtor, 0, len(r.debtors))
	for _, d := range r.debtors {
		snapshot = append(snapshot, d)
	}
	r.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID < snapshot[j].ID })
	return Collection(snapshot).FetchAll(ctx, visit)
}

// FetchByID returns a copy of the stored debtor.
func (r *MemoryRepository) FetchByID(ctx context.Context, id int64) (domain.Debtor, error) {
	if err := ctx.Err(); err != nil {
		return domain.Debtor{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.debtors[id]
	if !ok {
		return domain.Debtor{}, fmt.Errorf("debtor %d: %w", id, domain.ErrNotFound)
	}
	return d, nil
}

// Upsert stores or replaces a debtor.
func (r *MemoryRepository) Upsert(d domain.Debtor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debtors[d.ID] = d
}

// Delete removes a debtor; it is a no-op for unknown ids.
func (r *MemoryRepository) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.debtors, id)
}

// Len returns the number of stored debtors.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.debtors)
}
