package leads

import (
	"context"
	"sync"

	"github.com/homequote/homequote/internal/catalog"
)

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, lead *Lead) error
	GetByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter ListFilter) ([]*Lead, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is an in-memory Repository used in tests and local
// runs without Postgres.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	order []string
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// Create stores a lead in memory
func (r *InMemoryRepository) Create(_ context.Context, lead *Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.leads[lead.ID]; !exists {
		r.order = append(r.order, lead.ID)
	}
	copied := *lead
	r.leads[lead.ID] = &copied
	return nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	copied := *lead
	return &copied, nil
}

// List returns leads newest first, filtered and paginated.
func (r *InMemoryRepository) List(_ context.Context, filter ListFilter) ([]*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*Lead, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		lead := r.leads[r.order[i]]
		if filter.Service != "" && lead.ServiceKey != filter.Service {
			continue
		}
		matched = append(matched, lead)
	}

	offset := filter.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	out := make([]*Lead, len(matched))
	for i, lead := range matched {
		copied := *lead
		out[i] = &copied
	}
	return out, nil
}

// Delete removes a lead by ID
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[id]; !ok {
		return ErrLeadNotFound
	}
	delete(r.leads, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)

// serviceKeyOrEmpty parses a filter value from a query string.
func serviceKeyOrEmpty(raw string) catalog.ServiceKey {
	key := catalog.ServiceKey(raw)
	if key.Valid() {
		return key
	}
	return ""
}
