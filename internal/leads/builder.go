package leads

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/homequote/homequote/internal/catalog"
	"github.com/homequote/homequote/internal/flow"
	"github.com/homequote/homequote/internal/pricing"
)

// Builder turns a completed question walk into a lead record. The price
// is recomputed from the stored answers at build time so the persisted
// figure always matches the answers it was derived from.
type Builder struct {
	catalog *catalog.Catalog
	engine  *flow.Engine
}

// NewBuilder creates a lead builder over the given catalog.
func NewBuilder(c *catalog.Catalog) *Builder {
	if c == nil {
		panic("leads: catalog cannot be nil")
	}
	return &Builder{
		catalog: c,
		engine:  flow.NewEngine(c),
	}
}

// Build creates a lead from a finished flow state. It fails if any
// question remains unanswered or if the price cannot be computed; no
// partial lead is ever produced.
func (b *Builder) Build(sessionID string, st *flow.State) (*Lead, error) {
	done, err := b.engine.Completed(st)
	if err != nil {
		return nil, fmt.Errorf("leads: %w", err)
	}
	if !done {
		return nil, ErrIncompleteFlow
	}

	svc, ok := b.catalog.Service(st.Service)
	if !ok {
		return nil, fmt.Errorf("leads: %w: %s", catalog.ErrUnknownService, st.Service)
	}

	result, err := pricing.Compute(svc, st.Answers)
	if err != nil {
		return nil, fmt.Errorf("leads: pricing failed: %w", err)
	}

	return &Lead{
		ID:             uuid.New().String(),
		SessionID:      sessionID,
		ServiceKey:     svc.Key,
		ServiceName:    svc.DisplayName,
		Answers:        st.Answers.Clone(),
		EstimatedPrice: result.SuggestedPrice,
		PriceRange:     result.Range,
		Explanation:    result.Explanation,
		CreatedAt:      time.Now().UTC(),
	}, nil
}
