package leads

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homequote/homequote/internal/catalog"
	"github.com/homequote/homequote/internal/flow"
	"github.com/homequote/homequote/internal/pricing"
)

func testLead(id string, key catalog.ServiceKey) *Lead {
	return &Lead{
		ID:             id,
		SessionID:      "sess-" + id,
		ServiceKey:     key,
		ServiceName:    string(key),
		Answers:        flow.Answers{"area_m2": flow.NumberValue(10)},
		EstimatedPrice: decimal.NewFromInt(1000),
		PriceRange: pricing.Range{
			Min: decimal.NewFromInt(850),
			Max: decimal.NewFromInt(1150),
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestInMemoryRepositoryCRUD(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, testLead("a", catalog.ServicePainting)); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetByID(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if got.SessionID != "sess-a" {
		t.Errorf("session id = %q", got.SessionID)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("err = %v", err)
	}

	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "a"); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestInMemoryRepositoryList(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		key := catalog.ServicePainting
		if i%2 == 1 {
			key = catalog.ServiceCarpentry
		}
		if err := repo.Create(ctx, testLead(fmt.Sprintf("lead-%d", i), key)); err != nil {
			t.Fatal(err)
		}
	}

	all, err := repo.List(ctx, ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Fatalf("len = %d", len(all))
	}
	// Newest first.
	if all[0].ID != "lead-4" {
		t.Errorf("first = %q", all[0].ID)
	}

	painting, err := repo.List(ctx, ListFilter{Service: catalog.ServicePainting})
	if err != nil {
		t.Fatal(err)
	}
	if len(painting) != 3 {
		t.Fatalf("painting leads = %d", len(painting))
	}

	page, err := repo.List(ctx, ListFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].ID != "lead-3" {
		t.Fatalf("page = %v", []string{page[0].ID, page[1].ID})
	}
}
