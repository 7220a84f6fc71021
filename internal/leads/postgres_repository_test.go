package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/homequote/homequote/internal/catalog"
)

func TestPostgresRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	lead := testLead("lead-1", catalog.ServiceStonework)

	mock.ExpectExec("INSERT INTO leads").WithArgs(
		lead.ID,
		lead.SessionID,
		"stonework",
		lead.ServiceName,
		pgxmock.AnyArg(),
		"1000",
		"850",
		"1150",
		pgxmock.AnyArg(),
		lead.CreatedAt,
	).WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), lead); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepositoryGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "session_id", "service_key", "service_name", "answers",
		"estimated_price", "price_min", "price_max", "explanation", "created_at",
	}).AddRow(
		"lead-1", "sess-1", "painting", "Painting",
		[]byte(`{"area_m2":{"kind":"number","num":100}}`),
		"3000", "2550", "3450",
		[]byte(`[{"label":"Base price","amount":"2500"}]`),
		now,
	)
	mock.ExpectQuery("SELECT (.+) FROM leads WHERE id").WithArgs("lead-1").WillReturnRows(rows)

	lead, err := repo.GetByID(context.Background(), "lead-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if lead.ServiceKey != catalog.ServicePainting {
		t.Errorf("service key = %q", lead.ServiceKey)
	}
	if lead.EstimatedPrice.StringFixed(2) != "3000.00" {
		t.Errorf("price = %s", lead.EstimatedPrice)
	}
	if lead.Answers.Number("area_m2") != 100 {
		t.Errorf("answers = %v", lead.Answers)
	}
	if len(lead.Explanation) != 1 {
		t.Errorf("explanation = %v", lead.Explanation)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepositoryGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	rows := pgxmock.NewRows([]string{
		"id", "session_id", "service_key", "service_name", "answers",
		"estimated_price", "price_min", "price_max", "explanation", "created_at",
	})
	mock.ExpectQuery("SELECT (.+) FROM leads WHERE id").WithArgs("missing").WillReturnRows(rows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestPostgresRepositoryDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectExec("DELETE FROM leads").WithArgs("lead-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	if err := repo.Delete(context.Background(), "lead-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	mock.ExpectExec("DELETE FROM leads").WithArgs("missing").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("err = %v", err)
	}
}
