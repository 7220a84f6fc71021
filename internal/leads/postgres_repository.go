package leads

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/homequote/homequote/internal/flow"
	"github.com/homequote/homequote/internal/pricing"
)

// PgxQuerier is the subset of pgxpool.Pool the repository uses. It is
// also satisfied by pgxmock pools in tests.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool PgxQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxQuerier) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, lead *Lead) error {
	answers, err := json.Marshal(lead.Answers)
	if err != nil {
		return fmt.Errorf("leads: marshal answers: %w", err)
	}
	explanation, err := json.Marshal(lead.Explanation)
	if err != nil {
		return fmt.Errorf("leads: marshal explanation: %w", err)
	}

	query := `
		INSERT INTO leads (id, session_id, service_key, service_name, answers, estimated_price, price_min, price_max, explanation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := r.pool.Exec(ctx, query,
		lead.ID,
		lead.SessionID,
		string(lead.ServiceKey),
		lead.ServiceName,
		answers,
		lead.EstimatedPrice.String(),
		lead.PriceRange.Min.String(),
		lead.PriceRange.Max.String(),
		explanation,
		lead.CreatedAt,
	); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	return nil
}

const leadColumns = `id, session_id, service_key, service_name, answers, estimated_price::text, price_min::text, price_max::text, explanation, created_at`

// GetByID fetches a single lead.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// List returns leads newest first, filtered and paginated.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE ($1 = '' OR service_key = $1) ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, string(filter.Service), limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return out, nil
}

// Delete removes a lead by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("leads: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var (
		lead        Lead
		serviceKey  string
		answers     []byte
		price       string
		priceMin    string
		priceMax    string
		explanation []byte
	)
	if err := row.Scan(
		&lead.ID,
		&lead.SessionID,
		&serviceKey,
		&lead.ServiceName,
		&answers,
		&price,
		&priceMin,
		&priceMax,
		&explanation,
		&lead.CreatedAt,
	); err != nil {
		return nil, err
	}

	lead.ServiceKey = serviceKeyOrEmpty(serviceKey)
	if err := json.Unmarshal(answers, &lead.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if len(explanation) > 0 {
		if err := json.Unmarshal(explanation, &lead.Explanation); err != nil {
			return nil, fmt.Errorf("decode explanation: %w", err)
		}
	}

	var err error
	if lead.EstimatedPrice, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("decode estimated_price: %w", err)
	}
	if lead.PriceRange.Min, err = decimal.NewFromString(priceMin); err != nil {
		return nil, fmt.Errorf("decode price_min: %w", err)
	}
	if lead.PriceRange.Max, err = decimal.NewFromString(priceMax); err != nil {
		return nil, fmt.Errorf("decode price_max: %w", err)
	}
	if lead.Answers == nil {
		lead.Answers = flow.Answers{}
	}
	if lead.Explanation == nil {
		lead.Explanation = []pricing.LineItem{}
	}
	return &lead, nil
}
