package postgres

import (
	"context"
	"fmt"
	"metalrates/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MarginRepository struct {
	pool *pgxpool.Pool
}

func (r *MarginRepository) GetAll(ctx context.Context) (map[domain.Metal]float64, error) {
	rows, err := r.pool.Query(ctx, `select metal_type, margin::float8 from metal_margins`)
	if err != nil {
		return nil, fmt.Errorf("failed to query margins: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.Metal]float64, 2)
	for rows.Next() {
		var metal string
		var margin float64
		if err = rows.Scan(&metal, &margin); err != nil {
			return nil, fmt.Errorf("failed to scan margin: %w", err)
		}
		out[domain.Metal(metal)] = margin
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating margins: %w", err)
	}
	return out, nil
}

func (r *MarginRepository) Upsert(ctx context.Context, metal domain.Metal, amount float64) (domain.Margin, error) {
	const q = `
		insert into metal_margins (metal_type, margin, updated_at) values ($1, $2, now())
		on conflict (metal_type) do update
		set margin = excluded.margin, updated_at = excluded.updated_at
		returning metal_type, margin::float8, updated_at;
	`

	var m domain.Margin
	var metalType string
	if err := r.pool.QueryRow(ctx, q, string(metal), amount).Scan(&metalType, &m.Amount, &m.UpdatedAt); err != nil {
		return domain.Margin{}, fmt.Errorf("failed to upsert margin for %q: %w", metal, err)
	}
	m.Metal = domain.Metal(metalType)
	return m, nil
}

func NewMarginRepository(pool *pgxpool.Pool) *MarginRepository {
	return &MarginRepository{pool: pool}
}
