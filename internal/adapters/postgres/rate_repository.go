package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"metalrates/internal/domain"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RateRepository struct {
	pool *pgxpool.Pool
}

type storedRateRow struct {
	Metal       string  `json:"metal_type"`
	BuyRate     float64 `json:"buy_rate"`
	DisplayRate float64 `json:"display_rate"`
	Margin      float64 `json:"margin"`
	Source      string  `json:"source"`
	UpdatedAt   string  `json:"updated_at"`
}

// UpsertRates writes one row per metal in a single statement, so a reader never
// sees half of a payload.
func (r *RateRepository) UpsertRates(ctx context.Context, rates []domain.StoredRate) error {
	if len(rates) == 0 {
		return nil
	}

	rows := make([]storedRateRow, 0, len(rates))
	for _, sr := range rates {
		rows = append(rows, storedRateRow{
			Metal:       string(sr.Metal),
			BuyRate:     sr.BuyRate,
			DisplayRate: sr.DisplayRate,
			Margin:      sr.Margin,
			Source:      sr.Source,
			UpdatedAt:   sr.UpdatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	payloadJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal rates: %w", err)
	}

	const q = `
		with input_rows as (
		  select * from json_to_recordset($1::json)
		    as r(metal_type text, buy_rate numeric, display_rate numeric, margin numeric, source text, updated_at timestamptz)
		)
		insert into live_rates (metal_type, buy_rate, display_rate, margin, source, updated_at)
		select metal_type, buy_rate, display_rate, margin, source, updated_at from input_rows
		on conflict (metal_type) do update
		set buy_rate = excluded.buy_rate,
		    display_rate = excluded.display_rate,
		    margin = excluded.margin,
		    source = excluded.source,
		    updated_at = excluded.updated_at;
	`
	if _, err = r.pool.Exec(ctx, q, json.RawMessage(payloadJSON)); err != nil {
		return fmt.Errorf("failed to upsert live rates: %w", err)
	}
	return nil
}

func (r *RateRepository) GetAll(ctx context.Context) ([]domain.StoredRate, error) {
	const q = `
		select metal_type, buy_rate::float8, display_rate::float8, margin::float8, source, updated_at
		from live_rates
		order by metal_type;
	`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query live rates: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.StoredRate, error) {
		var sr domain.StoredRate
		var metal string
		err := row.Scan(&metal, &sr.BuyRate, &sr.DisplayRate, &sr.Margin, &sr.Source, &sr.UpdatedAt)
		sr.Metal = domain.Metal(metal)
		return sr, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan live rates: %w", err)
	}
	return out, nil
}

func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}
