package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"metalrates/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingSettingsKey = "booking"

type SettingsRepository struct {
	pool *pgxpool.Pool
}

func (r *SettingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `select value from app_settings where key = $1`, bookingSettingsKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Settings{}, domain.ErrSettingsNotFound
		}
		return domain.Settings{}, fmt.Errorf("failed to select settings: %w", err)
	}

	var s domain.Settings
	if err = json.Unmarshal(raw, &s); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s domain.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	const q = `
		insert into app_settings (key, value, updated_at) values ($1, $2::jsonb, now())
		on conflict (key) do update
		set value = excluded.value, updated_at = excluded.updated_at;
	`
	if _, err = r.pool.Exec(ctx, q, bookingSettingsKey, json.RawMessage(raw)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}
