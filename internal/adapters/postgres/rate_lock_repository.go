package postgres

import (
	"context"
	"errors"
	"fmt"
	"metalrates/internal/domain"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RateLockRepository stores frozen-rate bookings. After insert only status and
// fulfilled_at ever change.
type RateLockRepository struct {
	pool *pgxpool.Pool
}

const lockColumns = `id, metal_type, weight_grams::float8, locked_rate::float8, total_amount::float8,
	advance_amount::float8, contact, status, expires_at, created_at, fulfilled_at`

func scanLock(row pgx.Row) (domain.RateLock, error) {
	var l domain.RateLock
	var metal, status string
	err := row.Scan(&l.ID, &metal, &l.WeightGrams, &l.LockedRate, &l.TotalAmount,
		&l.AdvanceAmount, &l.Contact, &status, &l.ExpiresAt, &l.CreatedAt, &l.FulfilledAt)
	l.Metal = domain.Metal(metal)
	l.Status = domain.LockStatus(status)
	return l, err
}

func (r *RateLockRepository) Create(ctx context.Context, lock domain.RateLock) (domain.RateLock, error) {
	q := `
		insert into rate_locks (id, metal_type, weight_grams, locked_rate, total_amount, advance_amount,
		                        contact, status, expires_at, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, 'locked', $8, $9)
		returning ` + lockColumns + `;`

	created, err := scanLock(r.pool.QueryRow(ctx, q,
		lock.ID, string(lock.Metal), lock.WeightGrams, lock.LockedRate, lock.TotalAmount,
		lock.AdvanceAmount, lock.Contact, lock.ExpiresAt, lock.CreatedAt,
	))
	if err != nil {
		return domain.RateLock{}, fmt.Errorf("failed to insert rate lock: %w", err)
	}
	return created, nil
}

func (r *RateLockRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.RateLock, error) {
	q := `select ` + lockColumns + ` from rate_locks where id = $1;`

	l, err := scanLock(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RateLock{}, domain.ErrLockNotFound
		}
		return domain.RateLock{}, fmt.Errorf("failed to select rate lock %s: %w", id, err)
	}
	return l, nil
}

// MarkFulfilled moves a lock from locked to fulfilled only while it has not expired at the
// given instant. A missing row yields ErrLockNotFound; any other state ErrLockNotActive.
func (r *RateLockRepository) MarkFulfilled(ctx context.Context, id uuid.UUID, at time.Time) (domain.RateLock, error) {
	q := `
		update rate_locks
		set status = 'fulfilled', fulfilled_at = $2
		where id = $1 and status = 'locked' and expires_at > $2
		returning ` + lockColumns + `;`

	l, err := scanLock(r.pool.QueryRow(ctx, q, id, at))
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.RateLock{}, fmt.Errorf("failed to fulfill rate lock %s: %w", id, err)
	}

	var exists bool
	if err = r.pool.QueryRow(ctx, `select exists(select 1 from rate_locks where id = $1)`, id).Scan(&exists); err != nil {
		return domain.RateLock{}, fmt.Errorf("failed to check rate lock %s: %w", id, err)
	}
	if !exists {
		return domain.RateLock{}, domain.ErrLockNotFound
	}
	return domain.RateLock{}, domain.ErrLockNotActive
}

func NewRateLockRepository(pool *pgxpool.Pool) *RateLockRepository {
	return &RateLockRepository{pool: pool}
}
