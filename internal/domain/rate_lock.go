package domain

import (
	"time"

	"github.com/google/uuid"
)

type LockStatus string

const (
	LockStatusLocked    LockStatus = "locked"
	LockStatusFulfilled LockStatus = "fulfilled"
	LockStatusExpired   LockStatus = "expired"
)

type RateLock struct {
	ID            uuid.UUID  `json:"id"`
	Metal         Metal      `json:"metal_type"`
	WeightGrams   float64    `json:"weight_grams"`
	LockedRate    float64    `json:"locked_rate"`
	TotalAmount   float64    `json:"total_amount"`
	AdvanceAmount float64    `json:"advance_amount"`
	Contact       string     `json:"contact"`
	Status        LockStatus `json:"status"`
	ExpiresAt     time.Time  `json:"expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
	FulfilledAt   *time.Time `json:"fulfilled_at,omitempty"`
}

// StatusAt resolves expiry passively: a locked row past its expiry reads as expired.
func (l RateLock) StatusAt(now time.Time) LockStatus {
	if l.Status == LockStatusLocked && !now.Before(l.ExpiresAt) {
		return LockStatusExpired
	}
	return l.Status
}
