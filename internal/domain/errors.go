package domain

import "errors"

var (
	ErrInvalidMetal     = errors.New("unsupported metal type")
	ErrInvalidMargin    = errors.New("invalid margin value")
	ErrInvalidWeight    = errors.New("invalid weight")
	ErrInvalidContact   = errors.New("contact reference is required")
	ErrInvalidSettings  = errors.New("invalid settings")
	ErrSettingsNotFound = errors.New("settings not found")
	ErrLockNotFound     = errors.New("rate lock not found")
	ErrLockNotActive    = errors.New("rate lock is not active")
	ErrRateUnavailable  = errors.New("rate unavailable")
)
