package cache

import (
	"context"
	"errors"
	"fmt"
	"metalrates/internal/adapters"
	"metalrates/internal/domain"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const settingsKey = "settings:booking"

// CachedSettings is a read-through cache in front of the settings repository.
// Save writes through and replaces the cached value. A missing row reads as
// the defaults.
type CachedSettings struct {
	repo  adapters.SettingsRepository
	cache *gocache.Cache
}

func (c *CachedSettings) Get(ctx context.Context) (domain.Settings, error) {
	if v, ok := c.cache.Get(settingsKey); ok {
		if s, ok := v.(domain.Settings); ok {
			return s, nil
		}
	}

	s, err := c.repo.Get(ctx)
	if errors.Is(err, domain.ErrSettingsNotFound) {
		s, err = domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	c.cache.SetDefault(settingsKey, s)
	return s, nil
}

func (c *CachedSettings) Save(ctx context.Context, s domain.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := c.repo.Save(ctx, s); err != nil {
		c.cache.Delete(settingsKey)
		return err
	}
	c.cache.SetDefault(settingsKey, s)
	return nil
}

func NewCachedSettings(repo adapters.SettingsRepository, ttl time.Duration) *CachedSettings {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedSettings{repo: repo, cache: gocache.New(ttl, 2*ttl)}
}
