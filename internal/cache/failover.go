package cache

import (
	"context"
	"sync/atomic"
	"time"

	"lendit/internal/domain"
	"lendit/internal/models"

	"github.com/rs/zerolog"
)

// FailoverViewCache serves from the primary cache while it is healthy
// and degrades to the fallback when it starts failing. The primary is
// probed again a minute after the last failure.
type FailoverViewCache struct {
	primary   domain.ViewCache
	fallback  domain.ViewCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverViewCache(primary, fallback domain.ViewCache, logger *zerolog.Logger) *FailoverViewCache {
	return &FailoverViewCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverViewCache) GetItemView(ctx context.Context, itemID int64) (*models.ItemView, error) {
	if !c.isDown.Load() {
		view, err := c.primary.GetItemView(ctx, itemID)
		if err == nil {
			return view, nil
		}
		c.logger.Error().Err(err).Msg("Primary view cache failed, falling back to memory")
		c.isDown.Store(true)
		c.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if c.isDown.Load() && time.Since(c.lastCheck) > time.Minute {
		view, err := c.primary.GetItemView(ctx, itemID)
		if err == nil {
			c.isDown.Store(false)
			return view, nil
		}
		c.lastCheck = time.Now()
	}

	return c.fallback.GetItemView(ctx, itemID)
}

func (c *FailoverViewCache) SetItemView(ctx context.Context, view *models.ItemView, ttl time.Duration) error {
	if !c.isDown.Load() {
		err := c.primary.SetItemView(ctx, view, ttl)
		if err == nil {
			return nil
		}
		c.logger.Error().Err(err).Msg("Primary view cache failed, falling back to memory")
		c.isDown.Store(true)
		c.lastCheck = time.Now()
	}

	return c.fallback.SetItemView(ctx, view, ttl)
}

func (c *FailoverViewCache) InvalidateItem(ctx context.Context, itemID int64) error {
	if !c.isDown.Load() {
		err := c.primary.InvalidateItem(ctx, itemID)
		if err == nil {
			// Keep the fallback coherent as well.
			return c.fallback.InvalidateItem(ctx, itemID)
		}
		c.logger.Error().Err(err).Msg("Primary view cache failed, falling back to memory")
		c.isDown.Store(true)
		c.lastCheck = time.Now()
	}

	return c.fallback.InvalidateItem(ctx, itemID)
}
