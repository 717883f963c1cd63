package cache

import (
	"context"
	"sync"
	"time"

	"lendit/internal/models"
)

type memoryEntry struct {
	view      *models.ItemView
	expiresAt time.Time
}

// MemoryViewCache is the in-process fallback used when Redis is
// unavailable or disabled.
type MemoryViewCache struct {
	views sync.Map
}

func NewMemoryViewCache() *MemoryViewCache {
	return &MemoryViewCache{}
}

func (c *MemoryViewCache) GetItemView(ctx context.Context, itemID int64) (*models.ItemView, error) {
	val, ok := c.views.Load(itemID)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		c.views.Delete(itemID)
		return nil, nil
	}
	return entry.view, nil
}

func (c *MemoryViewCache) SetItemView(ctx context.Context, view *models.ItemView, ttl time.Duration) error {
	c.views.Store(view.ID, &memoryEntry{view: view, expiresAt: time.Now().Add(ttl)})
	return nil
}

func (c *MemoryViewCache) InvalidateItem(ctx context.Context, itemID int64) error {
	c.views.Delete(itemID)
	return nil
}
