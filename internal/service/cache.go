package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"motion_security/internal/logger"
	"motion_security/internal/models"
)

var emptyFaceSet = models.NewFaceSet(nil, time.Time{})

// RecognitionCache holds the latest snapshot of registered identities.
// Readers never lock; Load swaps the whole snapshot.
type RecognitionCache struct {
	src IdentitySource
	log *logger.Logger
	now Clock

	loadMu sync.Mutex
	set    atomic.Pointer[models.FaceSet]
}

func NewRecognitionCache(src IdentitySource, log *logger.Logger) *RecognitionCache {
	return &RecognitionCache{src: src, log: logger.OrNop(log), now: time.Now}
}

// Load fetches the registered set and replaces the snapshot. On failure the
// previous snapshot stays in place and is returned with the error.
func (c *RecognitionCache) Load(ctx context.Context) (*models.FaceSet, error) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	ids, err := c.src.LoadRegistered(ctx)
	if err != nil {
		c.log.Warnw("identity_cache_load_failed", "err", err, "kept", c.Current().Len())
		return c.Current(), fmt.Errorf("load registered identities: %w", err)
	}

	set := models.NewFaceSet(ids, c.now().UTC())
	c.set.Store(set)
	c.log.Infow("identity_cache_loaded", "count", set.Len())
	return set, nil
}

// Current returns the last loaded snapshot, or an empty set.
func (c *RecognitionCache) Current() *models.FaceSet {
	if s := c.set.Load(); s != nil {
		return s
	}
	return emptyFaceSet
}
