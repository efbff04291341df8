package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/repository"
)

// galleryPages wraps the optional gallery cache. Cache failures are logged
// and otherwise ignored; the database stays the source of truth.
type galleryPages struct {
	cache  GalleryCache
	logger *zap.Logger
}

func newGalleryPages(cache GalleryCache, logger *zap.Logger) galleryPages {
	if logger == nil {
		logger = zap.NewNop()
	}
	return galleryPages{cache: cache, logger: logger}
}

func (g galleryPages) get(ctx context.Context, page repository.Page) ([]domain.GalleryEntry, bool) {
	if g.cache == nil {
		return nil, false
	}
	entries, ok, err := g.cache.Get(ctx, page.Limit, page.Offset)
	if err != nil {
		g.logger.Warn("gallery cache read failed", zap.Error(err))
		return nil, false
	}
	return entries, ok
}

func (g galleryPages) set(ctx context.Context, page repository.Page, entries []domain.GalleryEntry) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Set(ctx, page.Limit, page.Offset, entries); err != nil {
		g.logger.Warn("gallery cache write failed", zap.Error(err))
	}
}

func (g galleryPages) invalidate(ctx context.Context) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Invalidate(ctx); err != nil {
		g.logger.Warn("gallery cache invalidation failed", zap.Error(err))
	}
}
