package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/events"
	"github.com/spec-kit/character-gallery/internal/service"
)

// Subscribers are the background consumers of domain events.
type Subscribers struct {
	Activity      *service.ActivityService
	Notifications *service.NotificationService
	Gallery       service.GalleryCache
	Logger        *zap.Logger
}

// Register attaches every subscriber to the dispatcher.
func Register(dispatcher events.Dispatcher, subs Subscribers) {
	if dispatcher == nil {
		return
	}
	logger := subs.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if subs.Activity != nil {
		dispatcher.SubscribeAll(subs.Activity.Record)
	}
	if subs.Notifications != nil {
		subs.Notifications.RegisterHandlers()
	}
	if subs.Gallery != nil {
		invalidate := galleryInvalidator(subs.Gallery)
		// Account removal cascades to characters and comments.
		dispatcher.Subscribe(domain.ActionUserDeleted, invalidate)
		dispatcher.Subscribe(domain.ActionAccountDeleted, invalidate)
	}
	logger.Info("event subscribers registered",
		zap.Bool("activity_log", subs.Activity != nil),
		zap.Bool("notifications", subs.Notifications != nil),
		zap.Bool("gallery_cache", subs.Gallery != nil))
}

func galleryInvalidator(cache service.GalleryCache) events.EventHandler {
	return func(ctx context.Context, _ events.Event) error {
		return cache.Invalidate(ctx)
	}
}
