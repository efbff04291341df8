package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/events"
	"github.com/spec-kit/character-gallery/internal/notify"
)

// Notification kinds sent to the delivery pipeline.
const (
	NotifyCharacterApproved  = "character_approved"
	NotifyCharacterRejected  = "character_rejected"
	NotifyCommentApproved    = "comment_approved"
	NotifyCommentRejected    = "comment_rejected"
	NotifyAccountCreated     = "account_created"
	NotifyTemporaryPassword  = "temporary_password_issued"
	NotifyAccountSuspended   = "account_suspended"
	NotifyAccountReactivated = "account_reactivated"
)

// IntentPublisher hands notification intents to the delivery pipeline.
type IntentPublisher interface {
	Publish(ctx context.Context, intent notify.Intent) error
}

// NotificationService turns domain events into notification intents.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  IntentPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, publisher IntentPublisher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil || n.publisher == nil {
		return
	}
	n.dispatcher.Subscribe(domain.ActionCharacterApproved, n.handleCharacterReviewed)
	n.dispatcher.Subscribe(domain.ActionCharacterRejected, n.handleCharacterReviewed)
	n.dispatcher.Subscribe(domain.ActionCommentApproved, n.handleCommentReviewed)
	n.dispatcher.Subscribe(domain.ActionCommentRejected, n.handleCommentReviewed)
	n.dispatcher.Subscribe(domain.ActionEmployeeCreated, n.handleAccountEvent)
	n.dispatcher.Subscribe(domain.ActionTemporaryPasswordIssued, n.handleAccountEvent)
	n.dispatcher.Subscribe(domain.ActionUserSuspended, n.handleAccountEvent)
	n.dispatcher.Subscribe(domain.ActionUserReactivated, n.handleAccountEvent)
}

func (n *NotificationService) handleCharacterReviewed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CharacterPayload)
	if !ok {
		n.logger.Warn("unexpected character payload", zap.String("event_type", string(event.Type)))
		return nil
	}
	kind := NotifyCharacterApproved
	if event.Type == domain.ActionCharacterRejected {
		kind = NotifyCharacterRejected
	}
	data := map[string]string{
		"character_id":   event.Target.ID,
		"character_name": event.Target.Name,
	}
	if payload.Reason != "" {
		data["reason"] = payload.Reason
	}
	return n.send(ctx, event, kind, payload.OwnerID, data)
}

func (n *NotificationService) handleCommentReviewed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentPayload)
	if !ok {
		n.logger.Warn("unexpected comment payload", zap.String("event_type", string(event.Type)))
		return nil
	}
	kind := NotifyCommentApproved
	if event.Type == domain.ActionCommentRejected {
		kind = NotifyCommentRejected
	}
	data := map[string]string{
		"comment_id":   event.Target.ID,
		"character_id": payload.CharacterID,
	}
	if payload.Reason != "" {
		data["reason"] = payload.Reason
	}
	return n.send(ctx, event, kind, payload.AuthorID, data)
}

// handleAccountEvent notifies the account holder. Temporary passwords are
// never part of an intent; the holder receives them from the issuing admin.
func (n *NotificationService) handleAccountEvent(ctx context.Context, event events.Event) error {
	var kind string
	switch event.Type {
	case domain.ActionEmployeeCreated:
		kind = NotifyAccountCreated
	case domain.ActionTemporaryPasswordIssued:
		kind = NotifyTemporaryPassword
	case domain.ActionUserSuspended:
		kind = NotifyAccountSuspended
	case domain.ActionUserReactivated:
		kind = NotifyAccountReactivated
	default:
		return nil
	}
	return n.send(ctx, event, kind, event.Target.ID, map[string]string{"pseudo": event.Target.Name})
}

func (n *NotificationService) send(ctx context.Context, event events.Event, kind, recipientID string, data map[string]string) error {
	if recipientID == "" {
		n.logger.Debug("notification without recipient skipped", zap.String("kind", kind))
		return nil
	}
	intent := notify.Intent{
		ID:          uuid.NewString(),
		Kind:        kind,
		RecipientID: recipientID,
		Data:        data,
		CreatedAt:   n.now().UTC(),
	}
	if err := n.publisher.Publish(ctx, intent); err != nil {
		n.logger.Warn("notification publish failed",
			zap.String("kind", kind),
			zap.String("event_id", event.ID),
			zap.Error(err))
		return err
	}
	return nil
}
