package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/org-directory/internal/config"
	"github.com/spec-kit/org-directory/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserCreated, n.handleUserCreated)
	n.dispatcher.Subscribe(events.EventUserUpdated, n.handleDirectoryChange)
	n.dispatcher.Subscribe(events.EventUserDeleted, n.handleUserDeleted)
	n.dispatcher.Subscribe(events.EventTeamCreated, n.handleDirectoryChange)
	n.dispatcher.Subscribe(events.EventTeamUpdated, n.handleDirectoryChange)
	n.dispatcher.Subscribe(events.EventTeamMembersChanged, n.handleMembersChanged)
	n.dispatcher.Subscribe(events.EventTeamDeleted, n.handleDirectoryChange)
	n.dispatcher.Subscribe(events.EventSessionStarted, n.handleSession)
	n.dispatcher.Subscribe(events.EventSessionEnded, n.handleSession)
}

func (n *NotificationService) handleUserCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("UserCreated", zap.String("user_id", event.EntityID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("UserDeleted", zap.String("user_id", event.EntityID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleMembersChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TeamMembersChanged", zap.String("team_id", event.EntityID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleDirectoryChange(ctx context.Context, event events.Event) error {
	n.logger.Debug("DirectoryChanged", zap.String("type", string(event.Type)), zap.String("entity_id", event.EntityID))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSession(_ context.Context, event events.Event) error {
	n.logger.Debug("Session", zap.String("type", string(event.Type)), zap.String("user_id", event.EntityID))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("entity_id", event.EntityID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("entity_id", event.EntityID),
		zap.String("event_type", string(event.Type)))
}
