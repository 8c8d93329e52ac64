package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/events"
)

// NotificationService handles emitting notifications for account events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotifyConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotifyConfig) *NotificationService {
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
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventValidationTokenIssued, n.handleValidationTokenIssued)
	n.dispatcher.Subscribe(events.EventUserValidated, n.handleUserValidated)
	n.dispatcher.Subscribe(events.EventTokensRevoked, n.handleTokensRevoked)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("principal_id", event.PrincipalID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleValidationTokenIssued(ctx context.Context, event events.Event) error {
	n.logger.Info("ValidationTokenIssued", zap.String("principal_id", event.PrincipalID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserValidated(ctx context.Context, event events.Event) error {
	n.logger.Info("UserValidated", zap.String("principal_id", event.PrincipalID))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTokensRevoked(ctx context.Context, event events.Event) error {
	n.logger.Info("TokensRevoked", zap.String("principal_id", event.PrincipalID), zap.String("role", string(event.Role)))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("principal_id", event.PrincipalID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("principal_id", event.PrincipalID),
		zap.String("event_type", string(event.Type)))
}
