package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nxsys/task-tracker/internal/config"
	"github.com/nxsys/task-tracker/internal/events"
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
	n.dispatcher.Subscribe(events.EventTaskCreated, n.handleTaskCreated)
	n.dispatcher.Subscribe(events.EventTaskUpdated, n.handleTaskUpdated)
	n.dispatcher.Subscribe(events.EventTaskStatusChanged, n.handleTaskStatusChanged)
	n.dispatcher.Subscribe(events.EventTaskAutoCompleted, n.handleTaskAutoCompleted)
	n.dispatcher.Subscribe(events.EventTaskDeleted, n.handleTaskDeleted)
}

func (n *NotificationService) handleTaskCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TaskCreated", zap.Int64("task_id", event.TaskID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTaskUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("TaskUpdated", zap.Int64("task_id", event.TaskID), zap.Any("payload", event.Payload))
	if p, ok := event.Payload.(events.TaskUpdatedPayload); ok && p.OldAssignee != p.NewAssignee {
		n.sendEmailNotificationStub(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleTaskStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TaskStatusChanged", zap.Int64("task_id", event.TaskID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTaskAutoCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("TaskAutoCompleted", zap.Int64("task_id", event.TaskID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTaskDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("TaskDeleted", zap.Int64("task_id", event.TaskID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("task_id", event.TaskID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("task_id", event.TaskID),
		zap.String("event_type", string(event.Type)))
}
