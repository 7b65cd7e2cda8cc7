package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/canteen-central/canteen-api/internal/models"
	"github.com/canteen-central/canteen-api/internal/realtime"
	"github.com/canteen-central/canteen-api/internal/workflow"
	appErrors "github.com/canteen-central/canteen-api/pkg/errors"
	"github.com/canteen-central/canteen-api/pkg/jobs"
)

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error)
	Archive(ctx context.Context, id, ownerID string) error
	UnreadCount(ctx context.Context, ownerID string) (int, error)
}

type realtimePublisher interface {
	SendToUser(userID string, message interface{}) int
}

type deliveryObserver interface {
	ObserveNotification(delivered bool)
}

// NotificationService persists notifications and fans them out to live
// WebSocket connections through a background queue.
type NotificationService struct {
	repo     notificationStore
	realtime realtimePublisher
	observer deliveryObserver
	queue    *jobs.Queue
	logger   *zap.Logger
}

type notificationJob struct {
	Notification *models.Notification `json:"notification"`
}

// NotificationServiceOption configures the service.
type NotificationServiceOption func(*NotificationService)

// WithDeliveryObserver attaches a metrics observer for push outcomes.
func WithDeliveryObserver(o deliveryObserver) NotificationServiceOption {
	return func(s *NotificationService) { s.observer = o }
}

// NewNotificationService constructs the service and its delivery queue. Call
// Start before dispatching and Stop on shutdown.
func NewNotificationService(repo notificationStore, publisher realtimePublisher, cfg jobs.QueueConfig, logger *zap.Logger, opts ...NotificationServiceOption) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		repo:     repo,
		realtime: publisher,
		logger:   logger,
	}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	s.queue = jobs.NewQueue("notifications", s.handleDelivery, cfg)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery queue.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Dispatch stores the notification for its owner and queues the realtime
// push. The write is synchronous so the notification survives even when no
// connection is live; the push is asynchronous.
func (s *NotificationService) Dispatch(ctx context.Context, ownerID string, msg workflow.Message) error {
	n := &models.Notification{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     msg.Title,
		Content:   msg.Content,
		Type:      msg.Type,
		Important: msg.Important,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	if err := s.queue.TryEnqueue(jobs.Job{
		ID:      n.ID,
		Type:    "notification.push",
		Payload: notificationJob{Notification: n},
	}); err != nil {
		// The notification is stored; the client catches up on next poll.
		s.logger.Warn("notification push enqueue failed",
			zap.String("owner_id", ownerID),
			zap.Int("queue_depth", s.queue.Depth()),
			zap.Error(err),
		)
	}
	return nil
}

func (s *NotificationService) handleDelivery(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(notificationJob)
	if !ok {
		s.logger.Error("unexpected notification job payload", zap.String("job_id", job.ID))
		return nil
	}
	if s.realtime == nil {
		if s.observer != nil {
			s.observer.ObserveNotification(false)
		}
		return nil
	}
	sent := s.realtime.SendToUser(payload.Notification.OwnerID, realtime.Event{
		Type:      "notification",
		UserID:    payload.Notification.OwnerID,
		Data:      payload.Notification,
		Timestamp: time.Now().UTC(),
	})
	if s.observer != nil {
		s.observer.ObserveNotification(sent > 0)
	}
	s.logger.Debug("notification pushed",
		zap.String("owner_id", payload.Notification.OwnerID),
		zap.Int("connections", sent),
	)
	return nil
}

// List returns the caller's notifications.
func (s *NotificationService) List(ctx context.Context, actor *models.JWTClaims, includeArchived bool, limit int) ([]models.Notification, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	notifications, err := s.repo.List(ctx, models.NotificationFilter{
		OwnerID:         actor.UserID,
		IncludeArchived: includeArchived,
		Limit:           limit,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

// Archive marks one of the caller's notifications as read.
func (s *NotificationService) Archive(ctx context.Context, actor *models.JWTClaims, id string) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if err := s.repo.Archive(ctx, id, actor.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive notification")
	}
	return nil
}

// UnreadCount returns the caller's unarchived notification count.
func (s *NotificationService) UnreadCount(ctx context.Context, actor *models.JWTClaims) (int, error) {
	if actor == nil {
		return 0, appErrors.ErrUnauthorized
	}
	count, err := s.repo.UnreadCount(ctx, actor.UserID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	return count, nil
}
