package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/dms-api/internal/dto"
	"github.com/noah-isme/dms-api/internal/models"
	appErrors "github.com/noah-isme/dms-api/pkg/errors"
	"github.com/noah-isme/dms-api/pkg/jobs"
)

const (
	jobNotifyUser   = "notify.user"
	jobNotifyAdmins = "notify.admins"
)

type notificationEvent struct {
	UserID  string
	Title   string
	Message string
}

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type userDirectory interface {
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

type enqueuer interface {
	Enqueue(job jobs.Job) error
}

// NotificationService persists and serves per-user notifications. Outbound
// delivery goes through the jobs queue so a slow sink never stalls the
// approval state machine.
type NotificationService struct {
	repo   notificationStore
	users  userDirectory
	queue  enqueuer
	logger *zap.Logger
}

// NewNotificationService constructs the service. Attach the queue with
// AttachQueue once it has been built around Handle.
func NewNotificationService(repo notificationStore, users userDirectory, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, users: users, logger: logger}
}

// AttachQueue wires the dispatch queue. Until attached, notifications are
// dropped with a warning.
func (s *NotificationService) AttachQueue(queue enqueuer) {
	s.queue = queue
}

// Handle consumes queued notification jobs: it persists the row, fanning out
// to every active administrator for admin-audience events.
func (s *NotificationService) Handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(notificationEvent)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}

	switch job.Type {
	case jobNotifyUser:
		return s.repo.Create(ctx, &models.Notification{
			UserID:  event.UserID,
			Title:   event.Title,
			Message: event.Message,
		})
	case jobNotifyAdmins:
		admins, err := s.users.ListByRole(ctx, models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("resolve admin audience: %w", err)
		}
		for _, admin := range admins {
			if err := s.repo.Create(ctx, &models.Notification{
				UserID:  admin.ID,
				Title:   event.Title,
				Message: event.Message,
			}); err != nil {
				return fmt.Errorf("notify admin %s: %w", admin.ID, err)
			}
		}
		return nil
	default:
		s.logger.Warn("unknown notification job type", zap.String("type", job.Type))
		return nil
	}
}

// NotifyUser queues a message for a single user. Fire-and-forget.
func (s *NotificationService) NotifyUser(userID, title, message string) {
	s.dispatch(jobNotifyUser, notificationEvent{UserID: userID, Title: title, Message: message})
}

// NotifyAdmins queues a message for the administrator audience. Fire-and-forget.
func (s *NotificationService) NotifyAdmins(title, message string) {
	s.dispatch(jobNotifyAdmins, notificationEvent{Title: title, Message: message})
}

func (s *NotificationService) dispatch(jobType string, event notificationEvent) {
	if s.queue == nil {
		s.logger.Warn("notification queue not attached, dropping event", zap.String("type", jobType))
		return
	}
	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobType, Payload: event}); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("type", jobType), zap.Error(err))
	}
}

// ListForUser returns the caller's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string) (*dto.NotificationList, error) {
	notifications, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return &dto.NotificationList{Total: len(notifications), Items: notifications}, nil
}

// MarkRead flags one of the caller's notifications as read. Unknown or
// foreign notification ids surface as NotFound.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}
