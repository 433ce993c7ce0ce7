package service

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/careerhub/internal/entity"
	notifRepo "anoa.com/careerhub/internal/modules/notification/repository"
	"anoa.com/careerhub/pkg/apperror"
	"anoa.com/careerhub/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel carrying a user's notifications.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	NotifyBadgeAwarded(ctx context.Context, userID uuid.UUID, badge entity.Badge) error
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err != nil {
			return err
		}
		if err := s.redisClient.Publish(ctx, Channel(notification.UserID), payload).Err(); err != nil {
			// stored already; live delivery is best effort
			logger.Warn().Err(err).Str("user_id", notification.UserID.String()).Msg("notification publish failed")
		}
	}

	return nil
}

func (s *notificationService) NotifyBadgeAwarded(ctx context.Context, userID uuid.UUID, badge entity.Badge) error {
	return s.CreateNotification(ctx, &entity.Notification{
		UserID:     userID,
		EntityID:   badge.ID,
		EntityType: "badge",
		Type:       entity.NotificationTypeBadgeAwarded,
		Message:    fmt.Sprintf("You earned the %q badge for reaching %d points!", badge.Name, badge.Threshold),
	})
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.MarkAsRead(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("notification not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
