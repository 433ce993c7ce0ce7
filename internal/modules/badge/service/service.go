package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"anoa.com/careerhub/internal/bootstrap"
	"anoa.com/careerhub/internal/entity"
	badgeDto "anoa.com/careerhub/internal/modules/badge/dto"
	badgeRepo "anoa.com/careerhub/internal/modules/badge/repository"
	notifService "anoa.com/careerhub/internal/modules/notification/service"
	userRepo "anoa.com/careerhub/internal/modules/user/repository"
	"anoa.com/careerhub/internal/scoring"
	"anoa.com/careerhub/pkg/apperror"
	"anoa.com/careerhub/pkg/logger"
	"anoa.com/careerhub/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BadgeService interface {
	// Evaluate grants every badge whose threshold is at or below points and
	// returns the ones granted by this call. Safe to repeat.
	Evaluate(ctx context.Context, userID uuid.UUID, points int) ([]entity.Badge, error)
	Catalog(ctx context.Context) ([]entity.Badge, error)
	UserBadges(ctx context.Context, userID uuid.UUID) ([]badgeDto.UserBadgeResponse, error)
	SeedCatalog(ctx context.Context) error
	UploadImage(ctx context.Context, badgeID uuid.UUID, r io.Reader, fileName string) (*entity.Badge, error)
}

type badgeService struct {
	db                  *gorm.DB
	repo                badgeRepo.BadgeRepository
	userRepo            userRepo.UserRepository
	notificationService notifService.NotificationService
	imageStorage        storage.ImageStorage
	rules               scoring.Rules
}

func NewBadgeService(
	db *gorm.DB,
	repo badgeRepo.BadgeRepository,
	userRepo userRepo.UserRepository,
	notificationService notifService.NotificationService,
	imageStorage storage.ImageStorage,
	rules scoring.Rules,
) BadgeService {
	if imageStorage == nil {
		imageStorage = storage.NewDisabledStorage()
	}
	return &badgeService{
		db:                  db,
		repo:                repo,
		userRepo:            userRepo,
		notificationService: notificationService,
		imageStorage:        imageStorage,
		rules:               rules,
	}
}

func (s *badgeService) Evaluate(ctx context.Context, userID uuid.UUID, points int) ([]entity.Badge, error) {
	eligible := s.rules.EarnedBadges(points)
	if len(eligible) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(eligible))
	for _, b := range eligible {
		names = append(names, b.Name)
	}
	catalog, err := s.repo.FindByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("load badge catalog: %w", apperror.FromDB(err))
	}
	byName := make(map[string]entity.Badge, len(catalog))
	for _, b := range catalog {
		byName[b.Name] = b
	}

	var awarded []entity.Badge
	for _, rule := range eligible {
		badge, ok := byName[rule.Name]
		if !ok {
			logger.Warn().Str("badge", rule.Name).Msg("badge missing from catalog, skipping")
			continue
		}

		created, err := s.repo.Award(ctx, userID, badge.ID)
		if err != nil {
			return awarded, fmt.Errorf("award %q: %w", badge.Name, apperror.FromDB(err))
		}
		if !created {
			continue
		}

		awarded = append(awarded, badge)
		logger.Info().
			Str("user_id", userID.String()).
			Str("badge", badge.Name).
			Int("points", points).
			Msg("badge awarded")

		if s.notificationService != nil {
			if err := s.notificationService.NotifyBadgeAwarded(ctx, userID, badge); err != nil {
				logger.Warn().Err(err).Str("user_id", userID.String()).Msg("badge notification failed")
			}
		}
	}

	return awarded, nil
}

func (s *badgeService) Catalog(ctx context.Context) ([]entity.Badge, error) {
	badges, err := s.repo.ListCatalog(ctx)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	return badges, nil
}

func (s *badgeService) UserBadges(ctx context.Context, userID uuid.UUID) ([]badgeDto.UserBadgeResponse, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	if !exists {
		return nil, fmt.Errorf("user %s: %w", userID, apperror.ErrNotFound)
	}

	rows, err := s.repo.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}

	out := make([]badgeDto.UserBadgeResponse, 0, len(rows))
	for _, ub := range rows {
		out = append(out, badgeDto.NewUserBadgeResponse(ub))
	}
	return out, nil
}

func (s *badgeService) SeedCatalog(ctx context.Context) error {
	return bootstrap.SeedBadges(ctx, s.db, s.rules)
}

func (s *badgeService) UploadImage(ctx context.Context, badgeID uuid.UUID, r io.Reader, fileName string) (*entity.Badge, error) {
	badge, err := s.repo.FindByID(ctx, badgeID)
	if err != nil {
		return nil, fmt.Errorf("badge %s: %w", badgeID, apperror.FromDB(err))
	}

	url, err := s.imageStorage.UploadImage(ctx, r, fileName)
	if errors.Is(err, storage.ErrNotConfigured) {
		return nil, apperror.New(http.StatusServiceUnavailable, "badge image upload is not configured", err)
	}
	if err != nil {
		return nil, fmt.Errorf("upload badge image: %w", err)
	}

	if err := s.repo.UpdateImage(ctx, badge.ID, url); err != nil {
		return nil, apperror.FromDB(err)
	}

	previous := badge.Image
	badge.Image = url
	if previous != "" && previous != url {
		if err := s.imageStorage.DeleteImage(ctx, previous); err != nil {
			logger.Debug().Err(err).Str("image", previous).Msg("old badge image not deleted")
		}
	}

	return badge, nil
}
