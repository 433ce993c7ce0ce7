package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/careerhub/internal/entity"
	userDto "anoa.com/careerhub/internal/modules/user/dto"
	userRepo "anoa.com/careerhub/internal/modules/user/repository"
	"anoa.com/careerhub/pkg/apperror"
	"github.com/google/uuid"
)

type UserService interface {
	CreateUser(ctx context.Context, req userDto.CreateUserRequest) (*entity.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
	// UpdateProfile changes descriptive fields only. Email, account type and
	// points are not editable here.
	UpdateProfile(ctx context.Context, id uuid.UUID, req userDto.UpdateProfileRequest) (*entity.User, error)
}

type userService struct {
	repo userRepo.UserRepository
}

func NewUserService(repo userRepo.UserRepository) UserService {
	return &userService{repo: repo}
}

// CreateUser registers a user coming from the identity system. Points always start at zero.
func (s *userService) CreateUser(ctx context.Context, req userDto.CreateUserRequest) (*entity.User, error) {
	user := &entity.User{
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Name:        strings.TrimSpace(req.Name),
		JobTitle:    req.JobTitle,
		BandLevel:   req.BandLevel,
		Department:  req.Department,
		AccountType: req.AccountType,
	}
	if req.ID != nil {
		user.ID = *req.ID
	}
	if user.AccountType == "" {
		user.AccountType = entity.AccountTypeUser
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", apperror.FromDB(err))
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, apperror.FromDB(err))
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, req userDto.UpdateProfileRequest) (*entity.User, error) {
	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidInput, errors.New("name cannot be blank"))
		}
		fields["name"] = name
	}
	if req.JobTitle != nil {
		fields["job_title"] = strings.TrimSpace(*req.JobTitle)
	}
	if req.BandLevel != nil {
		fields["band_level"] = strings.TrimSpace(*req.BandLevel)
	}
	if req.Department != nil {
		fields["department"] = strings.TrimSpace(*req.Department)
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateProfile(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("user %s: %w", id, apperror.FromDB(err))
		}
	}
	return s.GetUser(ctx, id)
}
