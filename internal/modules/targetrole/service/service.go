package service

import (
	"context"
	"fmt"
	"strings"

	"anoa.com/careerhub/internal/entity"
	roleDto "anoa.com/careerhub/internal/modules/targetrole/dto"
	roleRepo "anoa.com/careerhub/internal/modules/targetrole/repository"
	userRepo "anoa.com/careerhub/internal/modules/user/repository"
	"anoa.com/careerhub/pkg/apperror"
	"github.com/google/uuid"
)

type TargetRoleService interface {
	AddRole(ctx context.Context, req roleDto.AddTargetRoleRequest) (*entity.UserTargetRole, error)
	ListRoles(ctx context.Context, userID uuid.UUID) ([]entity.UserTargetRole, error)
	ListRolesWithSkills(ctx context.Context, userID uuid.UUID) ([]roleDto.TargetRoleWithSkills, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error
	// GetOwnedRole fails with NotFound unless roleID exists and belongs to userID.
	GetOwnedRole(ctx context.Context, userID, roleID uuid.UUID) (*entity.UserTargetRole, error)
}

type targetRoleService struct {
	repo     roleRepo.TargetRoleRepository
	userRepo userRepo.UserRepository
}

func NewTargetRoleService(repo roleRepo.TargetRoleRepository, userRepo userRepo.UserRepository) TargetRoleService {
	return &targetRoleService{repo: repo, userRepo: userRepo}
}

func (s *targetRoleService) AddRole(ctx context.Context, req roleDto.AddTargetRoleRequest) (*entity.UserTargetRole, error) {
	name := strings.TrimSpace(req.RoleName)
	if req.UserID == uuid.Nil || name == "" {
		return nil, fmt.Errorf("userId and roleName are required: %w", apperror.ErrInvalidInput)
	}

	exists, err := s.userRepo.Exists(ctx, req.UserID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	if !exists {
		return nil, fmt.Errorf("user %s: %w", req.UserID, apperror.ErrNotFound)
	}

	role := &entity.UserTargetRole{
		UserID:   req.UserID,
		RoleName: name,
		Timeline: strings.TrimSpace(req.Timeline),
	}
	if err := s.repo.Create(ctx, role); err != nil {
		return nil, apperror.FromDB(err)
	}
	return role, nil
}

func (s *targetRoleService) ListRoles(ctx context.Context, userID uuid.UUID) ([]entity.UserTargetRole, error) {
	roles, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}
	return roles, nil
}

func (s *targetRoleService) ListRolesWithSkills(ctx context.Context, userID uuid.UUID) ([]roleDto.TargetRoleWithSkills, error) {
	roles, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.FromDB(err)
	}

	ids := make([]uuid.UUID, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}
	skills, err := s.repo.SkillsByRoles(ctx, userID, ids)
	if err != nil {
		return nil, apperror.FromDB(err)
	}

	byRole := make(map[uuid.UUID][]entity.UserSkill, len(roles))
	for _, sk := range skills {
		byRole[sk.TargetRoleID] = append(byRole[sk.TargetRoleID], sk)
	}

	out := make([]roleDto.TargetRoleWithSkills, 0, len(roles))
	for _, r := range roles {
		sk := byRole[r.ID]
		if sk == nil {
			sk = []entity.UserSkill{}
		}
		out = append(out, roleDto.TargetRoleWithSkills{UserTargetRole: r, Skills: sk})
	}
	return out, nil
}

// DeleteRole removes the role only. Skill records scoped to it are kept as history.
func (s *targetRoleService) DeleteRole(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperror.FromDB(err)
	}
	if !deleted {
		return fmt.Errorf("target role not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *targetRoleService) GetOwnedRole(ctx context.Context, userID, roleID uuid.UUID) (*entity.UserTargetRole, error) {
	role, err := s.repo.FindByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("target role %s: %w", roleID, apperror.FromDB(err))
	}
	if role.UserID != userID {
		return nil, fmt.Errorf("target role %s: %w", roleID, apperror.ErrNotFound)
	}
	return role, nil
}
