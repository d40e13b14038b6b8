package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/deyby01/nexus-pm-v2/internal/authz"
	"github.com/deyby01/nexus-pm-v2/internal/models"
	"github.com/deyby01/nexus-pm-v2/internal/repository"
	"github.com/deyby01/nexus-pm-v2/internal/utils"
)

// WorkspaceService owns workspace lifecycle and team membership. Workspace
// membership is strictly contained in organization membership: nobody joins a
// workspace without an active membership in the owning organization.
type WorkspaceService struct {
	db            *gorm.DB
	workspaceRepo repository.WorkspaceRepository
	orgRepo       repository.OrganizationRepository
	limits        *LimitsService
	clock         clock.Clock
	logger        *zap.Logger
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(
	db *gorm.DB,
	workspaceRepo repository.WorkspaceRepository,
	orgRepo repository.OrganizationRepository,
	limits *LimitsService,
	clk clock.Clock,
	logger *zap.Logger,
) *WorkspaceService {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkspaceService{
		db:            db,
		workspaceRepo: workspaceRepo,
		orgRepo:       orgRepo,
		limits:        limits,
		clock:         clk,
		logger:        logger,
	}
}

// CreateWorkspaceInput represents parameters to create a workspace.
type CreateWorkspaceInput struct {
	OrganizationID uuid.UUID
	CreatorID      uuid.UUID
	Name           string
	Description    string
	WorkspaceType  models.WorkspaceType
	IsPrivate      bool
	Color          string
}

// CreateWorkspace creates a workspace inside an organization. The creator
// must be an active organization member, and the organization must have
// workspace quota left on its current plan. The creator becomes a workspace
// ADMIN and type-specific default settings are applied, all in one
// transaction.
func (s *WorkspaceService) CreateWorkspace(input CreateWorkspaceInput) (*models.Workspace, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, rejected(RejectionInvalidInput, "workspace name cannot be empty")
	}

	if _, err := s.orgRepo.FindByID(input.OrganizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	if _, err := s.orgRepo.FindActiveMember(input.OrganizationID, input.CreatorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rejected(RejectionNotOrgMember, "creator is not an active member of the organization")
		}
		return nil, fmt.Errorf("failed to check organization membership: %w", err)
	}

	workspaceType := input.WorkspaceType
	if workspaceType == "" {
		workspaceType = models.WorkspaceGeneral
	}

	workspace := &models.Workspace{
		Name:           input.Name,
		Description:    input.Description,
		OrganizationID: input.OrganizationID,
		WorkspaceType:  workspaceType,
		Status:         models.WorkspaceActive,
		IsPrivate:      input.IsPrivate,
		CreatedByID:    input.CreatorID,
		Color:          input.Color,
	}

	now := s.clock.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		workspaces := s.workspaceRepo.WithTx(tx)

		// The quota check runs inside the transaction so two racing creates
		// serialize on the organization's workspace count.
		withinLimit, err := s.limits.WithTx(tx).CheckUsageLimit(input.OrganizationID, LimitWorkspaces)
		if err != nil {
			return fmt.Errorf("failed to check workspace limit: %w", err)
		}
		if !withinLimit {
			return rejected(RejectionLimitExceeded, "organization has reached its workspace limit")
		}

		slug, err := uniqueWorkspaceSlug(workspaces, input.OrganizationID, input.Name)
		if err != nil {
			return fmt.Errorf("failed to generate slug: %w", err)
		}
		workspace.Slug = slug

		if err := workspaces.Create(workspace); err != nil {
			return translateWriteError(err, "failed to create workspace")
		}

		membership := &models.WorkspaceMembership{
			UserID:      input.CreatorID,
			WorkspaceID: workspace.ID,
			Role:        models.WorkspaceRoleAdmin,
			IsActive:    true,
			JoinedAt:    now,
		}
		if err := workspaces.AddMember(membership); err != nil {
			return translateWriteError(err, "failed to add creator membership")
		}

		if workspace.Settings.IsZero() {
			workspace.Settings = models.DefaultWorkspaceSettings(workspaceType)
		}
		if err := s.recomputeMemberCount(workspaces, workspace); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("workspace created",
		zap.String("workspace_id", workspace.ID.String()),
		zap.String("organization_id", input.OrganizationID.String()),
		zap.String("workspace_type", string(workspaceType)),
		zap.String("action", "workspace_created"),
	)

	return workspace, nil
}

// GetWorkspace returns a workspace by ID.
func (s *WorkspaceService) GetWorkspace(id uuid.UUID) (*models.Workspace, error) {
	workspace, err := s.workspaceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	return workspace, nil
}

// ListWorkspaces returns the non-deleted workspaces of an organization.
func (s *WorkspaceService) ListWorkspaces(orgID uuid.UUID) ([]models.Workspace, error) {
	workspaces, err := s.workspaceRepo.ListByOrganization(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, nil
}

// UpdateWorkspaceInput holds mutable workspace fields.
type UpdateWorkspaceInput struct {
	Name        *string
	Description *string
	Status      *models.WorkspaceStatus
	IsPrivate   *bool
	Color       *string
}

// UpdateWorkspace updates basic workspace fields. The slug and type are fixed
// at creation.
func (s *WorkspaceService) UpdateWorkspace(id uuid.UUID, input UpdateWorkspaceInput) (*models.Workspace, error) {
	workspace, err := s.GetWorkspace(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, rejected(RejectionInvalidInput, "workspace name cannot be empty")
		}
		workspace.Name = *input.Name
	}
	if input.Description != nil {
		workspace.Description = *input.Description
	}
	if input.Status != nil {
		workspace.Status = *input.Status
	}
	if input.IsPrivate != nil {
		workspace.IsPrivate = *input.IsPrivate
	}
	if input.Color != nil {
		workspace.Color = *input.Color
	}

	if err := s.workspaceRepo.Update(workspace); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}
	return workspace, nil
}

// DeleteWorkspace archives and soft-deletes the workspace, then refreshes the
// parent organization's workspace headroom implicitly (counts are live).
func (s *WorkspaceService) DeleteWorkspace(id uuid.UUID) error {
	workspace, err := s.GetWorkspace(id)
	if err != nil {
		return err
	}
	if err := s.workspaceRepo.SoftDelete(workspace.ID); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	s.logger.Info("workspace deleted",
		zap.String("workspace_id", workspace.ID.String()),
		zap.String("organization_id", workspace.OrganizationID.String()),
		zap.String("action", "workspace_deleted"),
	)
	return nil
}

// AddWorkspaceMemberInput holds parameters for adding a workspace member.
type AddWorkspaceMemberInput struct {
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
	Role        models.WorkspaceRole
	InvitedByID *uuid.UUID
}

// AddMember adds a user to a workspace. The user must already be an active
// member of the owning organization; that containment is a hard invariant.
// A previously deactivated membership is reactivated instead of duplicated.
// The plan's max_users ceiling is soft: crossing it logs a warning only.
func (s *WorkspaceService) AddMember(input AddWorkspaceMemberInput) (*models.WorkspaceMembership, error) {
	workspace, err := s.GetWorkspace(input.WorkspaceID)
	if err != nil {
		return nil, err
	}

	if _, err := s.orgRepo.FindActiveMember(workspace.OrganizationID, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rejected(RejectionNotOrgMember, "user is not an active member of the owning organization")
		}
		return nil, fmt.Errorf("failed to check organization membership: %w", err)
	}

	role := input.Role
	if role == "" {
		role = models.WorkspaceRoleMember
	}

	now := s.clock.Now()
	var membership *models.WorkspaceMembership

	err = s.db.Transaction(func(tx *gorm.DB) error {
		workspaces := s.workspaceRepo.WithTx(tx)

		existing, err := workspaces.FindMember(workspace.ID, input.UserID)
		switch {
		case err == nil:
			if existing.IsActive {
				return rejected(RejectionDuplicate, "user is already a member of the workspace")
			}
			existing.IsActive = true
			existing.Role = role
			existing.JoinedAt = now
			if err := workspaces.UpdateMember(existing); err != nil {
				return fmt.Errorf("failed to reactivate membership: %w", err)
			}
			membership = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			membership = &models.WorkspaceMembership{
				UserID:      input.UserID,
				WorkspaceID: workspace.ID,
				Role:        role,
				IsActive:    true,
				InvitedByID: input.InvitedByID,
				JoinedAt:    now,
			}
			if input.InvitedByID != nil {
				membership.InvitedAt = &now
			}
			if err := workspaces.AddMember(membership); err != nil {
				return translateWriteError(err, "failed to add workspace member")
			}
		default:
			return fmt.Errorf("failed to check existing membership: %w", err)
		}

		return s.recomputeMemberCount(workspaces, workspace)
	})
	if err != nil {
		return nil, err
	}

	withinLimit, err := s.limits.CheckUsageLimit(workspace.OrganizationID, LimitUsers)
	if err == nil && !withinLimit {
		s.logger.Warn("organization exceeded user limit",
			zap.String("organization_id", workspace.OrganizationID.String()),
			zap.String("workspace_id", workspace.ID.String()),
			zap.String("action", "user_limit_warning"),
		)
	}

	return membership, nil
}

// RemoveMember deactivates a workspace membership and refreshes the cached
// member count.
func (s *WorkspaceService) RemoveMember(workspaceID, userID uuid.UUID) error {
	workspace, err := s.GetWorkspace(workspaceID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		workspaces := s.workspaceRepo.WithTx(tx)

		membership, err := workspaces.FindActiveMember(workspace.ID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMembershipNotFound
			}
			return fmt.Errorf("failed to find membership: %w", err)
		}

		membership.IsActive = false
		if err := workspaces.UpdateMember(membership); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}

		return s.recomputeMemberCount(workspaces, workspace)
	})
}

// ListMembers returns the active members of a workspace.
func (s *WorkspaceService) ListMembers(workspaceID uuid.UUID) ([]models.WorkspaceMembership, error) {
	members, err := s.workspaceRepo.ListMembers(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace members: %w", err)
	}
	return members, nil
}

// ResolveAccess returns the caller's effective role in a workspace, or
// ErrMembershipNotFound when the user has no access. Organization owners and
// admins get ADMIN access to every workspace in their organization, private
// ones included, regardless of stored workspace membership.
func (s *WorkspaceService) ResolveAccess(workspaceID, userID uuid.UUID) (models.WorkspaceRole, error) {
	workspace, err := s.GetWorkspace(workspaceID)
	if err != nil {
		return "", err
	}

	orgMembership, err := s.orgRepo.FindActiveMember(workspace.OrganizationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrMembershipNotFound
		}
		return "", fmt.Errorf("failed to check organization membership: %w", err)
	}

	if authz.IsOrgElevated(orgMembership.Role) {
		return models.WorkspaceRoleAdmin, nil
	}

	wsMembership, err := s.workspaceRepo.FindActiveMember(workspace.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if workspace.IsPrivate {
				return "", ErrMembershipNotFound
			}
			return models.WorkspaceRoleViewer, nil
		}
		return "", fmt.Errorf("failed to check workspace membership: %w", err)
	}

	return authz.EffectiveWorkspaceRole(orgMembership.Role, wsMembership.Role), nil
}

// CanUserAccess reports whether a user may touch the workspace at all. It is
// the single authority for workspace-scoped reads and writes; project and
// task access delegate to it through the owning workspace.
func (s *WorkspaceService) CanUserAccess(workspaceID, userID uuid.UUID) (bool, error) {
	_, err := s.ResolveAccess(workspaceID, userID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// recomputeMemberCount refreshes the cached member counter from live counts
// and persists the workspace row.
func (s *WorkspaceService) recomputeMemberCount(repo repository.WorkspaceRepository, workspace *models.Workspace) error {
	count, err := repo.CountActiveMembers(workspace.ID)
	if err != nil {
		return fmt.Errorf("failed to count members: %w", err)
	}
	workspace.MemberCount = int(count)
	if err := repo.Update(workspace); err != nil {
		return fmt.Errorf("failed to update member count: %w", err)
	}
	return nil
}

// uniqueWorkspaceSlug derives a slug unique within the organization.
func uniqueWorkspaceSlug(repo repository.WorkspaceRepository, orgID uuid.UUID, name string) (string, error) {
	base := utils.Slugify(name)
	slug := base
	for counter := 1; ; counter++ {
		exists, err := repo.SlugExists(orgID, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
