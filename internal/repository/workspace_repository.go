package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

// GormWorkspaceRepository is a GORM implementation of WorkspaceRepository
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

func (r *GormWorkspaceRepository) WithTx(tx *gorm.DB) WorkspaceRepository {
	return &GormWorkspaceRepository{db: tx}
}

// Create creates a new workspace
func (r *GormWorkspaceRepository) Create(workspace *models.Workspace) error {
	return r.db.Create(workspace).Error
}

// FindByID finds a workspace by ID with optional preloading
func (r *GormWorkspaceRepository) FindByID(id uuid.UUID, preload ...string) (*models.Workspace, error) {
	var workspace models.Workspace
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&workspace, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &workspace, nil
}

// SlugExists checks slug uniqueness within an organization, deleted included.
func (r *GormWorkspaceRepository) SlugExists(orgID uuid.UUID, slug string) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&models.Workspace{}).
		Where("organization_id = ? AND slug = ?", orgID, slug).
		Count(&count).Error
	return count > 0, err
}

// Update updates a workspace
func (r *GormWorkspaceRepository) Update(workspace *models.Workspace) error {
	return r.db.Save(workspace).Error
}

// SoftDelete marks the workspace deleted and archived.
func (r *GormWorkspaceRepository) SoftDelete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Workspace{}).Where("id = ?", id).
			Update("status", models.WorkspaceArchived).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Workspace{}, "id = ?", id).Error
	})
}

// ListByOrganization lists non-deleted workspaces in an organization
func (r *GormWorkspaceRepository) ListByOrganization(orgID uuid.UUID) ([]models.Workspace, error) {
	var workspaces []models.Workspace
	err := r.db.Where("organization_id = ?", orgID).
		Order("name ASC").
		Find(&workspaces).Error
	if err != nil {
		return nil, err
	}
	return workspaces, nil
}

// AddMember adds a member to a workspace
func (r *GormWorkspaceRepository) AddMember(member *models.WorkspaceMembership) error {
	return r.db.Create(member).Error
}

// UpdateMember updates a workspace membership
func (r *GormWorkspaceRepository) UpdateMember(member *models.WorkspaceMembership) error {
	return r.db.Save(member).Error
}

// FindMember finds a membership regardless of active flag
func (r *GormWorkspaceRepository) FindMember(workspaceID, userID uuid.UUID) (*models.WorkspaceMembership, error) {
	var member models.WorkspaceMembership
	err := r.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindActiveMember finds an active membership for (workspace, user)
func (r *GormWorkspaceRepository) FindActiveMember(workspaceID, userID uuid.UUID) (*models.WorkspaceMembership, error) {
	var member models.WorkspaceMembership
	err := r.db.Where("workspace_id = ? AND user_id = ? AND is_active = ?", workspaceID, userID, true).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all active members of a workspace
func (r *GormWorkspaceRepository) ListMembers(workspaceID uuid.UUID) ([]models.WorkspaceMembership, error) {
	var members []models.WorkspaceMembership
	err := r.db.Preload("User").
		Where("workspace_id = ? AND is_active = ?", workspaceID, true).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// CountActiveMembers counts active memberships in a workspace
func (r *GormWorkspaceRepository) CountActiveMembers(workspaceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.WorkspaceMembership{}).
		Where("workspace_id = ? AND is_active = ?", workspaceID, true).
		Count(&count).Error
	return count, err
}

// CountActiveProjects counts non-deleted projects in a workspace
func (r *GormWorkspaceRepository) CountActiveProjects(workspaceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).
		Where("workspace_id = ?", workspaceID).
		Count(&count).Error
	return count, err
}
