package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deyby01/nexus-pm-v2/internal/models"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

func (r *GormOrganizationRepository) WithTx(tx *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: tx}
}

// Create creates a new organization
func (r *GormOrganizationRepository) Create(org *models.Organization) error {
	return r.db.Create(org).Error
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindBySlug finds an organization by its unique slug
func (r *GormOrganizationRepository) FindBySlug(slug string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Where("slug = ?", slug).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// SlugExists checks slug uniqueness across all organizations, deleted included.
func (r *GormOrganizationRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&models.Organization{}).
		Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// Update updates an organization
func (r *GormOrganizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}

// SoftDelete marks the organization deleted and cancelled.
func (r *GormOrganizationRepository) SoftDelete(id uuid.UUID, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Organization{}).Where("id = ?", id).
			Update("status", models.OrganizationCancelled).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Organization{}, "id = ?", id).Error
	})
}

// CreateSubscription records a new subscription for an organization.
func (r *GormOrganizationRepository) CreateSubscription(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

// CurrentSubscription returns the first active or trialing subscription in
// insertion order.
func (r *GormOrganizationRepository) CurrentSubscription(orgID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("Plan").
		Where("organization_id = ? AND status IN ?", orgID,
			[]models.SubscriptionStatus{models.SubscriptionActive, models.SubscriptionTrialing}).
		Order("created_at ASC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateSubscription updates a subscription
func (r *GormOrganizationRepository) UpdateSubscription(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

// CancelLiveSubscriptions cancels every active/trialing subscription.
func (r *GormOrganizationRepository) CancelLiveSubscriptions(orgID uuid.UUID, now time.Time) error {
	return r.db.Model(&models.Subscription{}).
		Where("organization_id = ? AND status IN ?", orgID,
			[]models.SubscriptionStatus{models.SubscriptionActive, models.SubscriptionTrialing}).
		Updates(map[string]interface{}{
			"status":       models.SubscriptionCancelled,
			"cancelled_at": now,
		}).Error
}

// AddMember adds a member to an organization
func (r *GormOrganizationRepository) AddMember(member *models.OrganizationMembership) error {
	return r.db.Create(member).Error
}

// UpdateMember updates an organization membership
func (r *GormOrganizationRepository) UpdateMember(member *models.OrganizationMembership) error {
	return r.db.Save(member).Error
}

// FindMember finds a membership regardless of active flag
func (r *GormOrganizationRepository) FindMember(orgID, userID uuid.UUID) (*models.OrganizationMembership, error) {
	var member models.OrganizationMembership
	err := r.db.Where("organization_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindActiveMember finds an active membership for (org, user)
func (r *GormOrganizationRepository) FindActiveMember(orgID, userID uuid.UUID) (*models.OrganizationMembership, error) {
	var member models.OrganizationMembership
	err := r.db.Where("organization_id = ? AND user_id = ? AND is_active = ?", orgID, userID, true).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all active members of an organization
func (r *GormOrganizationRepository) ListMembers(orgID uuid.UUID) ([]models.OrganizationMembership, error) {
	var members []models.OrganizationMembership
	err := r.db.Preload("User").
		Where("organization_id = ? AND is_active = ?", orgID, true).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembershipsByUserID lists all organizations a user is an active member of
func (r *GormOrganizationRepository) ListMembershipsByUserID(userID uuid.UUID) ([]models.OrganizationMembership, error) {
	var memberships []models.OrganizationMembership
	err := r.db.Preload("Organization").
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

// CountActiveMembers counts active memberships in an organization
func (r *GormOrganizationRepository) CountActiveMembers(orgID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.OrganizationMembership{}).
		Where("organization_id = ? AND is_active = ?", orgID, true).
		Count(&count).Error
	return count, err
}

// CountActiveWorkspaces counts non-deleted workspaces in an organization.
// Always computed live; there is no cached workspace counter.
func (r *GormOrganizationRepository) CountActiveWorkspaces(orgID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Workspace{}).
		Where("organization_id = ?", orgID).
		Count(&count).Error
	return count, err
}
