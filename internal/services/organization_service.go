package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/deyby01/nexus-pm-v2/internal/constants"
	"github.com/deyby01/nexus-pm-v2/internal/models"
	"github.com/deyby01/nexus-pm-v2/internal/repository"
	"github.com/deyby01/nexus-pm-v2/internal/utils"
)

// OrganizationService owns the organization lifecycle: creation with its
// cascading setup (trial subscription, owner membership, default settings),
// membership management, and soft-delete cleanup. All side effects of a write
// run inside the same transaction as the write itself.
type OrganizationService struct {
	db       *gorm.DB
	orgRepo  repository.OrganizationRepository
	planRepo repository.PlanRepository
	userRepo repository.UserRepository
	limits   *LimitsService
	clock    clock.Clock
	logger   *zap.Logger
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(
	db *gorm.DB,
	orgRepo repository.OrganizationRepository,
	planRepo repository.PlanRepository,
	userRepo repository.UserRepository,
	limits *LimitsService,
	clk clock.Clock,
	logger *zap.Logger,
) *OrganizationService {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrganizationService{
		db:       db,
		orgRepo:  orgRepo,
		planRepo: planRepo,
		userRepo: userRepo,
		limits:   limits,
		clock:    clk,
		logger:   logger,
	}
}

// CreateOrganizationInput represents parameters to create a new organization.
type CreateOrganizationInput struct {
	Name        string
	Description string
	OwnerID     uuid.UUID
	Email       string
	Phone       string
	Website     string
}

// CreateOrganization creates an organization and runs its setup cascade:
// a FREE trial subscription (skipped with a log entry if the catalog has no
// FREE plan), an OWNER membership for the owner, and default settings.
func (s *OrganizationService) CreateOrganization(input CreateOrganizationInput) (*models.Organization, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, rejected(RejectionInvalidInput, "organization name cannot be empty")
	}

	owner, err := s.userRepo.FindByID(input.OwnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find owner: %w", err)
	}

	slug, err := s.uniqueSlug(input.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to generate slug: %w", err)
	}

	now := s.clock.Now()
	org := &models.Organization{
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		OwnerID:     owner.ID,
		Status:      models.OrganizationActive,
		Email:       input.Email,
		Phone:       input.Phone,
		Website:     input.Website,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		orgs := s.orgRepo.WithTx(tx)

		if err := orgs.Create(org); err != nil {
			return translateWriteError(err, "failed to create organization")
		}

		if err := s.startTrialSubscription(tx, org, now); err != nil {
			return err
		}

		membership := &models.OrganizationMembership{
			UserID:         owner.ID,
			OrganizationID: org.ID,
			Role:           models.OrgRoleOwner,
			IsActive:       true,
			JoinedAt:       now,
		}
		if err := orgs.AddMember(membership); err != nil {
			return translateWriteError(err, "failed to add owner membership")
		}

		if org.Settings.IsZero() {
			org.Settings = defaultOrganizationSettings(owner)
			if err := orgs.Update(org); err != nil {
				return fmt.Errorf("failed to initialize organization settings: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("organization created",
		zap.String("organization_id", org.ID.String()),
		zap.String("organization_name", org.Name),
		zap.String("owner_email", owner.Email),
		zap.String("action", "organization_created"),
	)

	return org, nil
}

// startTrialSubscription creates the FREE trial. A missing FREE plan is an
// operator problem, not a reason to fail organization creation: it is logged
// and skipped.
func (s *OrganizationService) startTrialSubscription(tx *gorm.DB, org *models.Organization, now time.Time) error {
	freePlan, err := s.planRepo.WithTx(tx).FindByType(models.PlanFree)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("free plan not found, organization created without subscription",
				zap.String("organization_id", org.ID.String()),
				zap.String("organization_name", org.Name),
				zap.String("action", "missing_free_plan"),
			)
			return nil
		}
		return fmt.Errorf("failed to look up free plan: %w", err)
	}

	trialEnd := now.Add(constants.TrialPeriodDays * 24 * time.Hour)
	sub := &models.Subscription{
		OrganizationID:     org.ID,
		PlanID:             freePlan.ID,
		Status:             models.SubscriptionTrialing,
		BillingCycle:       models.BillingMonthly,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   trialEnd,
		TrialStart:         &now,
		TrialEnd:           &trialEnd,
	}
	if err := s.orgRepo.WithTx(tx).CreateSubscription(sub); err != nil {
		return fmt.Errorf("failed to create trial subscription: %w", err)
	}

	s.logger.Info("trial subscription created",
		zap.String("organization_id", org.ID.String()),
		zap.String("plan_type", string(freePlan.PlanType)),
		zap.Time("trial_end", trialEnd),
		zap.String("action", "subscription_created"),
	)
	return nil
}

// GetOrganization returns an organization by ID.
func (s *OrganizationService) GetOrganization(orgID uuid.UUID) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}

// ListOrganizationsForUser returns active memberships with organizations.
func (s *OrganizationService) ListOrganizationsForUser(userID uuid.UUID) ([]models.OrganizationMembership, error) {
	memberships, err := s.orgRepo.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return memberships, nil
}

// ListMembers returns the active members of an organization.
func (s *OrganizationService) ListMembers(orgID uuid.UUID) ([]models.OrganizationMembership, error) {
	members, err := s.orgRepo.ListMembers(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization members: %w", err)
	}
	return members, nil
}

// UpdateOrganizationInput holds mutable organization fields.
type UpdateOrganizationInput struct {
	Name        *string
	Description *string
	Website     *string
}

// UpdateOrganization updates basic organization fields. The slug is fixed at
// creation and never regenerated.
func (s *OrganizationService) UpdateOrganization(orgID uuid.UUID, input UpdateOrganizationInput) (*models.Organization, error) {
	org, err := s.GetOrganization(orgID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, rejected(RejectionInvalidInput, "organization name cannot be empty")
		}
		org.Name = *input.Name
	}
	if input.Description != nil {
		org.Description = *input.Description
	}
	if input.Website != nil {
		org.Website = *input.Website
	}

	if err := s.orgRepo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	return org, nil
}

// AddMemberInput holds parameters for adding an organization member.
type AddMemberInput struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Role           models.OrganizationRole
	InvitedByID    *uuid.UUID
}

// AddMember adds a user to the organization. A previously deactivated
// membership is reactivated instead of duplicated. The plan's max_users
// ceiling is a soft limit here: exceeding it is logged at warn level but
// never blocks.
func (s *OrganizationService) AddMember(input AddMemberInput) (*models.OrganizationMembership, error) {
	org, err := s.GetOrganization(input.OrganizationID)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	role := input.Role
	if role == "" {
		role = models.OrgRoleMember
	}

	now := s.clock.Now()
	var membership *models.OrganizationMembership

	existing, err := s.orgRepo.FindMember(org.ID, input.UserID)
	switch {
	case err == nil:
		if existing.IsActive {
			return nil, rejected(RejectionDuplicate, "user is already a member of the organization")
		}
		existing.IsActive = true
		existing.Role = role
		existing.JoinedAt = now
		if err := s.orgRepo.UpdateMember(existing); err != nil {
			return nil, fmt.Errorf("failed to reactivate membership: %w", err)
		}
		membership = existing
	case errors.Is(err, gorm.ErrRecordNotFound):
		membership = &models.OrganizationMembership{
			UserID:         input.UserID,
			OrganizationID: org.ID,
			Role:           role,
			IsActive:       true,
			InvitedByID:    input.InvitedByID,
			JoinedAt:       now,
		}
		if input.InvitedByID != nil {
			membership.InvitedAt = &now
		}
		if err := s.orgRepo.AddMember(membership); err != nil {
			return nil, translateWriteError(err, "failed to add organization member")
		}
	default:
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}

	withinLimit, err := s.limits.CheckUsageLimit(org.ID, LimitUsers)
	if err == nil && !withinLimit {
		s.logger.Warn("organization exceeded user limit",
			zap.String("organization_id", org.ID.String()),
			zap.String("action", "user_limit_warning"),
		)
	}

	s.logger.Info("organization member added",
		zap.String("organization_id", org.ID.String()),
		zap.String("user_id", input.UserID.String()),
		zap.String("role", string(role)),
		zap.String("action", "member_added"),
	)

	return membership, nil
}

// RemoveMember deactivates a membership. The owner cannot be removed.
func (s *OrganizationService) RemoveMember(orgID, userID uuid.UUID) error {
	org, err := s.GetOrganization(orgID)
	if err != nil {
		return err
	}
	if org.OwnerID == userID {
		return rejected(RejectionInvalidInput, "organization owner cannot be removed")
	}

	membership, err := s.orgRepo.FindActiveMember(orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		return fmt.Errorf("failed to find membership: %w", err)
	}

	membership.IsActive = false
	if err := s.orgRepo.UpdateMember(membership); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// DeleteOrganization soft-deletes the organization after cancelling its live
// subscriptions, in one transaction.
func (s *OrganizationService) DeleteOrganization(orgID uuid.UUID) error {
	org, err := s.GetOrganization(orgID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		orgs := s.orgRepo.WithTx(tx)
		if err := orgs.CancelLiveSubscriptions(org.ID, now); err != nil {
			return fmt.Errorf("failed to cancel subscriptions: %w", err)
		}
		return orgs.SoftDelete(org.ID, now)
	})
	if err != nil {
		return err
	}

	s.logger.Warn("organization deleted",
		zap.String("organization_id", org.ID.String()),
		zap.String("organization_name", org.Name),
		zap.String("action", "organization_deleted"),
	)
	return nil
}

// uniqueSlug derives a slug from the name and disambiguates collisions with
// a numeric suffix.
func (s *OrganizationService) uniqueSlug(name string) (string, error) {
	base := utils.Slugify(name)
	slug := base
	for counter := 1; ; counter++ {
		exists, err := s.orgRepo.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

// defaultOrganizationSettings is the fixed default shape for a new
// organization, echoing the owner's localization.
func defaultOrganizationSettings(owner *models.User) models.OrganizationSettings {
	return models.OrganizationSettings{
		Version:             1,
		CreatedVia:          "web",
		OnboardingCompleted: false,
		Notifications: models.NotificationSettings{
			EmailProjectUpdates:  true,
			EmailTaskAssignments: true,
			EmailMentions:        true,
		},
		Preferences: models.OrganizationPreferences{
			DefaultTimezone: owner.Timezone,
			DefaultLanguage: owner.Language,
			WeekStartsOn:    "monday",
		},
	}
}

// translateWriteError maps driver-level unique violations onto ErrConflict
// so racing creates surface as conflicts rather than opaque SQL errors.
func translateWriteError(err error, context string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return fmt.Errorf("%s: %w", context, err)
}
