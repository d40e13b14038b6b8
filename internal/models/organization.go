package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlanType identifies a subscription plan in the catalog.
type PlanType string

const (
	PlanFree         PlanType = "free"
	PlanStarter      PlanType = "starter"
	PlanProfessional PlanType = "professional"
	PlanEnterprise   PlanType = "enterprise"
)

// SubscriptionPlan is a catalog entity (not tenant-scoped) defining the
// ceilings an organization's subscription grants.
type SubscriptionPlan struct {
	ID          uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(50);not null" json:"name"`
	PlanType    PlanType  `gorm:"type:varchar(20);uniqueIndex;not null" json:"plan_type"`
	Description string    `gorm:"type:text" json:"description"`

	PriceMonthly float64 `gorm:"type:decimal(10,2);not null" json:"price_monthly"`
	PriceYearly  float64 `gorm:"type:decimal(10,2);not null" json:"price_yearly"`

	MaxWorkspaces           int `gorm:"not null" json:"max_workspaces"`
	MaxUsers                int `gorm:"not null" json:"max_users"`
	MaxStorageGB            int `gorm:"not null" json:"max_storage_gb"`
	MaxProjectsPerWorkspace int `gorm:"not null;default:100" json:"max_projects_per_workspace"`

	Features PlanFeatures `gorm:"type:text" json:"features"`

	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *SubscriptionPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HasFeature checks whether the plan includes a specific feature flag.
func (p *SubscriptionPlan) HasFeature(name string) bool {
	return p.Features[name]
}

// SubscriptionStatus tracks the billing lifecycle.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionTrialing  SubscriptionStatus = "trialing"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionUnpaid    SubscriptionStatus = "unpaid"
)

// BillingCycle is how often the customer is billed.
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// Subscription links an organization to a plan. An organization can
// accumulate subscriptions over time (upgrades, downgrades); only the first
// one with a non-terminal status is authoritative.
type Subscription struct {
	ID             uuid.UUID          `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizationID uuid.UUID          `gorm:"type:varchar(36);not null;index:idx_subscriptions_org_status" json:"organization_id"`
	PlanID         uuid.UUID          `gorm:"type:varchar(36);not null" json:"plan_id"`
	Status         SubscriptionStatus `gorm:"type:varchar(20);not null;index:idx_subscriptions_org_status" json:"status"`
	BillingCycle   BillingCycle       `gorm:"type:varchar(10);not null" json:"billing_cycle"`

	CurrentPeriodStart time.Time `gorm:"not null" json:"current_period_start"`
	CurrentPeriodEnd   time.Time `gorm:"not null" json:"current_period_end"`

	TrialStart *time.Time `json:"trial_start"`
	TrialEnd   *time.Time `json:"trial_end"`

	CancelledAt       *time.Time `json:"cancelled_at"`
	CancelAtPeriodEnd bool       `gorm:"not null;default:false" json:"cancel_at_period_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Organization Organization     `gorm:"foreignKey:OrganizationID" json:"-"`
	Plan         SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsLive reports whether the subscription grants access right now.
func (s *Subscription) IsLive() bool {
	return s.Status == SubscriptionActive || s.Status == SubscriptionTrialing
}

// IsTrial is computed purely from the trial window, independent of Status.
func (s *Subscription) IsTrial(now time.Time) bool {
	if s.TrialEnd == nil {
		return false
	}
	return now.Before(*s.TrialEnd)
}

// OrganizationStatus tracks tenant lifecycle states.
type OrganizationStatus string

const (
	OrganizationActive    OrganizationStatus = "active"
	OrganizationSuspended OrganizationStatus = "suspended"
	OrganizationCancelled OrganizationStatus = "cancelled"
)

// Organization is the multi-tenancy root. Every workspace, project, and task
// traces back to exactly one organization.
type Organization struct {
	ID          uuid.UUID          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string             `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string             `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Description string             `gorm:"type:text" json:"description"`
	OwnerID     uuid.UUID          `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	Status      OrganizationStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	Website string `gorm:"type:varchar(255)" json:"website"`
	Email   string `gorm:"type:varchar(255)" json:"email"`
	Phone   string `gorm:"type:varchar(20)" json:"phone"`

	Settings OrganizationSettings `gorm:"type:text" json:"settings"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner         User                     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Memberships   []OrganizationMembership `gorm:"foreignKey:OrganizationID" json:"memberships,omitempty"`
	Subscriptions []Subscription           `gorm:"foreignKey:OrganizationID" json:"-"`
	Workspaces    []Workspace              `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrganizationRole defines what a user can do within an organization.
type OrganizationRole string

const (
	OrgRoleOwner  OrganizationRole = "owner"
	OrgRoleAdmin  OrganizationRole = "admin"
	OrgRoleMember OrganizationRole = "member"
	OrgRoleViewer OrganizationRole = "viewer"
)

// OrganizationMembership connects a user to an organization. Membership here
// is a precondition for any workspace membership in the same organization.
type OrganizationMembership struct {
	ID             uuid.UUID        `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         uuid.UUID        `gorm:"type:varchar(36);not null;uniqueIndex:idx_org_membership_user_org" json:"user_id"`
	OrganizationID uuid.UUID        `gorm:"type:varchar(36);not null;uniqueIndex:idx_org_membership_user_org" json:"organization_id"`
	Role           OrganizationRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	IsActive       bool             `gorm:"not null;default:true" json:"is_active"`

	InvitedByID *uuid.UUID `gorm:"type:varchar(36)" json:"invited_by_id"`
	InvitedAt   *time.Time `json:"invited_at"`
	JoinedAt    time.Time  `json:"joined_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (m *OrganizationMembership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
