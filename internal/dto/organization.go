package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/deyby01/nexus-pm-v2/internal/models"
	"github.com/deyby01/nexus-pm-v2/internal/services"
)

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID          uuid.UUID                 `json:"id"`
	Name        string                    `json:"name"`
	Slug        string                    `json:"slug"`
	Description string                    `json:"description,omitempty"`
	OwnerID     uuid.UUID                 `json:"owner_id"`
	Status      models.OrganizationStatus `json:"status"`
	Website     string                    `json:"website,omitempty"`
	Email       string                    `json:"email,omitempty"`
	Phone       string                    `json:"phone,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// OrganizationMemberDTO represents an organization membership in API responses
type OrganizationMemberDTO struct {
	ID       uuid.UUID               `json:"id"`
	Role     models.OrganizationRole `json:"role"`
	JoinedAt time.Time               `json:"joined_at"`
	User     *UserDTO                `json:"user,omitempty"`
}

// SubscriptionDTO represents the organization's current subscription.
type SubscriptionDTO struct {
	ID                 uuid.UUID                 `json:"id"`
	PlanType           models.PlanType           `json:"plan_type"`
	Status             models.SubscriptionStatus `json:"status"`
	BillingCycle       models.BillingCycle       `json:"billing_cycle"`
	CurrentPeriodStart time.Time                 `json:"current_period_start"`
	CurrentPeriodEnd   time.Time                 `json:"current_period_end"`
	TrialEnd           *time.Time                `json:"trial_end,omitempty"`
	IsTrial            bool                      `json:"is_trial"`
}

// UsageLimitsDTO reports the plan ceilings alongside live usage.
type UsageLimitsDTO struct {
	Limits           services.UsageLimits `json:"limits"`
	ActiveWorkspaces int64                `json:"active_workspaces"`
	ActiveMembers    int64                `json:"active_members"`
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:          org.ID,
		Name:        org.Name,
		Slug:        org.Slug,
		Description: org.Description,
		OwnerID:     org.OwnerID,
		Status:      org.Status,
		Website:     org.Website,
		Email:       org.Email,
		Phone:       org.Phone,
		CreatedAt:   org.CreatedAt,
	}
}

// ToOrganizationMemberDTO converts a membership to its response shape.
func ToOrganizationMemberDTO(m models.OrganizationMembership) OrganizationMemberDTO {
	dto := OrganizationMemberDTO{
		ID:       m.ID,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
	if m.User.ID != uuid.Nil {
		user := ToUserDTO(m.User)
		dto.User = &user
	}
	return dto
}

// ToSubscriptionDTO converts a subscription, computing is_trial against the
// given time.
func ToSubscriptionDTO(sub models.Subscription, now time.Time) SubscriptionDTO {
	return SubscriptionDTO{
		ID:                 sub.ID,
		PlanType:           sub.Plan.PlanType,
		Status:             sub.Status,
		BillingCycle:       sub.BillingCycle,
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		TrialEnd:           sub.TrialEnd,
		IsTrial:            sub.IsTrial(now),
	}
}
