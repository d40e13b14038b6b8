package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/deyby01/nexus-pm-v2/internal/models"
	"github.com/deyby01/nexus-pm-v2/internal/repository"
)

// UsageLimits are the ceilings an organization's current plan grants.
type UsageLimits struct {
	MaxWorkspaces           int `json:"max_workspaces"`
	MaxUsers                int `json:"max_users"`
	MaxStorageGB            int `json:"max_storage_gb"`
	MaxProjectsPerWorkspace int `json:"max_projects_per_workspace"`
}

// fallbackLimits apply when no plan is resolvable. This is the last line of
// defense against unbounded resource creation for orgs without billing state
// and must never be bypassed.
var fallbackLimits = UsageLimits{
	MaxWorkspaces:           1,
	MaxUsers:                1,
	MaxStorageGB:            0,
	MaxProjectsPerWorkspace: 1,
}

// LimitKind selects which ceiling CheckUsageLimit compares against.
type LimitKind string

const (
	LimitWorkspaces           LimitKind = "workspaces"
	LimitUsers                LimitKind = "users"
	LimitProjectsPerWorkspace LimitKind = "projects_per_workspace"
)

// LimitsService resolves an organization's current subscription, plan, and
// usage limits. It is consulted before workspace and project creation.
type LimitsService struct {
	orgRepo       repository.OrganizationRepository
	workspaceRepo repository.WorkspaceRepository
	clock         clock.Clock
	logger        *zap.Logger
}

// NewLimitsService creates a new LimitsService.
func NewLimitsService(orgRepo repository.OrganizationRepository, workspaceRepo repository.WorkspaceRepository, clk clock.Clock, logger *zap.Logger) *LimitsService {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LimitsService{orgRepo: orgRepo, workspaceRepo: workspaceRepo, clock: clk, logger: logger}
}

// WithTx returns a LimitsService whose reads run inside the transaction, so
// limit checks stay consistent with the write they gate.
func (s *LimitsService) WithTx(tx *gorm.DB) *LimitsService {
	return &LimitsService{
		orgRepo:       s.orgRepo.WithTx(tx),
		workspaceRepo: s.workspaceRepo.WithTx(tx),
		clock:         s.clock,
		logger:        s.logger,
	}
}

// Now exposes the service clock, so trial computations stay testable.
func (s *LimitsService) Now() time.Time {
	return s.clock.Now()
}

// CurrentUsage returns live workspace and member counts.
func (s *LimitsService) CurrentUsage(orgID uuid.UUID) (workspaces, members int64, err error) {
	workspaces, err = s.orgRepo.CountActiveWorkspaces(orgID)
	if err != nil {
		return 0, 0, err
	}
	members, err = s.orgRepo.CountActiveMembers(orgID)
	if err != nil {
		return 0, 0, err
	}
	return workspaces, members, nil
}

// CurrentSubscription returns the organization's authoritative subscription:
// the first active or trialing one in insertion order, or nil.
func (s *LimitsService) CurrentSubscription(orgID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.orgRepo.CurrentSubscription(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve current subscription: %w", err)
	}
	return sub, nil
}

// CurrentPlan returns the plan behind the current subscription, or nil.
func (s *LimitsService) CurrentPlan(orgID uuid.UUID) (*models.SubscriptionPlan, error) {
	sub, err := s.CurrentSubscription(orgID)
	if err != nil || sub == nil {
		return nil, err
	}
	return &sub.Plan, nil
}

// UsageLimits returns the plan's ceilings, or the hard-coded minimal fallback
// when no plan is resolvable.
func (s *LimitsService) UsageLimits(orgID uuid.UUID) (UsageLimits, error) {
	plan, err := s.CurrentPlan(orgID)
	if err != nil {
		return UsageLimits{}, err
	}
	if plan == nil {
		return fallbackLimits, nil
	}
	return UsageLimits{
		MaxWorkspaces:           plan.MaxWorkspaces,
		MaxUsers:                plan.MaxUsers,
		MaxStorageGB:            plan.MaxStorageGB,
		MaxProjectsPerWorkspace: plan.MaxProjectsPerWorkspace,
	}, nil
}

// CheckUsageLimit compares a live count against the resolved ceiling. It
// returns false when the scope is at or over the limit; it never raises a
// rejection itself. scopeID is the organization for workspace and user kinds,
// and the workspace for the projects-per-workspace kind.
func (s *LimitsService) CheckUsageLimit(scopeID uuid.UUID, kind LimitKind) (bool, error) {
	switch kind {
	case LimitWorkspaces:
		limits, err := s.UsageLimits(scopeID)
		if err != nil {
			return false, err
		}
		current, err := s.orgRepo.CountActiveWorkspaces(scopeID)
		if err != nil {
			return false, err
		}
		return current < int64(limits.MaxWorkspaces), nil
	case LimitUsers:
		limits, err := s.UsageLimits(scopeID)
		if err != nil {
			return false, err
		}
		current, err := s.orgRepo.CountActiveMembers(scopeID)
		if err != nil {
			return false, err
		}
		return current < int64(limits.MaxUsers), nil
	case LimitProjectsPerWorkspace:
		workspace, err := s.workspaceRepo.FindByID(scopeID)
		if err != nil {
			return false, err
		}
		limits, err := s.UsageLimits(workspace.OrganizationID)
		if err != nil {
			return false, err
		}
		current, err := s.workspaceRepo.CountActiveProjects(scopeID)
		if err != nil {
			return false, err
		}
		return current < int64(limits.MaxProjectsPerWorkspace), nil
	default:
		// Unknown kinds are not enforced.
		return true, nil
	}
}

// IsFeatureEnabled checks a plan feature flag for the organization.
func (s *LimitsService) IsFeatureEnabled(orgID uuid.UUID, feature string) (bool, error) {
	plan, err := s.CurrentPlan(orgID)
	if err != nil {
		return false, err
	}
	if plan == nil {
		return false, nil
	}
	return plan.HasFeature(feature), nil
}

// CancelSubscription cancels the organization's live subscription. With
// atPeriodEnd the subscription stays live and is only flagged; access lapses
// when the current period does. Otherwise it is cancelled immediately.
func (s *LimitsService) CancelSubscription(orgID uuid.UUID, atPeriodEnd bool) (*models.Subscription, error) {
	sub, err := s.CurrentSubscription(orgID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}

	now := s.clock.Now()
	if atPeriodEnd {
		sub.CancelAtPeriodEnd = true
	} else {
		sub.Status = models.SubscriptionCancelled
		sub.CancelledAt = &now
	}
	if err := s.orgRepo.UpdateSubscription(sub); err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	s.logger.Info("subscription cancelled",
		zap.String("organization_id", orgID.String()),
		zap.Bool("at_period_end", atPeriodEnd),
	)
	return sub, nil
}
