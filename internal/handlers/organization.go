package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deyby01/nexus-pm-v2/internal/dto"
	apierrors "github.com/deyby01/nexus-pm-v2/internal/errors"
	"github.com/deyby01/nexus-pm-v2/internal/middleware"
	"github.com/deyby01/nexus-pm-v2/internal/models"
	"github.com/deyby01/nexus-pm-v2/internal/services"
)

// OrganizationHandler coordinates organization HTTP handlers.
type OrganizationHandler struct {
	orgService *services.OrganizationService
	limits     *services.LimitsService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(orgService *services.OrganizationService, limits *services.LimitsService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
		limits:     limits,
	}
}

// CreateOrganization creates an organization owned by the caller.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateOrganizationRequest struct {
		Name        string `json:"name" binding:"required,min=1,max=100"`
		Description string `json:"description"`
		Email       string `json:"email"`
		Phone       string `json:"phone"`
		Website     string `json:"website"`
	}

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.CreateOrganization(services.CreateOrganizationInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
		Email:       req.Email,
		Phone:       req.Phone,
		Website:     req.Website,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationDTO(*org))
}

// ListOrganizations returns the caller's organizations.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	memberships, err := h.orgService.ListOrganizationsForUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	orgs := make([]dto.OrganizationDTO, 0, len(memberships))
	for _, m := range memberships {
		orgs = append(orgs, dto.ToOrganizationDTO(m.Organization))
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

// GetOrganization returns the organization resolved by the access middleware.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	raw, _ := c.Get("organization")
	org, ok := raw.(models.Organization)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, dto.ToOrganizationDTO(org))
}

// UpdateOrganization updates basic organization fields.
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization ID")
		return
	}

	type UpdateOrganizationRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Website     *string `json:"website"`
	}

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.UpdateOrganization(orgID, services.UpdateOrganizationInput{
		Name:        req.Name,
		Description: req.Description,
		Website:     req.Website,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org))
}

// DeleteOrganization cancels subscriptions and soft-deletes the organization.
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization ID")
		return
	}

	if err := h.orgService.DeleteOrganization(orgID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted"})
}

// ListMembers returns the active members of the organization.
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization ID")
		return
	}

	members, err := h.orgService.ListMembers(orgID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.OrganizationMemberDTO, len(members))
	for i, m := range members {
		out[i] = dto.ToOrganizationMemberDTO(m)
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

// AddMember adds a user to the organization.
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization ID")
		return
	}

	inviterID, _ := middleware.GetUserID(c)

	type AddMemberRequest struct {
		UserID string                  `json:"user_id" binding:"required,uuid"`
		Role   models.OrganizationRole `json:"role"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	memberID, err := uuid.Parse(req.UserID)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	membership, err := h.orgService.AddMember(services.AddMemberInput{
		OrganizationID: orgID,
		UserID:         memberID,
		Role:           req.Role,
		InvitedByID:    &inviterID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationMemberDTO(*membership))
}

// RemoveMember deactivates an organization membership.
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization ID")
		return
	}
	memberID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.orgService.RemoveMember(orgID, memberID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// GetSubscription returns the current subscription, or 404 when none exists.
func (h *OrganizationHandler) GetSubscription(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization ID")
		return
	}

	sub, err := h.limits.CurrentSubscription(orgID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if sub == nil {
		apierrors.NotFound(c, "No active subscription")
		return
	}

	c.JSON(http.StatusOK, dto.ToSubscriptionDTO(*sub, h.limits.Now()))
}

// CancelSubscription cancels the organization's subscription, immediately or
// at the end of the current billing period.
func (h *OrganizationHandler) CancelSubscription(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization ID")
		return
	}

	type CancelSubscriptionRequest struct {
		AtPeriodEnd bool `json:"at_period_end"`
	}

	var req CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	sub, err := h.limits.CancelSubscription(orgID, req.AtPeriodEnd)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubscriptionDTO(*sub, h.limits.Now()))
}

// GetUsageLimits reports the plan ceilings alongside live usage counts.
func (h *OrganizationHandler) GetUsageLimits(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization ID")
		return
	}

	limits, err := h.limits.UsageLimits(orgID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	workspaces, members, err := h.limits.CurrentUsage(orgID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UsageLimitsDTO{
		Limits:           limits,
		ActiveWorkspaces: workspaces,
		ActiveMembers:    members,
	})
}
