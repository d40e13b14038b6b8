package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deyby01/nexus-pm-v2/internal/authz"
	"github.com/deyby01/nexus-pm-v2/internal/database"
	apierrors "github.com/deyby01/nexus-pm-v2/internal/errors"
	"github.com/deyby01/nexus-pm-v2/internal/models"
)

// RequireOrganizationAccess checks if the user is an active member of the
// organization named by the :orgId parameter.
func RequireOrganizationAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := uuid.Parse(c.Param("orgId"))
		if err != nil {
			apierrors.BadRequest(c, "Invalid organization ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var org models.Organization
		if err := database.GetDB().First(&org, "id = ?", orgID).Error; err != nil {
			apierrors.NotFound(c, "Organization not found")
			c.Abort()
			return
		}

		var membership models.OrganizationMembership
		err = database.GetDB().
			Where("organization_id = ? AND user_id = ? AND is_active = ?", orgID, userID, true).
			First(&membership).Error
		if err != nil {
			// Return 404 instead of 403 to avoid leaking organization existence
			apierrors.NotFound(c, "Organization not found")
			c.Abort()
			return
		}

		c.Set("organization", org)
		c.Set("organization_membership", membership)
		c.Next()
	}
}

// RequireOrganizationOwner checks if the user is the owner of the
// organization resolved by RequireOrganizationAccess.
func RequireOrganizationOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		membership, ok := organizationMembership(c)
		if !ok {
			apierrors.Forbidden(c, "Organization access required")
			c.Abort()
			return
		}

		if membership.Role != models.OrgRoleOwner {
			apierrors.Forbidden(c, "Only organization owners can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireOrganizationAdmin checks if the user holds an elevated (owner or
// admin) role in the organization resolved by RequireOrganizationAccess.
func RequireOrganizationAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		membership, ok := organizationMembership(c)
		if !ok {
			apierrors.Forbidden(c, "Organization access required")
			c.Abort()
			return
		}

		if !authz.IsOrgElevated(membership.Role) {
			apierrors.Forbidden(c, "Organization admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

func organizationMembership(c *gin.Context) (models.OrganizationMembership, bool) {
	raw, exists := c.Get("organization_membership")
	if !exists {
		return models.OrganizationMembership{}, false
	}
	membership, ok := raw.(models.OrganizationMembership)
	return membership, ok
}
