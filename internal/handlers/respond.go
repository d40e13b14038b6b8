package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apierrors "github.com/deyby01/nexus-pm-v2/internal/errors"
	"github.com/deyby01/nexus-pm-v2/internal/services"
)

// respondServiceError maps core errors onto HTTP responses. Rejected writes
// carry their machine-readable code through to the client as a 422.
func respondServiceError(c *gin.Context, err error) {
	var rejection *services.RejectedWriteError
	if errors.As(err, &rejection) {
		if rejection.Code == services.RejectionInvalidInput {
			apierrors.BadRequestWithCode(c, string(rejection.Code), rejection.Message)
			return
		}
		apierrors.UnprocessableWithCode(c, string(rejection.Code), rejection.Message)
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrOrganizationNotFound),
		errors.Is(err, services.ErrWorkspaceNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrMembershipNotFound),
		errors.Is(err, services.ErrSubscriptionNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		apierrors.Conflict(c, "")
	default:
		apierrors.InternalError(c, "")
	}
}
