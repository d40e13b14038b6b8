package services

import (
	"errors"
	"fmt"
)

// RejectionCode is the machine-readable reason carried by a rejected write.
type RejectionCode string

const (
	RejectionLimitExceeded   RejectionCode = "LIMIT_EXCEEDED"
	RejectionNotOrgMember    RejectionCode = "NOT_ORG_MEMBER"
	RejectionInvalidDates    RejectionCode = "INVALID_DATE_RANGE"
	RejectionSelfDependency  RejectionCode = "SELF_DEPENDENCY"
	RejectionCrossProject    RejectionCode = "CROSS_PROJECT_DEPENDENCY"
	RejectionDuplicate       RejectionCode = "DUPLICATE"
	RejectionInvalidInput    RejectionCode = "INVALID_INPUT"
)

// RejectedWriteError aborts the triggering transaction; none of the write's
// lifecycle side effects apply when one is returned.
type RejectedWriteError struct {
	Code    RejectionCode
	Message string
}

func (e *RejectedWriteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any RejectedWriteError with the same code, so callers can use
// errors.Is against the sentinel values below.
func (e *RejectedWriteError) Is(target error) bool {
	var t *RejectedWriteError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func rejected(code RejectionCode, format string, args ...interface{}) error {
	return &RejectedWriteError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is checks.
var (
	ErrLimitExceeded  = &RejectedWriteError{Code: RejectionLimitExceeded}
	ErrNotOrgMember   = &RejectedWriteError{Code: RejectionNotOrgMember}
	ErrInvalidDates   = &RejectedWriteError{Code: RejectionInvalidDates}
	ErrSelfDependency = &RejectedWriteError{Code: RejectionSelfDependency}
	ErrCrossProject   = &RejectedWriteError{Code: RejectionCrossProject}
	ErrDuplicate      = &RejectedWriteError{Code: RejectionDuplicate}
)

// Not-found sentinels shared across services.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrWorkspaceNotFound    = errors.New("workspace not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// ErrConflict surfaces a unique-constraint violation on a racing create. The
// core never retries; the caller owns retry policy.
var ErrConflict = errors.New("conflicting concurrent write")
