package constants

import "time"

// Session and context keys
const (
	SessionCookieName = "nexuspm_session"
	ContextKeyUserID  = "user_id"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Authentication policy
const (
	MinPasswordLength = 8
	MaxFailedLogins   = 5
	AccountLockWindow = 30 * time.Minute
)

// Subscription policy
const (
	TrialPeriodDays = 14
)
