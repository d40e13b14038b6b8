package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Settings blobs are stored as JSON columns but are schema-validated on the
// way in: only the keys declared on these structs are recognized, anything
// else is dropped on unmarshal.

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	return string(b), nil
}

func jsonScan(dest interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for settings column")
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}

// PlanFeatures is the feature-flag map carried by a subscription plan.
type PlanFeatures map[string]bool

func (f PlanFeatures) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	return jsonValue(f)
}

func (f *PlanFeatures) Scan(value interface{}) error {
	return jsonScan(f, value)
}

// NotificationSettings are the org-wide email notification defaults.
type NotificationSettings struct {
	EmailProjectUpdates  bool `json:"email_project_updates"`
	EmailTaskAssignments bool `json:"email_task_assignments"`
	EmailMentions        bool `json:"email_mentions"`
}

// OrganizationPreferences echo the owner's localization at creation time.
type OrganizationPreferences struct {
	DefaultTimezone string `json:"default_timezone"`
	DefaultLanguage string `json:"default_language"`
	WeekStartsOn    string `json:"week_starts_on"`
}

// OrganizationSettings is the versioned org settings record.
type OrganizationSettings struct {
	Version             int                     `json:"version"`
	CreatedVia          string                  `json:"created_via"`
	OnboardingCompleted bool                    `json:"onboarding_completed"`
	Notifications       NotificationSettings    `json:"notifications"`
	Preferences         OrganizationPreferences `json:"preferences"`
}

func (s OrganizationSettings) Value() (driver.Value, error) { return jsonValue(s) }
func (s *OrganizationSettings) Scan(value interface{}) error {
	return jsonScan(s, value)
}

// IsZero reports whether the blob was never populated.
func (s OrganizationSettings) IsZero() bool {
	return s == OrganizationSettings{}
}

// WorkspaceSettings hold team-level defaults keyed off the workspace type.
type WorkspaceSettings struct {
	Version                 int      `json:"version"`
	ProjectTemplate         string   `json:"default_project_template"`
	EnableTimeTracking      bool     `json:"enable_time_tracking"`
	EnableCodeIntegration   bool     `json:"enable_code_integration,omitempty"`
	EnableAssetManagement   bool     `json:"enable_asset_management,omitempty"`
	EnableApprovalWorkflows bool     `json:"enable_approval_workflows,omitempty"`
	EnableVersionControl    bool     `json:"enable_version_control,omitempty"`
	DefaultTaskStatuses     []string `json:"default_task_statuses"`
}

func (s WorkspaceSettings) Value() (driver.Value, error) { return jsonValue(s) }
func (s *WorkspaceSettings) Scan(value interface{}) error {
	return jsonScan(s, value)
}

func (s WorkspaceSettings) IsZero() bool {
	return s.Version == 0 && s.ProjectTemplate == "" && len(s.DefaultTaskStatuses) == 0
}

// ProjectNotificationSettings toggle per-project notification events.
type ProjectNotificationSettings struct {
	TaskAssignments  bool `json:"task_assignments"`
	DueDateReminders bool `json:"due_date_reminders"`
	StatusChanges    bool `json:"status_changes"`
}

// ProjectSettings are derived from the owning workspace's type defaults.
type ProjectSettings struct {
	Version            int                         `json:"version"`
	Workflow           string                      `json:"workflow"`
	TaskStatuses       []string                    `json:"task_statuses"`
	EnableTimeTracking bool                        `json:"enable_time_tracking"`
	Notifications      ProjectNotificationSettings `json:"notifications"`
}

func (s ProjectSettings) Value() (driver.Value, error) { return jsonValue(s) }
func (s *ProjectSettings) Scan(value interface{}) error {
	return jsonScan(s, value)
}

func (s ProjectSettings) IsZero() bool {
	return s.Version == 0 && s.Workflow == "" && len(s.TaskStatuses) == 0
}

// StringList is a JSON-encoded list column (task tags).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return jsonValue(l)
}

func (l *StringList) Scan(value interface{}) error {
	return jsonScan(l, value)
}
