// internal/types/models.go
package types

// SessionStatus describes what a tracked session is currently doing.
type SessionStatus string

const (
	StatusRunning         SessionStatus = "running"
	StatusNeedsPermission SessionStatus = "needs_permission"
	StatusWaitingForInput SessionStatus = "waiting_for_input"
)

// Session is one tracked assistant run. The registry holds at most one
// record per SessionID.
type Session struct {
	SessionID        string        `json:"session_id"`
	Cwd              string        `json:"cwd"`
	TranscriptPath   string        `json:"transcript_path"`
	PermissionMode   string        `json:"permission_mode"`
	Status           SessionStatus `json:"status"`
	StartedAt        float64       `json:"started_at"`
	LastActivity     float64       `json:"last_activity"`
	LastNotification string        `json:"last_notification,omitempty"`
}

// SessionsFile is the on-disk shape of the shared registry document.
// Timestamps are epoch seconds; LastUpdated is null until the first write.
type SessionsFile struct {
	Sessions    []Session `json:"sessions"`
	LastUpdated *float64  `json:"last_updated"`
}

// ApprovalMode is the per-session policy governing tool authorization.
type ApprovalMode string

const (
	ModeAI       ApprovalMode = "ai"
	ModeAuto     ApprovalMode = "auto"
	ModeStrict   ApprovalMode = "strict"
	ModeDisabled ApprovalMode = "disabled"
)

// Recognized hook names in a settings document.
const (
	HookStop         = "stop-hook"
	HookNotification = "notification-hook"
	HookSessionStart = "session-start"
	HookSessionEnd   = "session-end"
)

// HookNames lists every recognized hook, in the order defaults are written.
var HookNames = []string{HookStop, HookNotification, HookSessionStart, HookSessionEnd}

// MetaApprovalMode is the metadata key holding the approval mode.
const MetaApprovalMode = "approval_mode"

// Settings is the per-session settings document. Unset hook names default
// to enabled; metadata is an open string-keyed map whose recognized key is
// MetaApprovalMode.
type Settings struct {
	SessionID    string          `json:"session_id"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at,omitempty"`
	HooksEnabled map[string]bool `json:"hooks_enabled"`
	Metadata     map[string]any  `json:"metadata"`
}

// HookEnabled reports whether the named hook is enabled, defaulting to
// enabled when the name is absent.
func (s *Settings) HookEnabled(name string) bool {
	if s.HooksEnabled == nil {
		return true
	}
	enabled, ok := s.HooksEnabled[name]
	if !ok {
		return true
	}
	return enabled
}

// Todo item statuses as written by the assistant's TodoWrite tool.
const (
	TodoPending    = "pending"
	TodoInProgress = "in_progress"
	TodoCompleted  = "completed"
)

// TodoItem is one unit of declared work inside a transcript. It is never
// persisted by this system; it is derived from the transcript on demand.
type TodoItem struct {
	Content    string `json:"content"`
	Status     string `json:"status"`
	ActiveForm string `json:"activeForm,omitempty"`
}

// Incomplete reports whether the item still needs work.
func (t TodoItem) Incomplete() bool {
	return t.Status == TodoPending || t.Status == TodoInProgress
}
