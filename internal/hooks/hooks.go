// internal/hooks/hooks.go

// Package hooks wires the host assistant's stdin/stdout hook contracts to
// the session registry, settings store, todo scanner, and approval engine.
// Handlers never fail the invoking process: every internal error degrades to
// a safe default so the host's control flow is never blocked.
package hooks

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/user/hooksmith/internal/approval"
	"github.com/user/hooksmith/internal/session"
	"github.com/user/hooksmith/internal/types"
)

// Event identifies which hook the host invoked.
type Event string

const (
	EventSessionStart Event = "session-start"
	EventSessionEnd   Event = "session-end"
	EventNotification Event = "notification"
	EventStop         Event = "stop"
	EventPreToolUse   Event = "pre-tool-use"
)

// Events lists every supported hook event.
var Events = []Event{EventSessionStart, EventSessionEnd, EventNotification, EventStop, EventPreToolUse}

// Input is the union of fields the host sends on stdin across event types.
type Input struct {
	SessionID      string          `json:"session_id"`
	TranscriptPath string          `json:"transcript_path"`
	Cwd            string          `json:"cwd"`
	PermissionMode string          `json:"permission_mode"`
	Message        string          `json:"message"`
	ToolName       string          `json:"tool_name"`
	ToolInput      json.RawMessage `json:"tool_input"`
	StopHookActive bool            `json:"stop_hook_active"`
}

// preToolUseOutput is the host's PreToolUse decision envelope.
type preToolUseOutput struct {
	HookSpecificOutput hookSpecificOutput `json:"hookSpecificOutput"`
}

type hookSpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision"`
	PermissionDecisionReason string `json:"permissionDecisionReason"`
}

// stopOutput blocks the assistant from stopping while work remains.
type stopOutput struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// PermissionNotifier pushes a needs-permission notice out of band.
type PermissionNotifier interface {
	NotifyPermission(sess *types.Session, message string) error
}

// Dispatcher routes one hook invocation to its handler.
type Dispatcher struct {
	registry *session.Registry
	settings *session.SettingsStore
	engine   *approval.Engine
	notifier PermissionNotifier
}

// New creates a Dispatcher. The notifier may be nil.
func New(registry *session.Registry, settings *session.SettingsStore, engine *approval.Engine, notifier PermissionNotifier) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		settings: settings,
		engine:   engine,
		notifier: notifier,
	}
}

// Run decodes one JSON object from r, dispatches it to the handler for
// event, and writes at most one JSON object to w. Unknown events are the
// only error; every handled path reports success so the hook process exits
// cleanly.
func (d *Dispatcher) Run(event Event, r io.Reader, w io.Writer) error {
	var in Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		if event == EventPreToolUse {
			// A decision-bearing hook still owes the host an answer.
			d.emitDecision(w, "ask", fmt.Sprintf("Hook input error: %v - defaulting to ask", err))
			return nil
		}
		slog.Warn("malformed hook input", "event", event, "error", err)
		return nil
	}

	switch event {
	case EventSessionStart:
		d.handleSessionStart(&in)
	case EventSessionEnd:
		d.handleSessionEnd(&in)
	case EventNotification:
		d.handleNotification(&in)
	case EventStop:
		d.handleStop(&in, w)
	case EventPreToolUse:
		d.handlePreToolUse(&in, w)
	default:
		return fmt.Errorf("unknown hook event: %s", event)
	}
	return nil
}

func (d *Dispatcher) emitDecision(w io.Writer, decision, reason string) {
	out := preToolUseOutput{
		HookSpecificOutput: hookSpecificOutput{
			HookEventName:            "PreToolUse",
			PermissionDecision:       decision,
			PermissionDecisionReason: reason,
		},
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		slog.Warn("write decision", "error", err)
	}
}
