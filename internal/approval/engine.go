// internal/approval/engine.go

// Package approval classifies requested tool operations as allow, deny, or
// ask, given the session's approval mode. The engine is a pure policy
// function: it persists nothing and mutates no session state.
package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/user/hooksmith/internal/judge"
	"github.com/user/hooksmith/internal/types"
)

// Decision is the engine's answer for one operation.
type Decision struct {
	Verdict judge.Verdict
	Reason  string
}

// Request describes the operation under review.
type Request struct {
	ToolName  string
	ToolInput json.RawMessage
	Cwd       string
}

// Engine evaluates requests against the mode precedence: disabled, strict,
// auto, ai (rules first, judge fallback), unknown.
type Engine struct {
	judge judge.Judge
}

// NewEngine creates an Engine. The judge may be nil, in which case the ai
// mode's fallback degrades to ask.
func NewEngine(j judge.Judge) *Engine {
	return &Engine{judge: j}
}

// Evaluate returns the decision for a request under the given mode. The
// second result is false when the engine has no opinion and the caller
// should not intervene at all (disabled mode).
func (e *Engine) Evaluate(ctx context.Context, req Request, mode types.ApprovalMode) (Decision, bool) {
	switch mode {
	case types.ModeDisabled:
		return Decision{}, false

	case types.ModeStrict:
		return Decision{
			Verdict: judge.VerdictAsk,
			Reason:  "Strict mode: Manual approval required for all operations",
		}, true

	case types.ModeAuto:
		return Decision{
			Verdict: judge.VerdictAllow,
			Reason:  "Auto mode: Bypassing all permission checks",
		}, true

	case types.ModeAI:
		return e.evaluateAI(ctx, req), true

	default:
		return Decision{
			Verdict: judge.VerdictAsk,
			Reason:  fmt.Sprintf("Unknown approval mode %q - defaulting to ask", mode),
		}, true
	}
}

func (e *Engine) evaluateAI(ctx context.Context, req Request) Decision {
	if safe, reason := safeByRule(req.ToolName, req.ToolInput); safe {
		return Decision{
			Verdict: judge.VerdictAllow,
			Reason:  fmt.Sprintf("AI mode: %s (bypassing judge)", reason),
		}
	}

	if e.judge == nil {
		return Decision{
			Verdict: judge.VerdictAsk,
			Reason:  "AI mode: no judge configured - defaulting to ask",
		}
	}

	verdict, err := e.judge.Evaluate(ctx, judge.Request{
		ToolName:  req.ToolName,
		ToolInput: req.ToolInput,
		Cwd:       req.Cwd,
	})
	if err != nil {
		slog.Warn("judge evaluation failed", "tool", req.ToolName, "error", err)
		return Decision{
			Verdict: judge.VerdictAsk,
			Reason:  fmt.Sprintf("Judge unavailable for this %s operation - defaulting to ask", req.ToolName),
		}
	}

	switch verdict {
	case judge.VerdictAllow:
		return Decision{Verdict: verdict, Reason: fmt.Sprintf("Judge approved this %s operation as safe", req.ToolName)}
	case judge.VerdictDeny:
		return Decision{Verdict: verdict, Reason: fmt.Sprintf("Judge flagged this %s operation as dangerous - blocked", req.ToolName)}
	default:
		return Decision{Verdict: judge.VerdictAsk, Reason: fmt.Sprintf("Judge needs user input for this %s operation", req.ToolName)}
	}
}
