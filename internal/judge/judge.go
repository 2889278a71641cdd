// internal/judge/judge.go

// Package judge consults an external text-completion collaborator to
// classify tool operations the deterministic rules could not.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Verdict is the judge's answer for an operation.
type Verdict string

const (
	VerdictAllow Verdict = "allow"
	VerdictDeny  Verdict = "deny"
	VerdictAsk   Verdict = "ask"
)

// Request describes the operation being judged.
type Request struct {
	ToolName  string
	ToolInput json.RawMessage
	Cwd       string
}

// Judge evaluates an operation and answers with exactly one verdict.
type Judge interface {
	Evaluate(ctx context.Context, req Request) (Verdict, error)
}

// Config selects and tunes the completion provider.
type Config struct {
	BaseURL          string
	APIKey           string
	Model            string
	MaxTokens        int
	Temperature      float32
	InputTokenBudget int
}

// completer is the minimal single-shot completion surface a provider
// implements.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

// Client renders the judgment prompt, sends it through the configured
// provider with retries, and parses the one-word reply.
type Client struct {
	provider completer
	retry    *RetryPolicy
	budget   int

	tokOnce sync.Once
	tok     *tiktoken.Tiktoken
	model   string
}

// New creates a judge Client. The provider is chosen from the model name the
// same way the verdicts are requested: "grok" models go through the
// OpenAI-compatible xAI endpoint, "claude"/"anthropic" through Anthropic,
// anything else through the OpenAI-compatible endpoint in cfg.BaseURL.
func New(cfg *Config) (*Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("judge model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("judge API key is required")
	}

	var provider completer
	lower := strings.ToLower(cfg.Model)
	switch {
	case strings.Contains(lower, "claude") || strings.Contains(lower, "anthropic"):
		provider = newAnthropic(cfg)
	default:
		provider = newOpenAI(cfg)
	}

	budget := cfg.InputTokenBudget
	if budget <= 0 {
		budget = 2000
	}

	return &Client{
		provider: provider,
		retry:    DefaultRetryPolicy(),
		budget:   budget,
		model:    cfg.Model,
	}, nil
}

// Evaluate asks the provider for a verdict, retrying transient failures.
// Anything other than a clean ALLOW/DENY/ASK reply is an error; the
// caller is expected to fall back to ask.
func (c *Client) Evaluate(ctx context.Context, req Request) (Verdict, error) {
	prompt := c.buildPrompt(req)

	var reply string
	err := c.retry.Execute(ctx, func() error {
		var err error
		reply, err = c.provider.complete(ctx, prompt)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("judge completion: %w", err)
	}

	return ParseVerdict(reply)
}

// ParseVerdict maps a completion reply to a Verdict. The first
// whitespace-delimited token must be exactly ALLOW, DENY, or ASK
// (case-insensitive).
func ParseVerdict(reply string) (Verdict, error) {
	fields := strings.Fields(strings.TrimSpace(reply))
	if len(fields) != 1 {
		return "", fmt.Errorf("malformed judge reply: %q", reply)
	}
	switch strings.ToUpper(fields[0]) {
	case "ALLOW":
		return VerdictAllow, nil
	case "DENY":
		return VerdictDeny, nil
	case "ASK":
		return VerdictAsk, nil
	}
	return "", fmt.Errorf("unrecognized judge verdict: %q", reply)
}

func (c *Client) buildPrompt(req Request) string {
	rendered := renderInput(req.ToolInput)
	rendered = c.truncate(rendered)

	return fmt.Sprintf(`You are a security advisor evaluating tool use in a coding assistant.

Tool: %s
Input: %s
Working Directory: %s

Evaluate this operation and respond with ONE word only:
- ALLOW: Safe operation, auto-approve (e.g., read-only operations, safe commands)
- DENY: Dangerous/destructive, block it (e.g., rm -rf, DROP TABLE, deleting critical files)
- ASK: Unclear risk, let user decide (e.g., modifying sensitive files, complex operations)

Consider:
- Is this read-only? -> ALLOW
- Is this destructive or irreversible? -> DENY or ASK
- Does it modify critical files (.env, .git/, credentials)? -> ASK
- Is the risk low and context clear? -> ALLOW

Response (ONE WORD ONLY):`, req.ToolName, rendered, req.Cwd)
}

func renderInput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(pretty)
}

// truncate caps the rendered tool input at the token budget. The tokenizer
// is initialized lazily; when the encoding is unavailable the cap falls back
// to a rune count, which overestimates tokens and so still bounds the prompt.
func (c *Client) truncate(text string) string {
	c.tokOnce.Do(func() {
		enc, err := tiktoken.EncodingForModel(c.model)
		if err != nil {
			enc, err = tiktoken.GetEncoding("cl100k_base")
			if err != nil {
				return
			}
		}
		c.tok = enc
	})

	if c.tok == nil {
		runes := []rune(text)
		if len(runes) <= c.budget {
			return text
		}
		return string(runes[:c.budget]) + "\n... (truncated)"
	}

	ids := c.tok.Encode(text, nil, nil)
	if len(ids) <= c.budget {
		return text
	}
	return c.tok.Decode(ids[:c.budget]) + "\n... (truncated)"
}
