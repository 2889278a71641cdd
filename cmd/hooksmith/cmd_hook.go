package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/hooksmith/internal/approval"
	"github.com/user/hooksmith/internal/config"
	"github.com/user/hooksmith/internal/hooks"
	"github.com/user/hooksmith/internal/judge"
	"github.com/user/hooksmith/internal/notify"
	"github.com/user/hooksmith/internal/session"
)

func init() {
	rootCmd.AddCommand(hookCmd)
	for _, event := range hooks.Events {
		hookCmd.AddCommand(newHookCommand(event))
	}
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Hook entrypoints invoked by the assistant host",
}

var hookShorts = map[hooks.Event]string{
	hooks.EventSessionStart: "Register a starting session",
	hooks.EventSessionEnd:   "Drop a session that ended",
	hooks.EventNotification: "Record what a session is waiting on",
	hooks.EventStop:         "Block stopping while todos remain",
	hooks.EventPreToolUse:   "Decide whether a tool call is approved",
}

// newHookCommand builds the cobra command for one hook event. Hook commands
// read one JSON object from stdin, write the host's contract to stdout, and
// always exit 0 once dispatch begins: a hook failure must never stall the
// host session.
func newHookCommand(event hooks.Event) *cobra.Command {
	return &cobra.Command{
		Use:   string(event),
		Short: hookShorts[event],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			setupLogging(cfg)

			dispatcher := buildDispatcher(cfg)
			if err := dispatcher.Run(event, os.Stdin, os.Stdout); err != nil {
				slog.Warn("hook dispatch", "event", event, "error", err)
			}
			return nil
		},
	}
}

func buildDispatcher(cfg *config.Config) *hooks.Dispatcher {
	opts := storeOptions(cfg)
	registry := session.NewRegistry(cfg.DataDir, opts...)
	settings := session.NewSettingsStore(cfg.DataDir, opts...)

	var j judge.Judge
	client, err := judge.New(&judge.Config{
		BaseURL:          cfg.Judge.BaseURL,
		APIKey:           cfg.Judge.APIKey,
		Model:            cfg.Judge.Model,
		MaxTokens:        cfg.Judge.MaxTokens,
		Temperature:      cfg.Judge.Temperature,
		InputTokenBudget: cfg.Judge.InputTokenBudget,
	})
	if err != nil {
		// Without a judge, ai mode degrades to ask for unmatched tools.
		slog.Warn("judge unavailable", "error", err)
	} else {
		j = client
	}

	var notifier hooks.PermissionNotifier
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			slog.Warn("telegram notifier unavailable", "error", err)
		} else {
			notifier = tg
		}
	}

	return hooks.New(registry, settings, approval.NewEngine(j), notifier)
}
