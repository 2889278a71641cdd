package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/hooksmith/internal/session"
	"github.com/user/hooksmith/internal/types"
)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetModeCmd, settingsSetHookCmd, settingsFixDefaultsCmd, settingsListCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage per-session settings",
}

func settingsStore() *session.SettingsStore {
	cfg := loadConfig()
	return session.NewSettingsStore(cfg.DataDir, storeOptions(cfg)...)
}

var settingsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show settings for a session in KEY=VALUE form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := settingsStore()
		settings, err := store.Load(args[0])
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		mode := "not_set"
		if m, ok := settings.Metadata[types.MetaApprovalMode].(string); ok && m != "" {
			mode = m
		}

		fmt.Printf("SESSION_ID=%s\n", args[0])
		fmt.Printf("APPROVAL_MODE=%s\n", mode)
		fmt.Printf("CREATED_AT=%s\n", settings.CreatedAt)
		fmt.Printf("STOP_HOOK=%t\n", settings.HookEnabled(types.HookStop))
		fmt.Printf("NOTIFICATION_HOOK=%t\n", settings.HookEnabled(types.HookNotification))
		fmt.Printf("SESSION_START=%t\n", settings.HookEnabled(types.HookSessionStart))
		fmt.Printf("SESSION_END=%t\n", settings.HookEnabled(types.HookSessionEnd))
		return nil
	},
}

var settingsSetModeCmd = &cobra.Command{
	Use:   "set-mode <session-id> <ai|auto|strict|disabled>",
	Short: "Set the approval mode for a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := settingsStore()
		if err := store.SetMetadata(args[0], types.MetaApprovalMode, args[1]); err != nil {
			return fmt.Errorf("set approval mode: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Approval mode set to: %s\n", args[1])
		return nil
	},
}

var settingsSetHookCmd = &cobra.Command{
	Use:   "set-hook <session-id> <hook-name> <true|false>",
	Short: "Enable or disable a hook for a session",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled := false
		switch strings.ToLower(args[2]) {
		case "true", "1", "yes":
			enabled = true
		}

		store := settingsStore()
		if err := store.SetHookEnabled(args[0], args[1], enabled); err != nil {
			return fmt.Errorf("set hook: %w", err)
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Fprintf(os.Stdout, "%s: %s\n", args[1], state)
		return nil
	},
}

var settingsFixDefaultsCmd = &cobra.Command{
	Use:   "fix-defaults <session-id>",
	Short: "Restore the default approval mode and re-enable every hook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := settingsStore()
		settings, err := store.Load(args[0])
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		mode, _ := settings.Metadata[types.MetaApprovalMode].(string)
		if mode == "" || mode == "not_set" {
			if err := store.SetMetadata(args[0], types.MetaApprovalMode, string(types.ModeAI)); err != nil {
				return fmt.Errorf("fix approval mode: %w", err)
			}
			fmt.Println("Fixed approval mode to: ai")
		}

		for _, name := range types.HookNames {
			if settings.HooksEnabled[name] {
				continue
			}
			if err := store.SetHookEnabled(args[0], name, true); err != nil {
				return fmt.Errorf("enable %s: %w", name, err)
			}
			fmt.Fprintf(os.Stdout, "Enabled %s\n", name)
		}

		fmt.Println("Defaults fixed.")
		return nil
	},
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List settings for every session, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := settingsStore()
		all, err := store.ListAll()
		if err != nil {
			return fmt.Errorf("list settings: %w", err)
		}
		if len(all) == 0 {
			fmt.Println("No session settings found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tMODE\tCREATED\tDISABLED HOOKS")
		for _, s := range all {
			mode, _ := s.Metadata[types.MetaApprovalMode].(string)
			if mode == "" {
				mode = "not_set"
			}
			var disabled []string
			for _, name := range types.HookNames {
				if !s.HookEnabled(name) {
					disabled = append(disabled, name)
				}
			}
			disabledCol := "-"
			if len(disabled) > 0 {
				disabledCol = strings.Join(disabled, ",")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.SessionID, mode, s.CreatedAt, disabledCol)
		}
		return w.Flush()
	},
}
