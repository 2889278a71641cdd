package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/hooksmith/internal/session"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionListCmd, sessionCurrentCmd, sessionClearCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect tracked sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tracked sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		registry := session.NewRegistry(cfg.DataDir, storeOptions(cfg)...)

		sessions, err := registry.List()
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tCWD\tLAST ACTIVITY")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				s.SessionID,
				s.Status,
				s.Cwd,
				time.Unix(int64(s.LastActivity), 0).Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

var sessionCurrentCmd = &cobra.Command{
	Use:   "current [cwd]",
	Short: "Print the most recently active session id for a working directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		registry := session.NewRegistry(cfg.DataDir, storeOptions(cfg)...)

		cwd := ""
		if len(args) == 1 {
			cwd = args[0]
		} else {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("resolve cwd: %w", err)
			}
			cwd = wd
		}

		sess, err := registry.FindLatestByCwd(cwd)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, sess.SessionID)
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear <id|all>",
	Short: "Remove a session (or every session) from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		opts := storeOptions(cfg)
		registry := session.NewRegistry(cfg.DataDir, opts...)
		settings := session.NewSettingsStore(cfg.DataDir, opts...)

		if args[0] == "all" {
			sessions, err := registry.List()
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			for _, s := range sessions {
				if err := registry.Remove(s.SessionID); err != nil {
					return fmt.Errorf("remove session %s: %w", s.SessionID, err)
				}
			}
			fmt.Println("All sessions cleared.")
			return nil
		}

		if err := registry.Remove(args[0]); err != nil {
			return fmt.Errorf("remove session: %w", err)
		}
		if err := settings.Delete(args[0]); err != nil {
			return fmt.Errorf("remove settings: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Session %s cleared.\n", args[0])
		return nil
	},
}
