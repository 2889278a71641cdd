package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/hooksmith/internal/config"
	"github.com/user/hooksmith/internal/store"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "hooksmith",
	Short:        "Session state and approval hooks for an AI coding assistant",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath,
		"config",
		filepath.Join(os.Getenv("HOME"), ".hooksmith", "config.json"),
		"config file path")
}

func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func storeOptions(cfg *config.Config) []store.Option {
	opts := []store.Option{store.WithStrict(cfg.Storage.StrictLocking)}
	if cfg.Storage.LockTimeoutMS > 0 {
		opts = append(opts, store.WithTimeout(time.Duration(cfg.Storage.LockTimeoutMS)*time.Millisecond))
	}
	return opts
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
