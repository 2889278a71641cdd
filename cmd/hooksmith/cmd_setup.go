package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/hooksmith/internal/config"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("Hooksmith Setup Wizard")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		// 1. Data directory
		cfg.DataDir = prompt(scanner, "Data directory", cfg.DataDir)

		// 2. Judge model
		cfg.Judge.Model = prompt(scanner, "Judge model name", cfg.Judge.Model)

		// 3. Judge API key
		cfg.Judge.APIKey = prompt(scanner, "Judge API key", cfg.Judge.APIKey)

		// 4. Judge base URL (optional, inferred from the model when empty)
		cfg.Judge.BaseURL = prompt(scanner, "Judge base URL (optional)", cfg.Judge.BaseURL)

		// 5. Telegram notifications (optional)
		cfg.Telegram.Token = prompt(scanner, "Telegram bot token (optional)", cfg.Telegram.Token)
		if cfg.Telegram.Token != "" {
			chatStr := prompt(scanner, "Telegram chat id", strconv.FormatInt(cfg.Telegram.ChatID, 10))
			if n, err := strconv.ParseInt(chatStr, 10, 64); err == nil {
				cfg.Telegram.ChatID = n
			}
		}

		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println()
		fmt.Println("Configuration saved to", cfgPath)
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}
