package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	DataDir  string `json:"data_dir"`
	LogLevel string `json:"log_level"`
	Storage  struct {
		LockTimeoutMS int  `json:"lock_timeout_ms"`
		StrictLocking bool `json:"strict_locking"`
	} `json:"storage"`
	Judge struct {
		BaseURL          string  `json:"base_url"`
		APIKey           string  `json:"api_key"`
		Model            string  `json:"model"`
		MaxTokens        int     `json:"max_tokens"`
		Temperature      float32 `json:"temperature"`
		InputTokenBudget int     `json:"input_token_budget"`
	} `json:"judge"`
	Telegram struct {
		Token  string `json:"token"`
		ChatID int64  `json:"chat_id"`
	} `json:"telegram"`
}

// Load reads the config file at path, falling back to defaults (and writing
// them out) when it does not exist. Credentials can be overridden from the
// environment, which takes highest precedence.
func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:  filepath.Join(os.Getenv("HOME"), ".hooksmith"),
		LogLevel: "info",
	}
	cfg.Storage.LockTimeoutMS = 5000
	cfg.Judge.Model = "grok-4-fast"
	cfg.Judge.MaxTokens = 50
	cfg.Judge.Temperature = 0.1
	cfg.Judge.InputTokenBudget = 2000

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence). HOOKSMITH_JUDGE_API_KEY wins
	// over the provider-specific variables.
	for _, env := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "XAI_API_KEY", "HOOKSMITH_JUDGE_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			cfg.Judge.APIKey = key
		}
	}
	if tgToken := os.Getenv("TELEGRAM_BOT_TOKEN"); tgToken != "" {
		cfg.Telegram.Token = tgToken
	}

	return cfg, nil
}

// Save writes the config atomically.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// ListValues returns the config as a flat dot-keyed map, masking secrets
// when mask is set.
func ListValues(cfg *Config, mask bool) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var nested map[string]any
	if err := json.Unmarshal(data, &nested); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	flat := Flatten(nested)
	if mask {
		flat = MaskSecrets(flat)
	}
	return flat, nil
}

// GetValue reads a single dot-keyed value from the config file at path.
// Secret values come back masked.
func GetValue(path, key string) (any, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	flat, err := ListValues(cfg, true)
	if err != nil {
		return nil, err
	}
	val, ok := flat[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return val, nil
}

// SetValue sets a single dot-keyed value in the config file at path. Values
// are coerced to bool or number when they parse as such.
func SetValue(path, key, value string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}

	flat, err := ListValues(cfg, false)
	if err != nil {
		return err
	}
	if _, ok := flat[key]; !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	flat[key] = coerce(value)

	data, err := json.Marshal(Unflatten(flat))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var updated Config
	if err := json.Unmarshal(data, &updated); err != nil {
		return fmt.Errorf("apply config value: %w", err)
	}
	return Save(path, &updated)
}

func coerce(value string) any {
	if value == "true" || value == "false" {
		b, _ := strconv.ParseBool(value)
		return b
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return n
	}
	return value
}
