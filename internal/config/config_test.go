package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func tempConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}

func TestSaveReloadRoundTrip(t *testing.T) {
	path := tempConfigPath(t)

	original := &Config{
		DataDir:  "/tmp/hooksmith-test",
		LogLevel: "debug",
	}
	original.Storage.LockTimeoutMS = 2500
	original.Storage.StrictLocking = true
	original.Judge.Model = "grok-4-fast"
	original.Judge.APIKey = "xai-test-key"
	original.Judge.MaxTokens = 50
	original.Judge.Temperature = 0.1
	original.Judge.InputTokenBudget = 1000
	original.Telegram.Token = "bot-token-456"
	original.Telegram.ChatID = 12345

	if err := Save(path, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.DataDir != original.DataDir {
		t.Errorf("DataDir mismatch: %v != %v", loaded.DataDir, original.DataDir)
	}
	if loaded.Storage.LockTimeoutMS != 2500 {
		t.Errorf("LockTimeoutMS mismatch: %v", loaded.Storage.LockTimeoutMS)
	}
	if !loaded.Storage.StrictLocking {
		t.Error("StrictLocking not preserved")
	}
	if loaded.Judge.Model != original.Judge.Model {
		t.Errorf("Judge.Model mismatch: %v != %v", loaded.Judge.Model, original.Judge.Model)
	}
	if loaded.Telegram.ChatID != 12345 {
		t.Errorf("Telegram.ChatID mismatch: %v", loaded.Telegram.ChatID)
	}
}

func TestLoadWritesDefaults(t *testing.T) {
	path := tempConfigPath(t)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults were not written: %v", err)
	}
	if cfg.Judge.Model != "grok-4-fast" {
		t.Errorf("unexpected default judge model: %s", cfg.Judge.Model)
	}
	if cfg.Storage.LockTimeoutMS != 5000 {
		t.Errorf("unexpected default lock timeout: %d", cfg.Storage.LockTimeoutMS)
	}
	if cfg.Storage.StrictLocking {
		t.Error("strict locking should default off")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := tempConfigPath(t)
	t.Setenv("HOOKSMITH_JUDGE_API_KEY", "env-wins")
	t.Setenv("XAI_API_KEY", "xai-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Judge.APIKey != "env-wins" {
		t.Errorf("HOOKSMITH_JUDGE_API_KEY should take precedence, got %q", cfg.Judge.APIKey)
	}
}

func TestSaveAtomicWrite(t *testing.T) {
	path := tempConfigPath(t)

	cfg := &Config{LogLevel: "info"}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not exist after successful save")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Errorf("saved file is not valid JSON: %v", err)
	}
}

func TestListValuesMasksSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Judge.APIKey = "xai-secret-1234"
	cfg.Telegram.Token = "bot-token-5678"

	values, err := ListValues(cfg, true)
	if err != nil {
		t.Fatalf("ListValues failed: %v", err)
	}
	if values["judge.api_key"] != "***1234" {
		t.Errorf("judge.api_key not masked: %v", values["judge.api_key"])
	}
	if values["telegram.token"] != "***5678" {
		t.Errorf("telegram.token not masked: %v", values["telegram.token"])
	}
}

func TestSetValueRoundTrip(t *testing.T) {
	path := tempConfigPath(t)
	if _, err := Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := SetValue(path, "judge.model", "claude-haiku-4.5"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := SetValue(path, "storage.strict_locking", "true"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := SetValue(path, "storage.lock_timeout_ms", "1200"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if cfg.Judge.Model != "claude-haiku-4.5" {
		t.Errorf("judge.model not applied: %s", cfg.Judge.Model)
	}
	if !cfg.Storage.StrictLocking {
		t.Error("storage.strict_locking not applied")
	}
	if cfg.Storage.LockTimeoutMS != 1200 {
		t.Errorf("storage.lock_timeout_ms not applied: %d", cfg.Storage.LockTimeoutMS)
	}
}

func TestSetValueUnknownKey(t *testing.T) {
	path := tempConfigPath(t)
	if _, err := Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := SetValue(path, "no.such.key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestGetValueMasksSecret(t *testing.T) {
	path := tempConfigPath(t)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.Judge.APIKey = "xai-secret-abcd"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	val, err := GetValue(path, "judge.api_key")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if val != "***abcd" {
		t.Errorf("secret not masked: %v", val)
	}
}
