// internal/session/settings_test.go
package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user/hooksmith/internal/types"
)

func TestLoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	s := NewSettingsStore(dir)

	settings, err := s.Load("sess-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.SessionID != "sess-1" {
		t.Errorf("session id mismatch: %q", settings.SessionID)
	}
	if got := settings.Metadata[types.MetaApprovalMode]; got != string(types.ModeAI) {
		t.Errorf("default approval mode should be ai, got %v", got)
	}
	for _, name := range types.HookNames {
		if !settings.HooksEnabled[name] {
			t.Errorf("hook %s should default to enabled", name)
		}
	}
	if settings.CreatedAt == "" {
		t.Error("created_at should be stamped")
	}

	// The defaults must have been persisted.
	if _, err := os.Stat(filepath.Join(dir, "session-settings", "sess-1.json")); err != nil {
		t.Errorf("settings file was not created: %v", err)
	}
}

func TestLoadEmptySessionID(t *testing.T) {
	dir := t.TempDir()
	s := NewSettingsStore(dir)

	settings, err := s.Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.SessionID != "unknown" {
		t.Errorf("expected placeholder id, got %q", settings.SessionID)
	}

	// Nothing should be written for an anonymous load.
	entries, _ := os.ReadDir(filepath.Join(dir, "session-settings"))
	if len(entries) != 0 {
		t.Errorf("anonymous load persisted %d file(s)", len(entries))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewSettingsStore(t.TempDir())

	settings := Defaults("sess-1")
	settings.HooksEnabled[types.HookStop] = false
	settings.Metadata["custom"] = "value"
	if err := s.Save("sess-1", settings); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load("sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.HooksEnabled[types.HookStop] {
		t.Error("disabled hook did not survive round trip")
	}
	if got.Metadata["custom"] != "value" {
		t.Errorf("metadata did not survive round trip: %v", got.Metadata)
	}
	if got.UpdatedAt == "" {
		t.Error("updated_at should be stamped by Save")
	}
}

func TestLoadCorruptFileYieldsDefaults(t *testing.T) {
	dir := t.TempDir()
	s := NewSettingsStore(dir)

	path := filepath.Join(dir, "session-settings", "sess-1.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	settings, err := s.Load("sess-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := settings.Metadata[types.MetaApprovalMode]; got != string(types.ModeAI) {
		t.Errorf("expected default mode for corrupt file, got %v", got)
	}

	// The corrupt file is kept for inspection, not overwritten.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "not json at all" {
		t.Errorf("corrupt file was overwritten: %q", data)
	}
}

func TestSetMetadataRejectsNonScalar(t *testing.T) {
	s := NewSettingsStore(t.TempDir())

	if err := s.SetMetadata("sess-1", "bad", []string{"x"}); err == nil {
		t.Error("expected error for slice metadata value")
	}
	if err := s.SetMetadata("sess-1", "bad", map[string]int{"x": 1}); err == nil {
		t.Error("expected error for map metadata value")
	}
	if err := s.SetMetadata("sess-1", "ok", "fine"); err != nil {
		t.Errorf("string metadata should be accepted: %v", err)
	}
	if err := s.SetMetadata("sess-1", "flag", true); err != nil {
		t.Errorf("bool metadata should be accepted: %v", err)
	}
}

func TestGetMetadataDefault(t *testing.T) {
	s := NewSettingsStore(t.TempDir())

	if got := s.GetMetadata("sess-1", "missing", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %v", got)
	}

	if err := s.SetMetadata("sess-1", "present", "yes"); err != nil {
		t.Fatal(err)
	}
	if got := s.GetMetadata("sess-1", "present", "fallback"); got != "yes" {
		t.Errorf("expected stored value, got %v", got)
	}
}

func TestApprovalMode(t *testing.T) {
	s := NewSettingsStore(t.TempDir())

	if mode := s.ApprovalMode("fresh"); mode != types.ModeAI {
		t.Errorf("fresh session should default to ai, got %s", mode)
	}

	if err := s.SetMetadata("fresh", types.MetaApprovalMode, string(types.ModeStrict)); err != nil {
		t.Fatal(err)
	}
	if mode := s.ApprovalMode("fresh"); mode != types.ModeStrict {
		t.Errorf("expected strict, got %s", mode)
	}
}

func TestHookEnabledFailOpen(t *testing.T) {
	s := NewSettingsStore(t.TempDir())

	if !s.IsHookEnabled("sess-1", "some-future-hook") {
		t.Error("unknown hook names should be enabled")
	}

	if err := s.SetHookEnabled("sess-1", types.HookNotification, false); err != nil {
		t.Fatal(err)
	}
	if s.IsHookEnabled("sess-1", types.HookNotification) {
		t.Error("disabled hook should report disabled")
	}
	if !s.IsHookEnabled("sess-1", types.HookStop) {
		t.Error("unrelated hook should stay enabled")
	}
}

func TestClearResetsToDefaults(t *testing.T) {
	s := NewSettingsStore(t.TempDir())

	if err := s.SetMetadata("sess-1", types.MetaApprovalMode, string(types.ModeAuto)); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear("sess-1"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if mode := s.ApprovalMode("sess-1"); mode != types.ModeAI {
		t.Errorf("expected default mode after Clear, got %s", mode)
	}
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	s := NewSettingsStore(dir)

	if _, err := s.Load("sess-1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("sess-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "session-settings", "sess-1.json")); !os.IsNotExist(err) {
		t.Error("settings file should be gone after Delete")
	}

	// Deleting again is a no-op.
	if err := s.Delete("sess-1"); err != nil {
		t.Errorf("repeat Delete should not error: %v", err)
	}
}

func TestListAll(t *testing.T) {
	dir := t.TempDir()
	s := NewSettingsStore(dir)

	older := Defaults("older")
	older.CreatedAt = "2026-01-01T00:00:00Z"
	if err := s.Save("older", older); err != nil {
		t.Fatal(err)
	}
	newer := Defaults("newer")
	newer.CreatedAt = "2026-06-01T00:00:00Z"
	if err := s.Save("newer", newer); err != nil {
		t.Fatal(err)
	}

	// A garbage file must be skipped, not fatal.
	garbage := filepath.Join(dir, "session-settings", "broken.json")
	if err := os.WriteFile(garbage, []byte("%%%"), 0o644); err != nil {
		t.Fatal(err)
	}

	all, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 settings, got %d", len(all))
	}
	if all[0].SessionID != "newer" || all[1].SessionID != "older" {
		t.Errorf("expected newest-first ordering, got %s then %s", all[0].SessionID, all[1].SessionID)
	}
}

func TestListAllMissingDir(t *testing.T) {
	s := NewSettingsStore(filepath.Join(t.TempDir(), "never-created"))
	all, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if all != nil {
		t.Errorf("expected nil for missing dir, got %v", all)
	}
}
