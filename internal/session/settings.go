// internal/session/settings.go
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/hooksmith/internal/store"
	"github.com/user/hooksmith/internal/types"
)

// listParallelism bounds concurrent settings-file parses in ListAll.
const listParallelism = 8

// SettingsStore holds one settings document per session id under
// <dataDir>/session-settings/. Documents are self-healing: a missing or
// corrupt file yields fixed defaults instead of an error.
type SettingsStore struct {
	dir  string
	opts []store.Option
}

// NewSettingsStore creates a SettingsStore rooted at the given data directory.
func NewSettingsStore(dataDir string, opts ...store.Option) *SettingsStore {
	return &SettingsStore{
		dir:  filepath.Join(dataDir, "session-settings"),
		opts: opts,
	}
}

func (s *SettingsStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}

func isoNow() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Defaults returns the fixed default settings for a session: ai approval
// mode, every recognized hook enabled.
func Defaults(sessionID string) *types.Settings {
	hooks := make(map[string]bool, len(types.HookNames))
	for _, name := range types.HookNames {
		hooks[name] = true
	}
	return &types.Settings{
		SessionID:    sessionID,
		CreatedAt:    isoNow(),
		HooksEnabled: hooks,
		Metadata: map[string]any{
			types.MetaApprovalMode: string(types.ModeAI),
		},
	}
}

// Load returns the settings for a session, creating and persisting defaults
// when no document exists. A document that exists but cannot be parsed
// yields fresh defaults without overwriting the file on disk. An empty
// session id yields in-memory defaults only.
func (s *SettingsStore) Load(sessionID string) (*types.Settings, error) {
	if sessionID == "" {
		return Defaults("unknown"), nil
	}

	path := s.path(sessionID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		settings := Defaults(sessionID)
		if err := s.Save(sessionID, settings); err != nil {
			return nil, err
		}
		return settings, nil
	}

	var settings types.Settings
	if err := store.New(path, s.opts...).Read(&settings); err != nil {
		return nil, err
	}
	if settings.SessionID == "" && settings.CreatedAt == "" {
		// Parse failure left the document untouched; hand back defaults
		// but leave the corrupted file alone for postmortems.
		return Defaults(sessionID), nil
	}
	return &settings, nil
}

// Save stamps updated_at and persists the document.
func (s *SettingsStore) Save(sessionID string, settings *types.Settings) error {
	if sessionID == "" {
		return nil
	}
	if settings.SessionID == "" {
		settings.SessionID = sessionID
	}
	settings.UpdatedAt = isoNow()
	return store.New(s.path(sessionID), s.opts...).Write(settings)
}

// GetMetadata returns the metadata value for key, or def when unset.
func (s *SettingsStore) GetMetadata(sessionID, key string, def any) any {
	settings, err := s.Load(sessionID)
	if err != nil || settings.Metadata == nil {
		return def
	}
	if v, ok := settings.Metadata[key]; ok {
		return v
	}
	return def
}

// SetMetadata stores a metadata value. Values are constrained to scalar
// shapes so the settings document stays schema-checkable.
func (s *SettingsStore) SetMetadata(sessionID, key string, value any) error {
	switch value.(type) {
	case string, bool, float64, int:
	default:
		return fmt.Errorf("unsupported metadata value type %T for key %s", value, key)
	}

	settings, err := s.Load(sessionID)
	if err != nil {
		return err
	}
	if settings.Metadata == nil {
		settings.Metadata = make(map[string]any)
	}
	settings.Metadata[key] = value
	return s.Save(sessionID, settings)
}

// ApprovalMode returns the session's approval mode, defaulting to ai.
func (s *SettingsStore) ApprovalMode(sessionID string) types.ApprovalMode {
	v := s.GetMetadata(sessionID, types.MetaApprovalMode, string(types.ModeAI))
	mode, ok := v.(string)
	if !ok || mode == "" {
		return types.ModeAI
	}
	return types.ApprovalMode(mode)
}

// IsHookEnabled reports whether the named hook is enabled for the session.
// Unset names are enabled (fail-open).
func (s *SettingsStore) IsHookEnabled(sessionID, hookName string) bool {
	settings, err := s.Load(sessionID)
	if err != nil {
		return true
	}
	return settings.HookEnabled(hookName)
}

// SetHookEnabled enables or disables the named hook for the session.
func (s *SettingsStore) SetHookEnabled(sessionID, hookName string, enabled bool) error {
	settings, err := s.Load(sessionID)
	if err != nil {
		return err
	}
	if settings.HooksEnabled == nil {
		settings.HooksEnabled = make(map[string]bool)
	}
	settings.HooksEnabled[hookName] = enabled
	return s.Save(sessionID, settings)
}

// Delete removes the session's settings file. Deleting settings that never
// existed is not an error.
func (s *SettingsStore) Delete(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := os.Remove(s.path(sessionID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove settings: %w", err)
	}
	return nil
}

// Clear deletes the session's settings file and recreates defaults.
func (s *SettingsStore) Clear(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := os.Remove(s.path(sessionID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove settings: %w", err)
	}
	return s.Save(sessionID, Defaults(sessionID))
}

// ListAll returns every parseable settings document, newest first. Files
// that fail to parse are skipped, never fatal.
func (s *SettingsStore) ListAll() ([]types.Settings, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read settings dir: %w", err)
	}

	var (
		mu  sync.Mutex
		all []types.Settings
	)
	g := new(errgroup.Group)
	g.SetLimit(listParallelism)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := entry.Name()
		g.Go(func() error {
			var settings types.Settings
			path := filepath.Join(s.dir, name)
			if err := store.New(path, s.opts...).Read(&settings); err != nil {
				return nil
			}
			if settings.SessionID == "" && settings.CreatedAt == "" {
				return nil
			}
			mu.Lock()
			all = append(all, settings)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt > all[j].CreatedAt
	})
	return all, nil
}
