// internal/session/registry.go
package session

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/user/hooksmith/internal/store"
	"github.com/user/hooksmith/internal/types"
)

// Registry tracks every known session in one shared sessions.json document.
// Each operation is its own locked read-modify-write cycle against the
// document; there is no cross-call transaction.
type Registry struct {
	file *store.File
}

// NewRegistry creates a Registry rooted at the given data directory.
func NewRegistry(dataDir string, opts ...store.Option) *Registry {
	return &Registry{
		file: store.New(filepath.Join(dataDir, "sessions.json"), opts...),
	}
}

func now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

func stamp(doc *types.SessionsFile) {
	ts := now()
	doc.LastUpdated = &ts
}

// Add upserts a session: any existing record with the same session_id is
// replaced by the new one.
func (r *Registry) Add(sess types.Session) error {
	var doc types.SessionsFile
	return r.file.Update(&doc, func() error {
		kept := doc.Sessions[:0]
		for _, s := range doc.Sessions {
			if s.SessionID != sess.SessionID {
				kept = append(kept, s)
			}
		}
		doc.Sessions = append(kept, sess)
		stamp(&doc)
		return nil
	})
}

// Remove filters the session with the given id out of the registry.
func (r *Registry) Remove(sessionID string) error {
	var doc types.SessionsFile
	return r.file.Update(&doc, func() error {
		kept := doc.Sessions[:0]
		for _, s := range doc.Sessions {
			if s.SessionID != sessionID {
				kept = append(kept, s)
			}
		}
		doc.Sessions = kept
		stamp(&doc)
		return nil
	})
}

// Patch carries partial session fields for Update. Zero-valued fields are
// left alone on the stored record.
type Patch struct {
	Status           types.SessionStatus
	LastActivity     float64
	LastNotification string
}

// Update merges the patch into the matching record. The document is
// persisted (and its last_updated refreshed) even when no record matched,
// mirroring the best-effort contract of the hook scripts.
func (r *Registry) Update(sessionID string, p Patch) error {
	var doc types.SessionsFile
	return r.file.Update(&doc, func() error {
		for i := range doc.Sessions {
			if doc.Sessions[i].SessionID != sessionID {
				continue
			}
			if p.Status != "" {
				doc.Sessions[i].Status = p.Status
			}
			if p.LastActivity != 0 {
				doc.Sessions[i].LastActivity = p.LastActivity
			}
			if p.LastNotification != "" {
				doc.Sessions[i].LastNotification = p.LastNotification
			}
			break
		}
		stamp(&doc)
		return nil
	})
}

// Touch records activity on a session, resetting it to running.
func (r *Registry) Touch(sessionID string) error {
	return r.Update(sessionID, Patch{
		Status:       types.StatusRunning,
		LastActivity: now(),
	})
}

// List returns every tracked session.
func (r *Registry) List() ([]types.Session, error) {
	doc := types.SessionsFile{}
	if err := r.file.Read(&doc); err != nil {
		return nil, err
	}
	return doc.Sessions, nil
}

// Find returns the session with the given id.
func (r *Registry) Find(sessionID string) (*types.Session, error) {
	sessions, err := r.List()
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].SessionID == sessionID {
			return &sessions[i], nil
		}
	}
	return nil, fmt.Errorf("session not found: %s", sessionID)
}

// FindLatestByCwd returns the most recently active session whose recorded
// working directory matches cwd after path normalization.
func (r *Registry) FindLatestByCwd(cwd string) (*types.Session, error) {
	normalized, err := filepath.Abs(filepath.Clean(cwd))
	if err != nil {
		normalized = filepath.Clean(cwd)
	}

	sessions, err := r.List()
	if err != nil {
		return nil, err
	}

	var best *types.Session
	for i := range sessions {
		if sessions[i].Cwd != normalized {
			continue
		}
		if best == nil || sessions[i].LastActivity > best.LastActivity {
			best = &sessions[i]
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no session found for cwd: %s", normalized)
	}
	return best, nil
}
