// internal/store/store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const (
	// DefaultLockTimeout bounds how long a caller waits for the advisory
	// lock before the lenient fallback kicks in.
	DefaultLockTimeout = 5 * time.Second

	lockPollInterval = 100 * time.Millisecond
)

// File is a JSON document shared between uncoordinated processes. Every
// operation is an independent lock-read-modify-write cycle: an exclusive
// advisory lock is held on a sibling .lock file (the document itself is
// replaced by rename, so its inode is not a stable lock target), and writes
// land via temp file + fsync + atomic rename so readers never observe a torn
// document.
type File struct {
	path    string
	timeout time.Duration
	strict  bool
	mu      sync.Mutex
}

// Option configures a File.
type Option func(*File)

// WithTimeout overrides the lock acquisition timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *File) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithStrict makes lock acquisition timeouts hard errors instead of
// degrading to an unlocked operation.
func WithStrict(strict bool) Option {
	return func(f *File) { f.strict = strict }
}

// New creates a File for the document at path.
func New(path string, opts ...Option) *File {
	f := &File{path: path, timeout: DefaultLockTimeout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the document path.
func (f *File) Path() string {
	return f.path
}

// acquire takes the advisory lock, polling until success or timeout. In
// lenient mode a timeout degrades to proceeding unlocked; in strict mode it
// is an error. The returned release func is always safe to call.
func (f *File) acquire() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	fl := flock.New(f.path + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, lockPollInterval)
	if err != nil || !locked {
		if f.strict {
			return nil, fmt.Errorf("acquire lock for %s: %w", f.path, err)
		}
		slog.Warn("lock acquisition timed out, proceeding unlocked", "path", f.path)
		return func() {}, nil
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			slog.Warn("release lock", "path", f.path, "error", err)
		}
	}, nil
}

// Read decodes the document into v under the lock. A missing, unreadable, or
// corrupt document leaves v untouched so the caller's pre-populated default
// stands; only a strict-mode lock timeout is reported as an error.
func (f *File) Read(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	release, err := f.acquire()
	if err != nil {
		return err
	}
	defer release()

	f.readLocked(v)
	return nil
}

func (f *File) readLocked(v any) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("read document", "path", f.path, "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("corrupt document, using defaults", "path", f.path, "error", err)
	}
}

// Write persists v as the full document under the lock.
func (f *File) Write(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	release, err := f.acquire()
	if err != nil {
		return err
	}
	defer release()

	return f.writeLocked(v)
}

func (f *File) writeLocked(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')

	// The uuid suffix keeps concurrent writer processes off each other's
	// temp files; the rename is what makes the update atomic.
	tmp := fmt.Sprintf("%s.tmp.%s", f.path, uuid.NewString()[:8])
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp document: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp document: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp document: %w", err)
	}
	return nil
}

// Update runs one read-modify-write cycle under a single lock hold: the
// current document is decoded into v, mutate adjusts it in place, and the
// result is written back. Returning an error from mutate aborts the write.
func (f *File) Update(v any, mutate func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	release, err := f.acquire()
	if err != nil {
		return err
	}
	defer release()

	f.readLocked(v)
	if err := mutate(); err != nil {
		return err
	}
	return f.writeLocked(v)
}
