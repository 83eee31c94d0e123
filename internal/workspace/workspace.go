package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"trackalign/internal/config"
	"trackalign/internal/media"
)

const lockName = ".trackalign.lock"

// ErrLocked reports that another run holds the work directory.
var ErrLocked = errors.New("work directory is in use by another trackalign run")

// Workspace resolves run paths from the configuration.
type Workspace struct {
	Root      string
	CacheDir  string
	OutputDir string
	LogDir    string

	lock *flock.Flock
}

// New returns the workspace described by cfg.
func New(cfg *config.Config) *Workspace {
	return &Workspace{
		Root:      cfg.Paths.WorkDir,
		CacheDir:  cfg.Paths.CacheDir,
		OutputDir: cfg.Paths.OutputDir,
		LogDir:    cfg.Paths.LogDir,
		lock:      flock.New(filepath.Join(cfg.Paths.WorkDir, lockName)),
	}
}

// Lock acquires the work directory lock without blocking.
func (w *Workspace) Lock() error {
	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (%s)", ErrLocked, w.lock.Path())
	}
	return nil
}

// Unlock releases the work directory lock.
func (w *Workspace) Unlock() error {
	if !w.lock.Locked() {
		return nil
	}
	return w.lock.Unlock()
}

// SegmentCachePath returns the segment cache file for f. The name is derived
// from the file identity, so a replaced file starts with an empty cache.
func (w *Workspace) SegmentCachePath(f *media.InputFile) string {
	sum := sha256.Sum256([]byte(f.Identity()))
	base := strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
	return filepath.Join(w.CacheDir, "segments", fmt.Sprintf("%s.%s.json", base, hex.EncodeToString(sum[:8])))
}

// ResultsPath is the results ledger database.
func (w *Workspace) ResultsPath() string {
	return filepath.Join(w.Root, "results.db")
}
