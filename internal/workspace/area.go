package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"mdfview/internal/logging"
)

// Area is a locked, session-private scratch directory.
type Area struct {
	id     string
	dir    string
	lock   *flock.Flock
	parent *Workspace
	logger *slog.Logger
	closed bool
}

// ID returns the area identifier.
func (a *Area) ID() string { return a.id }

// Dir returns the area directory.
func (a *Area) Dir() string { return a.dir }

// Workspace returns the workspace the area belongs to.
func (a *Area) Workspace() *Workspace { return a.parent }

// Create makes a new empty artifact whose name ends in suffix.
func (a *Area) Create(suffix string) (*Artifact, error) {
	if a.closed {
		return nil, errors.New("workspace: area closed")
	}
	suffix = strings.TrimSpace(suffix)
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	path := filepath.Join(a.dir, uuid.NewString()+suffix)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("workspace: create artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("workspace: create artifact: %w", err)
	}
	return &Artifact{Path: path, logger: a.logger}, nil
}

// Write stores data in a new artifact whose name ends in suffix.
func (a *Area) Write(suffix string, data []byte) (*Artifact, error) {
	artifact, err := a.Create(suffix)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(artifact.Path, data, 0o600); err != nil {
		artifact.Release()
		return nil, fmt.Errorf("workspace: write artifact: %w", err)
	}
	return artifact, nil
}

// Close removes the area directory and releases its lock. Closing twice is a
// no-op.
func (a *Area) Close(ctx context.Context) error {
	if a == nil || a.closed {
		return nil
	}
	a.closed = true
	logger := logging.WithContext(ctx, a.logger)
	var errs []error
	if err := os.RemoveAll(a.dir); err != nil {
		errs = append(errs, fmt.Errorf("workspace: remove area: %w", err))
	}
	if err := a.lock.Unlock(); err != nil {
		errs = append(errs, fmt.Errorf("workspace: release lock: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		logging.WarnWithContext(logger, "workspace area cleanup incomplete", "workspace_cleanup_failed",
			logging.String("dir", a.dir),
			logging.Error(err),
			logging.String(logging.FieldImpact, "scratch files may remain on disk"))
		return err
	}
	logger.Debug("workspace area released")
	return nil
}

// Artifact is a transient file inside an Area.
type Artifact struct {
	Path   string
	logger *slog.Logger
}

// ReadAll returns the artifact contents.
func (a *Artifact) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("workspace: read artifact: %w", err)
	}
	return data, nil
}

// Release deletes the artifact. A missing file is not an error.
func (a *Artifact) Release() {
	if a == nil {
		return
	}
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.logger.Debug("artifact removal failed", logging.String("path", a.Path), logging.Error(err))
	}
}
