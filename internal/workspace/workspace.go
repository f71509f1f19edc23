package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"mdfview/internal/config"
	"mdfview/internal/logging"
)

// ErrBusy is returned when another process holds an area's lock.
var ErrBusy = errors.New("workspace area is in use")

const (
	areasDir     = "sessions"
	lockFileName = ".lock"
)

// Workspace is the root of all scratch areas.
type Workspace struct {
	root    string
	minFree uint64
	logger  *slog.Logger
	statfs  func(path string) (total, free uint64, err error)
}

// New builds a workspace rooted at root. minFreeMiB is the free-space level
// below which EnsureFreeSpace warns; zero disables the warning.
func New(root string, minFreeMiB int, logger *slog.Logger) *Workspace {
	return &Workspace{
		root:    root,
		minFree: uint64(max(minFreeMiB, 0)) * 1024 * 1024,
		logger:  logging.NewComponentLogger(logger, "workspace"),
		statfs:  realStatfs,
	}
}

// FromConfig builds a workspace from the paths and convert sections.
func FromConfig(cfg *config.Config, logger *slog.Logger) *Workspace {
	return New(cfg.Paths.WorkDir, cfg.Convert.MinFreeMiB, logger)
}

// Root returns the workspace directory.
func (w *Workspace) Root() string {
	return w.root
}

// Check creates the root if needed and verifies it is readable, writable and
// searchable by the current user.
func (w *Workspace) Check() error {
	if strings.TrimSpace(w.root) == "" {
		return errors.New("workspace: empty root directory")
	}
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return fmt.Errorf("workspace: create root: %w", err)
	}
	if err := unix.Access(w.root, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("workspace: %s: insufficient permissions: %w", w.root, err)
	}
	return nil
}

// FreeSpace reports the size and available bytes of the filesystem holding
// the workspace.
func (w *Workspace) FreeSpace() (total, free uint64, err error) {
	return w.statfs(w.root)
}

// EnsureFreeSpace logs a warning when the workspace filesystem has less free
// space than configured. It never fails the caller.
func (w *Workspace) EnsureFreeSpace(ctx context.Context) {
	if w.minFree == 0 {
		return
	}
	logger := logging.WithContext(ctx, w.logger)
	total, free, err := w.FreeSpace()
	if err != nil {
		logger.Debug("free space probe failed", logging.String("root", w.root), logging.Error(err))
		return
	}
	if free >= w.minFree {
		return
	}
	logging.WarnWithContext(logger, "workspace filesystem nearly full", "workspace_low_space",
		logging.String("root", w.root),
		logging.String("free", humanize.IBytes(free)),
		logging.String("total", humanize.IBytes(total)),
		logging.String("threshold", humanize.IBytes(w.minFree)),
		logging.String(logging.FieldErrorHint, "free disk space or point paths.work_dir at a larger volume"),
		logging.String(logging.FieldImpact, "exports may fail part way through"))
}

// Acquire creates and locks the area for id. It fails with ErrBusy when
// another process already holds the area.
func (w *Workspace) Acquire(ctx context.Context, id string) (*Area, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, fmt.Errorf("workspace: invalid area id %q", id)
	}
	dir := filepath.Join(w.root, areasDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("workspace: create area: %w", err)
	}
	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("workspace: acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, dir)
	}
	area := &Area{
		id:     id,
		dir:    dir,
		lock:   lock,
		parent: w,
		logger: w.logger.With(logging.String("area", id)),
	}
	logging.WithContext(ctx, area.logger).Debug("workspace area acquired", logging.String("dir", dir))
	return area, nil
}

func realStatfs(path string) (uint64, uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	bsize := uint64(stat.Bsize)
	return stat.Blocks * bsize, stat.Bavail * bsize, nil
}
