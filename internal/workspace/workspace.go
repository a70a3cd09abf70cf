package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// ErrExists is returned when an intermediate path is already taken.
var ErrExists = errors.New("intermediate file already exists")

// Guard owns the intermediate files generated inside a directory during a
// render run. Every file it creates is removed by the release func returned
// from Create, or at the latest by Cleanup.
type Guard struct {
	dir     string
	mu      sync.Mutex
	claimed map[string]struct{}
}

// NewGuard creates a guard for intermediate files placed in dir.
func NewGuard(dir string) *Guard {
	return &Guard{
		dir:     dir,
		claimed: make(map[string]struct{}),
	}
}

// Dir returns the directory the guard manages.
func (g *Guard) Dir() string {
	return g.dir
}

// Create exclusively creates dir/name and returns the open file together with
// a release func. The release func closes the file and deletes it; it is safe
// to call more than once. An existing file is never touched and yields ErrExists.
func (g *Guard) Create(name string) (*os.File, func() error, error) {
	if name == "" || filepath.Base(name) != name {
		return nil, nil, fmt.Errorf("invalid intermediate name %q", name)
	}
	path := filepath.Join(g.dir, name)

	// #nosec G304 -- name is a bare file name inside the guarded directory.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrExists, path)
		}
		return nil, nil, fmt.Errorf("create intermediate file: %w", err)
	}

	g.mu.Lock()
	g.claimed[path] = struct{}{}
	g.mu.Unlock()
	slog.Debug("Created intermediate file", logfields.Path(path))

	var once sync.Once
	var releaseErr error
	release := func() error {
		once.Do(func() {
			_ = f.Close()
			releaseErr = g.remove(path)
		})
		return releaseErr
	}
	return f, release, nil
}

// Owns reports whether path is an intermediate file currently held by the guard.
func (g *Guard) Owns(path string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.claimed[filepath.Clean(path)]
	return ok
}

// Claimed returns the currently held intermediate paths, sorted.
func (g *Guard) Claimed() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	paths := make([]string, 0, len(g.claimed))
	for p := range g.claimed {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Cleanup removes every intermediate file still held.
func (g *Guard) Cleanup() error {
	var errs []error
	for _, p := range g.Claimed() {
		if err := g.remove(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *Guard) remove(path string) error {
	g.mu.Lock()
	delete(g.claimed, path)
	g.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove intermediate file: %w", err)
	}
	slog.Debug("Removed intermediate file", logfields.Path(path))
	return nil
}
