// Where: internal/infra/fileops/scope.go
// What: Track files placed in a project directory for the duration of one run.
// Why: Generated and copied files must not outlive the wrapper, whatever the child's outcome.
package fileops

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/multierr"
)

const backupSuffix = ".em-commons.bak"

type scopeEntry struct {
	path   string
	backup string
}

// Scope removes every tracked path on Release, newest first. A file that
// existed before CopyIn replaced it is restored instead of lost.
type Scope struct {
	mu       sync.Mutex
	entries  []scopeEntry
	released bool
}

func NewScope() *Scope {
	return &Scope{}
}

// Track registers path for removal. The file does not need to exist yet.
func (s *Scope) Track(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, scopeEntry{path: path})
}

// CopyIn copies src to dst and tracks dst. An existing regular file at dst
// is moved aside and put back on Release.
func (s *Scope) CopyIn(src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := scopeEntry{path: dst}
	if FileExists(dst) {
		entry.backup = dst + backupSuffix
		if err := os.Rename(dst, entry.backup); err != nil {
			return fmt.Errorf("back up %s: %w", dst, err)
		}
	}
	if err := CopyFile(src, dst); err != nil {
		if entry.backup != "" {
			_ = removePathIfExists(dst)
			_ = os.Rename(entry.backup, dst)
		}
		return fmt.Errorf("copy %s: %w", src, err)
	}
	s.entries = append(s.entries, entry)
	return nil
}

// Paths returns the tracked paths in registration order.
func (s *Scope) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		paths = append(paths, e.path)
	}
	return paths
}

// Release removes tracked paths in reverse order and restores backups.
// Every entry is attempted; failures are combined. Calling it again is a no-op.
func (s *Scope) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	s.released = true

	var errs error
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if err := removePathIfExists(e.path); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("remove %s: %w", e.path, err))
			continue
		}
		if e.backup != "" {
			if err := os.Rename(e.backup, e.path); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("restore %s: %w", e.path, err))
			}
		}
	}
	s.entries = nil
	return errs
}
