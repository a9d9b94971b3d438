// Package presence tracks which forum members are currently online. The
// server is the single source of truth: every presence frame carries the
// complete online list, so the snapshot is replaced wholesale and never
// patched. Out-of-order frames are harmless because the last write wins.
package presence

import (
	"slices"
	"sync"
)

// Snapshot is the current online-user list. Safe for concurrent use.
type Snapshot struct {
	mu    sync.RWMutex
	users []string
}

// NewSnapshot starts empty; nobody is online until the server says so.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Replace swaps in a new complete online list. The slice is copied, so the
// caller may keep mutating its own.
func (s *Snapshot) Replace(users []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = slices.Clone(users)
}

// Users returns a copy of the current online list.
func (s *Snapshot) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

// Contains reports whether the given nickname is currently online.
func (s *Snapshot) Contains(nickname string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.users, nickname)
}
