// Package session keeps per-user dialogue state between updates.
package session

import (
	"contestbot/internal/domain"
)

// Store holds dialogue sessions keyed by user id.
//
// Revisions give compare-and-swap semantics: Put and Swap assign the stored
// session a new revision, and Swap succeeds only when the stored revision
// still equals the expected one. A handler that made a slow external call
// can therefore detect that the user cancelled or restarted meanwhile.
type Store interface {
	// Get returns a copy of the session or nil if the user has none
	Get(userID int64) (*domain.Session, error)
	// Put stores the session unconditionally
	Put(userID int64, s *domain.Session) error
	// Swap stores next only if the current revision equals expected
	Swap(userID int64, expected int64, next *domain.Session) (bool, error)
	// Clear removes the session
	Clear(userID int64) error
	// Purge removes sessions idle for longer than the store TTL
	Purge() (int, error)
}
