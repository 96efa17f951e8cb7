// Package session tracks per-conversation invoice edit state: which
// invoice a chat currently owns, which field is being edited, and the
// legal transitions between confirmation and field-edit states.
package session

import (
	"sync"

	"github.com/akhalil/fatoora-tracker/internal/invoice"
)

// State identifies where a session is in the edit workflow.
type State string

const (
	// StateAwaitingConfirmation waits for the user to save, edit, or cancel.
	StateAwaitingConfirmation State = "awaiting_confirmation"

	// StateAwaitingDuplicate waits for the user to proceed or cancel after
	// a duplicate invoice was detected.
	StateAwaitingDuplicate State = "awaiting_duplicate_confirmation"
)

// Session is the per-conversation record of the owned invoice and the
// current edit state, alive from extraction until save or cancel. Exactly
// one session owns an invoice at a time.
type Session struct {
	ChatID      int64
	State       State
	Invoice     *invoice.Invoice
	ItemIndex   int // index of the item being edited, -1 when none
	IsDuplicate bool
}

// Store is session-keyed storage. It is an injected dependency of the
// state machine, not a singleton, so tests can substitute their own.
type Store interface {
	Get(chatID int64) (*Session, bool)
	Put(sess *Session)
	Clear(chatID int64)
}

// MemoryStore implements Store with an in-process map. The mutex guards
// the map across conversations; within one conversation events arrive one
// at a time, so session contents need no further locking.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]*Session)}
}

// Get returns the session for a chat, if one exists.
func (s *MemoryStore) Get(chatID int64) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[chatID]
	return sess, ok
}

// Put stores a session, replacing any existing one for the same chat.
func (s *MemoryStore) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ChatID] = sess
}

// Clear discards a chat's session.
func (s *MemoryStore) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}
