package session

import (
	"sync"

	"github.com/avolkov/canvas-notify/internal/models"
)

// maxHistoryTurns bounds the conversation history kept per chat; the
// oldest turns are evicted once the bound is exceeded.
const maxHistoryTurns = 6

type state struct {
	assignments []models.AssignmentRecord
	history     []models.ConversationTurn
}

// Store owns all per-chat session state: the index of the most recently
// listed assignments and a bounded conversation history. Indices handed to
// callers are 1-based and always match the display order of the last report
// sent to that chat.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*state
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*state)}
}

// SetAssignments replaces the chat's assignment index wholesale with the
// given report order.
func (s *Store) SetAssignments(chatID int64, records []models.AssignmentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(chatID).assignments = append([]models.AssignmentRecord(nil), records...)
}

// Assignment resolves a 1-based index against the chat's current list.
// count reports how many assignments the list holds regardless of whether
// the lookup succeeded.
func (s *Store) Assignment(chatID int64, index int) (rec models.AssignmentRecord, count int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.sessions[chatID]
	if !exists {
		return models.AssignmentRecord{}, 0, false
	}
	count = len(st.assignments)
	if index < 1 || index > count {
		return models.AssignmentRecord{}, count, false
	}
	return st.assignments[index-1], count, true
}

// Assignments returns the chat's current list in display order.
func (s *Store) Assignments(chatID int64) []models.AssignmentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.sessions[chatID]
	if !exists {
		return nil
	}
	return append([]models.AssignmentRecord(nil), st.assignments...)
}

// AppendTurn records one conversation turn, evicting the oldest entries
// beyond the history bound.
func (s *Store) AppendTurn(chatID int64, role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.session(chatID)
	st.history = append(st.history, models.ConversationTurn{Role: role, Text: text})
	if len(st.history) > maxHistoryTurns {
		st.history = st.history[len(st.history)-maxHistoryTurns:]
	}
}

// History returns the chat's recent conversation turns, oldest first.
func (s *Store) History(chatID int64) []models.ConversationTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.sessions[chatID]
	if !exists {
		return nil
	}
	return append([]models.ConversationTurn(nil), st.history...)
}

// Clear drops all state for the chat. Used by /start.
func (s *Store) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

// session returns the chat's state, creating it if needed. Callers must
// hold the write lock.
func (s *Store) session(chatID int64) *state {
	st, exists := s.sessions[chatID]
	if !exists {
		st = &state{}
		s.sessions[chatID] = st
	}
	return st
}
