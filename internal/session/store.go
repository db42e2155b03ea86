package session

import (
	"sync"

	"github.com/google/uuid"
)

// Store keeps one Session per browser for the web UI.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// New creates a session under a fresh random id.
func (st *Store) New() (string, *Session) {
	id := uuid.NewString()
	s := New()
	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()
	return id, s
}

func (st *Store) Get(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
