// Package session holds parsed statements between the phases of the
// multi-step upload flow. Sessions are kept in memory with a TTL; an
// expired or unknown session surfaces as a session-expired error so the
// client can re-upload.
package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/expenseflow/backend/internal/statement"
)

// Session is the per-upload state carried across the three-phase flow.
type Session struct {
	ID           string
	UserID       string
	FileName     string
	FileType     statement.FileType
	Transactions []statement.Transaction
	Filtered     []statement.Transaction
	CreatedAt    time.Time
}

// Info summarizes the store for monitoring.
type Info struct {
	ActiveSessions   int `json:"active_sessions"`
	OldestAgeMinutes int `json:"oldest_session_age_minutes"`
}

// Store manages upload sessions with background cleanup.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	done     chan struct{}
}

// NewStore creates a session store. Sessions older than ttl are evicted
// lazily on access and by a periodic sweep.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Create stores a new session and returns its generated ID.
func (s *Store) Create(sess *Session) string {
	sess.ID = uuid.New().String()
	sess.CreatedAt = time.Now()

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	log.Printf("[session] created upload session: %s", sess.ID)
	return sess.ID
}

// Get retrieves a session. Expired or unknown sessions return a
// session-expired error and expired entries are removed.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, statement.NewError(statement.ErrSessionExpired,
			"upload session not found or expired, please upload the file again")
	}
	if time.Since(sess.CreatedAt) > s.ttl {
		s.Delete(id)
		return nil, statement.NewError(statement.ErrSessionExpired,
			"upload session expired, please upload the file again")
	}
	return sess, nil
}

// Update replaces a session's state and refreshes its TTL.
func (s *Store) Update(id string, sess *Session) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	sess.ID = id
	sess.CreatedAt = time.Now()

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	log.Printf("[session] updated session: %s", id)
	return nil
}

// Delete removes a session, reporting whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	log.Printf("[session] cleaned up session: %s", id)
	return true
}

// Info reports the current session count and the age of the oldest one.
func (s *Store) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := Info{ActiveSessions: len(s.sessions)}
	var oldest time.Time
	for _, sess := range s.sessions {
		if oldest.IsZero() || sess.CreatedAt.Before(oldest) {
			oldest = sess.CreatedAt
		}
	}
	if !oldest.IsZero() {
		info.OldestAgeMinutes = int(time.Since(oldest).Minutes())
	}
	return info
}

// Close signals the background sweeper to exit.
func (s *Store) Close() {
	close(s.done)
}

func (s *Store) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			removed := 0
			for id, sess := range s.sessions {
				if now.Sub(sess.CreatedAt) > s.ttl {
					delete(s.sessions, id)
					removed++
				}
			}
			s.mu.Unlock()
			if removed > 0 {
				log.Printf("[session] cleaned up %d expired session(s)", removed)
			}
		}
	}
}
