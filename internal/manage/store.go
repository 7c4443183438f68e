// internal/manage/store.go
package manage

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type session struct {
	flow     *Flow
	lastSeen time.Time
}

// Store keeps one Flow per manage session, keyed by an opaque uuid carried
// in a cookie. The access code itself never leaves the Flow; the cookie
// holds nothing a later session could reuse. Idle sessions are evicted.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
	}

	// Sweep idle sessions every minute
	go s.cleanupSessions()

	return s
}

// Create starts a fresh flow in Lookup and returns its session id.
func (s *Store) Create(api AdService) (string, *Flow) {
	id := uuid.New().String()
	flow := NewFlow(api)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &session{flow: flow, lastSeen: time.Now()}
	return id, flow
}

// Get returns the live flow for a session id, refreshing its idle timer.
func (s *Store) Get(id string) (*Flow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[id]
	if !exists {
		return nil, false
	}
	sess.lastSeen = time.Now()
	return sess.flow, true
}

// Remove closes and forgets a session, discarding the draft and the access
// code held in memory.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	sess, exists := s.sessions[id]
	if exists {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if exists {
		sess.flow.Close()
	}
}

func (s *Store) cleanupSessions() {
	for {
		time.Sleep(time.Minute)

		var expired []*session
		s.mu.Lock()
		for id, sess := range s.sessions {
			if time.Since(sess.lastSeen) > s.ttl {
				expired = append(expired, sess)
				delete(s.sessions, id)
			}
		}
		s.mu.Unlock()

		for _, sess := range expired {
			sess.flow.Close()
		}
		if len(expired) > 0 {
			logrus.WithField("count", len(expired)).Debug("Evicted idle manage sessions")
		}
	}
}
