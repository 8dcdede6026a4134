// Package session stores per-conversation state. One entry exists per
// active conversation, created on the first trigger and removed on a
// terminal transition. Access is guarded per key, not globally, so updates
// of different conversations may proceed concurrently while each single
// conversation is processed one update at a time.
package session

import (
	"sync"
	"time"

	"github.com/KobaLuck/recipe-bot/internal/browse"
	"github.com/KobaLuck/recipe-bot/internal/recipe"
)

// Key identifies one conversation.
type Key struct {
	ChatID int64
	UserID int64
}

// Session is the mutable state of one conversation. It must only be touched
// while holding the lock handed out by Store.Acquire.
type Session struct {
	Key  Key
	Step string

	Draft   *recipe.Draft
	Browser *browse.Browser

	// Scratch space for the auth sub-machine.
	AuthEmail     string
	RegisterEmail string
	RegisterUser  string
	RegisterFirst string
	RegisterLast  string

	// SelectedIngredient is the ingredient awaiting its quantity.
	SelectedIngredient recipe.Ingredient

	LastActive time.Time

	mu sync.Mutex
}

// Store holds all active sessions.
type Store struct {
	mu       sync.Mutex
	sessions map[Key]*Session
	ttl      time.Duration
}

// NewStore creates a session store. A non-positive ttl disables idle expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[Key]*Session),
		ttl:      ttl,
	}
}

// Acquire returns the session for key, creating it if absent, with its
// per-key lock held. The caller must call release when done.
func (s *Store) Acquire(key Key) (sess *Session, release func()) {
	s.mu.Lock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = &Session{Key: key}
		s.sessions[key] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	sess.LastActive = time.Now()
	return sess, sess.mu.Unlock
}

// Remove deletes the session for key. Called on terminal transitions; the
// draft and browse cursor are released with it.
func (s *Store) Remove(key Key) {
	s.mu.Lock()
	delete(s.sessions, key)
	s.mu.Unlock()
}

// Len reports the number of active sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Expire removes sessions idle for longer than the store TTL and returns
// how many were dropped.
func (s *Store) Expire(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for key, sess := range s.sessions {
		if now.Sub(sess.LastActive) > s.ttl {
			delete(s.sessions, key)
			dropped++
		}
	}
	return dropped
}

// Janitor periodically expires idle sessions until stop is closed.
func (s *Store) Janitor(interval time.Duration, stop <-chan struct{}) {
	if s.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			s.Expire(now)
		}
	}
}
