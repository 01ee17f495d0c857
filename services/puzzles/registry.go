package puzzles

import (
	"sync"

	"github.com/google/uuid"
)

const registryShards = 16

// Registry maps each user to at most one active session. It is the
// enforcement point for the one-puzzle-at-a-time rule. Locking is sharded by
// user ID so concurrent events for different users never share a lock.
type Registry struct {
	shards [registryShards]registryShard
}

type registryShard struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].sessions = make(map[int64]*Session)
	}
	return r
}

func (r *Registry) shard(userID int64) *registryShard {
	return &r.shards[uint64(userID)%registryShards]
}

// Get returns a copy of the user's active session, if any. The copy keeps
// callers from mutating shared state outside the registry lock.
func (r *Registry) Get(userID int64) (Session, bool) {
	s := r.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Create registers a new session for the user. An existing session in the
// Solving state is never replaced and yields ErrAlreadyActive; a stale
// selection session (the user backed out before a puzzle was generated) is
// replaced in place. Lookup and creation are atomic, so a rapid double-tap
// from one user produces exactly one session.
func (r *Registry) Create(userID int64, category Category) (Session, error) {
	s := r.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[userID]; ok && existing.State == StateSolving {
		return Session{}, ErrAlreadyActive
	}
	sess := newSession(userID, category)
	s.sessions[userID] = sess
	return *sess, nil
}

// Mutate applies fn to the user's session under the registry lock, but only
// if the registry still holds the session identified by sessionID. It returns
// ErrNotInSession when the session is gone or has been replaced — this is how
// results of long generator calls that raced a cancellation get dropped.
func (r *Registry) Mutate(userID int64, sessionID uuid.UUID, fn func(*Session) error) (Session, error) {
	s := r.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || sess.ID != sessionID {
		return Session{}, ErrNotInSession
	}
	if err := fn(sess); err != nil {
		return *sess, err
	}
	return *sess, nil
}

// Remove deletes the user's session if it still matches sessionID.
// Removing an absent or replaced session is a no-op; the return value
// reports whether a session was actually removed.
func (r *Registry) Remove(userID int64, sessionID uuid.UUID) bool {
	s := r.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || sess.ID != sessionID {
		return false
	}
	delete(s.sessions, userID)
	return true
}

// Drop deletes whatever session the user holds, regardless of identity.
func (r *Registry) Drop(userID int64) {
	s := r.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
