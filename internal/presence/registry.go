package presence

import (
	"sync"

	"github.com/google/uuid"
)

// Session is a live connection handle. Send must not block; it reports
// false when the session's buffer is full and the payload was dropped.
type Session interface {
	ID() string
	Send(data []byte) bool
}

// Registry maps users to their live sessions. It is the sole source of
// truth for liveness; nothing here is persisted. A user with several
// devices stays online until the last session unregisters.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[string]Session
	owners   map[string]uuid.UUID
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]map[string]Session),
		owners:   make(map[string]uuid.UUID),
	}
}

// Register binds a session to a user. Returns true when this is the
// user's first live session (offline -> online transition). A session
// belongs to at most one user; rebinding detaches it from the previous
// owner first, so a later Unregister can never leave a ghost entry.
func (r *Registry) Register(userID uuid.UUID, sess Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, owned := r.owners[sess.ID()]; owned && prev != userID {
		prevSet := r.sessions[prev]
		delete(prevSet, sess.ID())
		if len(prevSet) == 0 {
			delete(r.sessions, prev)
		}
	}

	set, ok := r.sessions[userID]
	if !ok {
		set = make(map[string]Session)
		r.sessions[userID] = set
	}
	set[sess.ID()] = sess
	r.owners[sess.ID()] = userID
	return !ok
}

// Unregister removes a session from whichever user holds it. The second
// return is true when that was the user's last session (online ->
// offline transition). Unknown sessions are a no-op.
func (r *Registry) Unregister(sess Session) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.owners[sess.ID()]
	if !ok {
		return uuid.Nil, false
	}
	delete(r.owners, sess.ID())

	set := r.sessions[userID]
	delete(set, sess.ID())
	if len(set) == 0 {
		delete(r.sessions, userID)
		return userID, true
	}
	return userID, false
}

// SessionsFor returns a snapshot of the user's live sessions, possibly empty.
func (r *Registry) SessionsFor(userID uuid.UUID) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.sessions[userID]
	out := make([]Session, 0, len(set))
	for _, s := range set {
		out = append(out, s)
	}
	return out
}

// AllSessions returns a snapshot of every live session.
func (r *Registry) AllSessions() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Session
	for _, set := range r.sessions {
		for _, s := range set {
			out = append(out, s)
		}
	}
	return out
}

// OnlineUsers returns the IDs of users with at least one live session.
func (r *Registry) OnlineUsers() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]uuid.UUID, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, id)
	}
	return out
}
