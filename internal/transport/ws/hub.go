package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dkovacs/whisper/internal/presence"
)

const snapshotTimeout = 2 * time.Second

// Hub routes events to live sessions. Liveness comes from the presence
// registry; if a target has no sessions the event is dropped and the
// message store remains the only durable record.
type Hub struct {
	registry *presence.Registry
	lastSeen *presence.LastSeenStore // optional, best-effort
	log      *zap.SugaredLogger
}

func NewHub(registry *presence.Registry, lastSeen *presence.LastSeenStore, log *zap.SugaredLogger) *Hub {
	return &Hub{registry: registry, lastSeen: lastSeen, log: log}
}

// Deliver fans an event out to every live session of the target user.
// Per-session order is preserved by each session's send queue; there is
// no ordering guarantee across sessions.
func (h *Hub) Deliver(target uuid.UUID, eventType string, payload any) {
	sessions := h.registry.SessionsFor(target)
	if len(sessions) == 0 {
		return
	}
	data, ok := h.marshal(eventType, payload)
	if !ok {
		return
	}
	for _, s := range sessions {
		if !s.Send(data) {
			h.log.Warnw("dropped event, session buffer full",
				"event", eventType, "user", target, "session", s.ID())
		}
	}
}

// Join registers a session for a user. The joining session always gets
// the current online-user snapshot; everyone else is notified only when
// the user actually came online (first session).
func (h *Hub) Join(sess presence.Session, userID uuid.UUID) {
	wentOnline := h.registry.Register(userID, sess)
	h.log.Infow("session joined", "user", userID, "session", sess.ID())

	if wentOnline {
		h.snapshotStatus(userID, true)
		h.BroadcastPresence()
		return
	}
	if data, ok := h.marshal(EventTypeOnlineUsers, h.registry.OnlineUsers()); ok {
		sess.Send(data)
	}
}

// Leave removes a session. A never-joined session is a no-op. Closing one
// of several devices does not take the user offline.
func (h *Hub) Leave(sess presence.Session) {
	userID, wentOffline := h.registry.Unregister(sess)
	if userID == uuid.Nil {
		return
	}
	h.log.Infow("session left", "user", userID, "session", sess.ID())

	if wentOffline {
		h.snapshotStatus(userID, false)
		h.BroadcastPresence()
	}
}

// BroadcastPresence pushes the full online-user-ID set to every
// connected session.
func (h *Hub) BroadcastPresence() {
	data, ok := h.marshal(EventTypeOnlineUsers, h.registry.OnlineUsers())
	if !ok {
		return
	}
	for _, s := range h.registry.AllSessions() {
		s.Send(data)
	}
}

func (h *Hub) marshal(eventType string, payload any) ([]byte, bool) {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		h.log.Errorw("marshal event payload", "event", eventType, "err", err)
		return nil, false
	}
	data, err := json.Marshal(evt)
	if err != nil {
		h.log.Errorw("marshal event", "event", eventType, "err", err)
		return nil, false
	}
	return data, true
}

// snapshotStatus writes the last-known status to Redis. Failures are
// logged, never escalated; delivery must not depend on the snapshot.
func (h *Hub) snapshotStatus(userID uuid.UUID, online bool) {
	if h.lastSeen == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		var err error
		if online {
			err = h.lastSeen.SetOnline(ctx, userID)
		} else {
			err = h.lastSeen.SetOffline(ctx, userID)
		}
		if err != nil {
			h.log.Warnw("presence snapshot failed", "user", userID, "err", err)
		}
	}()
}
