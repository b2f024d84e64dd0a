package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	storeTimeout = 5 * time.Second
	sendBufSize  = 256
)

// ReadMarker reconciles stored read state; implemented by the message
// service.
type ReadMarker interface {
	MarkRead(ctx context.Context, readerID, contactID uuid.UUID) ([]uuid.UUID, error)
}

// Client is a single WebSocket session. It connects anonymous and binds
// to a user only on an explicit join event; a session that never joined
// leaves no trace in the registry.
type Client struct {
	hub    *Hub
	marker ReadMarker
	conn   *websocket.Conn
	log    *zap.SugaredLogger

	id     string
	userID uuid.UUID // uuid.Nil until joined

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, marker ReadMarker, conn *websocket.Conn, log *zap.SugaredLogger) *Client {
	return &Client{
		hub:    hub,
		marker: marker,
		conn:   conn,
		log:    log,
		id:     uuid.NewString(),
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

// ID implements presence.Session.
func (c *Client) ID() string { return c.id }

// Send implements presence.Session. Never blocks; reports a dropped
// payload when the buffer is full.
func (c *Client) Send(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// ReadPump reads events until the transport closes, then unconditionally
// releases this session's registry membership.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Leave(c)
		close(c.done)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		if err := wsjson.Read(context.Background(), c.conn, &event); err != nil {
			if websocket.CloseStatus(err) == -1 {
				c.log.Debugw("ws read", "session", c.id, "err", err)
			}
			return
		}
		c.handleEvent(&event)
	}
}

// WritePump drains the send queue to the socket, preserving send order
// for this session.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes one inbound event. A failing store call degrades to
// a no-op for that event; the connection stays up.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeJoin:
		var p JoinPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.UserID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "join requires a userId")
			return
		}
		// A session binds to exactly one user for its lifetime. A second
		// join would leave registry state behind for the first identity.
		if c.userID != uuid.Nil {
			c.sendError("ALREADY_JOINED", "session is already bound to a user")
			return
		}
		c.userID = p.UserID
		c.hub.Join(c, p.UserID)

	case EventTypeSend:
		var p RelayPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ReceiverID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "sendMessage requires senderId and receiverId")
			return
		}
		// Relay only; the durable path is the HTTP send endpoint.
		c.hub.Deliver(p.ReceiverID, EventTypeReceive, p)

	case EventTypeMarkRead:
		// The reader is always this session's joined identity, never a
		// payload field; a socket cannot mark reads for someone else.
		if c.userID == uuid.Nil {
			c.sendError("NOT_JOINED", "join before marking messages read")
			return
		}
		var p MarkReadPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ContactID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "markMessagesRead requires a contactId")
			return
		}
		c.markRead(c.userID, p.ContactID)

	case EventTypePing:
		c.sendEvent(EventTypePong, nil)

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

// markRead flips stored read state, notifies the original sender's
// sessions, and echoes the result to this session. An empty affected set
// still produces both notifications.
func (c *Client) markRead(readerID, contactID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	ids, err := c.marker.MarkRead(ctx, readerID, contactID)
	if err != nil {
		c.log.Errorw("mark read", "session", c.id, "reader", readerID, "err", err)
		return
	}
	c.sendEvent(EventTypeReadLocal, MarkedLocalPayload{UpdatedMessageIDs: ids})
}

func (c *Client) sendEvent(eventType string, payload any) {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	c.Send(data)
}

func (c *Client) sendError(code, message string) {
	c.sendEvent(EventTypeError, ErrorPayload{Code: code, Message: message})
}
