package ws

import (
	"github.com/google/uuid"

	"github.com/dkovacs/whisper/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	n.hub.Deliver(msg.ReceiverID, EventTypeReceive, msg)
}

func (n *HubNotifier) NotifyMessagesRead(contactID, readerID uuid.UUID, messageIDs []uuid.UUID) {
	n.hub.Deliver(contactID, EventTypeRead, MessagesReadPayload{
		ReaderID:          readerID,
		UpdatedMessageIDs: messageIDs,
	})
}
