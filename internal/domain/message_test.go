package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

// Message rides inside receiveMessage frames, so its field names must
// follow the camelCase event vocabulary. DeleteFor stays private.
func TestMessageJSONFieldNames(t *testing.T) {
	msg := Message{
		ID:         uuid.New(),
		SenderID:   uuid.New(),
		ReceiverID: uuid.New(),
		Body:       "hello",
		Kind:       KindText,
		DeleteFor:  []uuid.UUID{uuid.New()},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"senderId", "receiverId", "isRead", "isDeleted", "createdAt", "updatedAt"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing field %q in %s", key, data)
		}
	}
	for _, key := range []string{"sender_id", "receiver_id", "delete_for", "deleteFor"} {
		if _, ok := fields[key]; ok {
			t.Errorf("unexpected field %q in %s", key, data)
		}
	}
}
