package presence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LastSeenStore keeps a best-effort last-known presence snapshot in Redis.
// It is written on online/offline transitions only and is never consulted
// for routing; the in-memory Registry stays authoritative.
type LastSeenStore struct {
	client *redis.Client
	prefix string
}

type lastSeen struct {
	Status   string `json:"status"`
	LastSeen int64  `json:"lastSeen"`
}

func NewLastSeenStore(client *redis.Client, prefix string) *LastSeenStore {
	return &LastSeenStore{client: client, prefix: prefix}
}

func (s *LastSeenStore) key(userID uuid.UUID) string {
	return s.prefix + ":presence:" + userID.String()
}

func (s *LastSeenStore) SetOnline(ctx context.Context, userID uuid.UUID) error {
	return s.set(ctx, userID, "online")
}

func (s *LastSeenStore) SetOffline(ctx context.Context, userID uuid.UUID) error {
	return s.set(ctx, userID, "offline")
}

func (s *LastSeenStore) set(ctx context.Context, userID uuid.UUID, status string) error {
	b, err := json.Marshal(lastSeen{Status: status, LastSeen: time.Now().Unix()})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(userID), b, 0).Err()
}

// Get returns the stored snapshot, or ("offline", zero time) when absent.
func (s *LastSeenStore) Get(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	b, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return "offline", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, err
	}
	var ls lastSeen
	if err := json.Unmarshal(b, &ls); err != nil {
		return "", time.Time{}, err
	}
	return ls.Status, time.Unix(ls.LastSeen, 0), nil
}
