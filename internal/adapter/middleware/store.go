package middleware

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:embed lua/reserve.lua
var luaReserve string

// pendingTTL bounds how long a crashed request can hold its key.
const pendingTTL = 60 * time.Second

// record is what the store keeps per request key: a pending marker while the
// handler runs, then the response it produced.
type record struct {
	Pending  bool      `json:"pending"`
	Status   int       `json:"status,omitempty"`
	Body     []byte    `json:"body,omitempty"`
	BodyHash string    `json:"body_hash"`
	StoredAt time.Time `json:"stored_at"`
}

// Store keeps idempotency records in Redis. Keys are scoped by route and actor
// so the same client request id can never replay another member's response.
type Store struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	scrRes *redis.Script
}

// NewStore keeps completed responses for ttl.
func NewStore(rdb redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl, scrRes: redis.NewScript(luaReserve)}
}

func storeKey(method, route, actorID, requestID string) string {
	return "idemp:coopfin:" + method + ":" + route + ":{" + actorID + "}:" + requestID
}

// reserve claims key for a new request. When the key is already taken it
// returns the existing record instead.
func (s *Store) reserve(ctx context.Context, key, bodyHash string) (*record, error) {
	payload, err := json.Marshal(record{Pending: true, BodyHash: bodyHash, StoredAt: time.Now().UTC()})
	if err != nil {
		return nil, err
	}
	raw, err := s.scrRes.Run(ctx, s.rdb, []string{key}, payload, pendingTTL.Milliseconds()).Text()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cur record
	if err := json.Unmarshal([]byte(raw), &cur); err != nil {
		return nil, err
	}
	return &cur, nil
}

func (s *Store) complete(ctx context.Context, key string, rec record) error {
	rec.Pending = false
	rec.StoredAt = time.Now().UTC()
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

// release forgets key so the client may retry with the same request id.
func (s *Store) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
