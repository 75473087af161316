package messenger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lawrencezcl/GeminiLendX/internal/domain/ccm"

	"github.com/redis/go-redis/v9"
)

// how long an in-flight send holds its provisional lock before a retry may
// re-claim the key
const provisionalTTL = 60 * time.Second

type sendRecord struct {
	InProgress bool         `json:"in_progress"`
	Receipt    *ccm.Receipt `json:"receipt,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// IdempotencyStore keeps one record per (loan id, action) key in Redis so a
// re-sent message after a timeout replays the stored receipt instead of
// executing the remote effect twice.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *IdempotencyStore) key(k string) string { return "ccm:send:" + k }

// Begin claims the key for a new send. If the key is already held it returns
// the existing record so the caller can replay a completed receipt or back
// off a still-in-progress send.
func (s *IdempotencyStore) Begin(ctx context.Context, key string) (claimed bool, existing *sendRecord, err error) {
	payload, _ := json.Marshal(sendRecord{InProgress: true, CreatedAt: time.Now().UTC()})
	ok, err := s.rdb.SetNX(ctx, s.key(key), payload, provisionalTTL).Result()
	if err != nil {
		return false, nil, err
	}
	if ok {
		return true, nil, nil
	}
	raw, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		return false, nil, err
	}
	var rec sendRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return false, nil, err
	}
	return false, &rec, nil
}

// Complete stores the confirmed receipt for replay by later re-sends.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, receipt *ccm.Receipt) error {
	payload, _ := json.Marshal(sendRecord{InProgress: false, Receipt: receipt, CreatedAt: time.Now().UTC()})
	return s.rdb.Set(ctx, s.key(key), payload, s.ttl).Err()
}

// Release frees the key after a definitive remote failure so the caller can
// legitimately re-send.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}
