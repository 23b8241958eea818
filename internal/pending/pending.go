// Package pending holds deep-link parameters that arrived before the result
// screen was ready to consume them.
package pending

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemorySlot keeps one parameter bag per client in process memory.
type MemorySlot struct {
	mu    sync.Mutex
	slots map[string]url.Values
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{slots: make(map[string]url.Values)}
}

// Put replaces whatever is pending for the client. Empty bags clear the slot.
func (s *MemorySlot) Put(_ context.Context, clientID string, params url.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(params) == 0 {
		delete(s.slots, clientID)
		return nil
	}
	s.slots[clientID] = cloneValues(params)
	return nil
}

func (s *MemorySlot) Take(_ context.Context, clientID string) (url.Values, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	params, ok := s.slots[clientID]
	if !ok {
		return nil, false, nil
	}
	delete(s.slots, clientID)
	return params, true, nil
}

// RedisSlot keeps pending bags in Redis so every replica sees the same slot.
type RedisSlot struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSlot(client *redis.Client, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, ttl: ttl}
}

func slotKey(clientID string) string {
	return fmt.Sprintf("pending_payment_signal:%s", clientID)
}

func (s *RedisSlot) Put(ctx context.Context, clientID string, params url.Values) error {
	if len(params) == 0 {
		return s.client.Del(ctx, slotKey(clientID)).Err()
	}
	return s.client.Set(ctx, slotKey(clientID), params.Encode(), s.ttl).Err()
}

// Take reads and deletes in one GETDEL so only one reader ever sees the bag.
func (s *RedisSlot) Take(ctx context.Context, clientID string) (url.Values, bool, error) {
	raw, err := s.client.GetDel(ctx, slotKey(clientID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	params, err := url.ParseQuery(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode pending signal: %w", err)
	}
	if len(params) == 0 {
		return nil, false, nil
	}
	return params, true, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for key, vals := range v {
		out[key] = append([]string(nil), vals...)
	}
	return out
}
