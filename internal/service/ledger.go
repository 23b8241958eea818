package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryClearLedger remembers claimed orders for the life of the process.
type MemoryClearLedger struct {
	claimed sync.Map
}

func NewMemoryClearLedger() *MemoryClearLedger {
	return &MemoryClearLedger{}
}

func (l *MemoryClearLedger) Claim(_ context.Context, orderCode string) (bool, error) {
	_, loaded := l.claimed.LoadOrStore(orderCode, struct{}{})
	return !loaded, nil
}

// RedisClearLedger shares claims across replicas. Claims expire after ttl.
type RedisClearLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClearLedger(client *redis.Client, ttl time.Duration) *RedisClearLedger {
	return &RedisClearLedger{client: client, ttl: ttl}
}

func (l *RedisClearLedger) Claim(ctx context.Context, orderCode string) (bool, error) {
	key := fmt.Sprintf("cart_cleared:%s", orderCode)
	return l.client.SetNX(ctx, key, "1", l.ttl).Result()
}
