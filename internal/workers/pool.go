// Package workers runs fire-and-forget side effects on a bounded pool.
package workers

import (
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-result/internal/telemetry"
)

// Pool - pooling struct
type Pool struct {
	antsPool *ants.Pool
}

// NewPool - a pool of at most size goroutines. Submit never waits for a free
// worker; a full pool rejects with ants.ErrPoolOverload. Panics in tasks are logged.
func NewPool(size int) (*Pool, error) {
	pool, err := ants.NewPool(size, ants.WithNonblocking(true), ants.WithPanicHandler(func(data interface{}) {
		telemetry.Logger.Error("Task panicked", zap.Any("panic", data))
	}))
	if err != nil {
		return nil, err
	}
	return &Pool{antsPool: pool}, nil
}

// Submit - submit a task to this pool
func (p *Pool) Submit(task func()) error {
	return p.antsPool.Submit(task)
}

// Release - release all goroutines
func (p *Pool) Release() {
	p.antsPool.Release()
}
