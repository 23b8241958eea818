package service

import (
	"context"
	"sync"

	"github.com/akylbek/payment-system/payment-result/internal/models"
)

type fakeOrders struct {
	mu         sync.Mutex
	cached     map[string]*models.CachedResult
	orders     map[string]*models.OrderRecord
	cacheErr   error
	orderErr   error
	cacheCalls []string
	orderCalls []string

	// gate, when set, holds lookups until closed or the context ends.
	gate    chan struct{}
	started chan struct{}
	// hang makes cache lookups ignore their context until gate closes.
	hang bool
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		cached: map[string]*models.CachedResult{},
		orders: map[string]*models.OrderRecord{},
	}
}

func (f *fakeOrders) wait(ctx context.Context) error {
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.gate == nil {
		return nil
	}
	if f.hang {
		<-f.gate
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeOrders) LookupCachedResult(ctx context.Context, orderCode string) (*models.CachedResult, error) {
	f.mu.Lock()
	f.cacheCalls = append(f.cacheCalls, orderCode)
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cacheErr != nil {
		return nil, f.cacheErr
	}
	if c, ok := f.cached[orderCode]; ok {
		return c, nil
	}
	return nil, models.ErrNoCachedResult
}

func (f *fakeOrders) LookupOrder(ctx context.Context, orderCode string) (*models.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderCalls = append(f.orderCalls, orderCode)

	if f.orderErr != nil {
		return nil, f.orderErr
	}
	if o, ok := f.orders[orderCode]; ok {
		return o, nil
	}
	return nil, models.ErrOrderNotFound
}

func (f *fakeOrders) calls() (cache, order int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cacheCalls), len(f.orderCalls)
}

type fakeCarts struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeCarts) ClearCart(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID)
	return f.err
}

func (f *fakeCarts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type syncRunner struct{}

func (syncRunner) Submit(task func()) error {
	task()
	return nil
}

type recordingSink struct {
	mu      sync.Mutex
	results []models.PaymentResult
}

func (s *recordingSink) Record(_ context.Context, result models.PaymentResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}
