package service

import (
	"context"
	"net/url"
	"sync"

	"github.com/akylbek/payment-system/payment-result/internal/models"
)

// Session is one result screen. It runs at most one resolution at a time and
// drops results that arrive after Close.
type Session struct {
	resolver *Resolver
	clientID string
	userID   string

	mu            sync.Mutex
	params        url.Values
	result        models.PaymentResult
	lastOrderCode string
	mounted       bool
	inFlight      bool
	closed        bool
	cancel        context.CancelFunc
}

func (r *Resolver) NewSession(clientID, userID string, params url.Values) *Session {
	return &Session{
		resolver: r,
		clientID: clientID,
		userID:   userID,
		params:   params,
		result:   models.Loading(),
	}
}

// Mount runs the first resolution. Later calls return the current result.
func (s *Session) Mount(ctx context.Context) models.PaymentResult {
	res, _ := s.run(ctx, false)
	return res
}

// Retry re-runs resolution after a failure. It reports false, with the
// current result, when ignored: while a run is in flight, after success, or
// after Close.
func (s *Session) Retry(ctx context.Context) (models.PaymentResult, bool) {
	return s.run(ctx, true)
}

func (s *Session) Result() models.PaymentResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// LastOrderCode is the order code of the latest resolved result.
func (s *Session) LastOrderCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOrderCode
}

// fallBackTo seeds the order code retries use when the screen has seen none.
func (s *Session) fallBackTo(orderCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastOrderCode == "" {
		s.lastOrderCode = orderCode
	}
}

// Close cancels and discards any in-flight resolution.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Session) run(ctx context.Context, retry bool) (models.PaymentResult, bool) {
	s.mu.Lock()
	if s.closed || s.inFlight ||
		(!retry && s.mounted) ||
		(retry && s.result.Status == models.ResultSuccess) {
		res := s.result
		s.mu.Unlock()
		return res, false
	}
	s.mounted = true
	s.inFlight = true
	s.result = models.Loading()
	attempt := Attempt{
		ClientID:          s.clientID,
		UserID:            s.userID,
		Params:            s.params,
		FallbackOrderCode: s.lastOrderCode,
	}
	// navigation params are single-use
	s.params = nil
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	res := s.resolver.Resolve(ctx, attempt)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()
	s.cancel = nil
	s.inFlight = false
	if s.closed {
		return s.result, false
	}
	s.result = res
	if res.OrderCode != "" {
		s.lastOrderCode = res.OrderCode
	}
	return res, true
}
