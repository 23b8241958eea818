package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/payment-result/internal/deeplink"
	"github.com/akylbek/payment-system/payment-result/internal/handlers"
	"github.com/akylbek/payment-system/payment-result/internal/models"
	"github.com/akylbek/payment-system/payment-result/internal/pending"
	"github.com/akylbek/payment-system/payment-result/internal/service"
)

type stubOrders struct {
	orders map[string]*models.OrderRecord

	mu         sync.Mutex
	orderCalls int
	// gate, when set, holds order lookups until closed.
	gate    chan struct{}
	started chan struct{}
}

func (s *stubOrders) LookupCachedResult(context.Context, string) (*models.CachedResult, error) {
	return nil, models.ErrNoCachedResult
}

func (s *stubOrders) LookupOrder(_ context.Context, orderCode string) (*models.OrderRecord, error) {
	s.mu.Lock()
	s.orderCalls++
	s.mu.Unlock()

	if s.gate != nil {
		s.started <- struct{}{}
		<-s.gate
	}
	if o, ok := s.orders[orderCode]; ok {
		return o, nil
	}
	return nil, models.ErrOrderNotFound
}

type stubCarts struct {
	mu    sync.Mutex
	users []string
}

func (s *stubCarts) ClearCart(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, userID)
	return nil
}

type memoryRepo struct {
	mu      sync.Mutex
	results map[string]models.PaymentResult
}

func (m *memoryRepo) Record(_ context.Context, result models.PaymentResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result.OrderCode] = result
	return nil
}

func (m *memoryRepo) GetByOrderCode(_ context.Context, orderCode string) (*models.PaymentResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[orderCode]
	if !ok {
		return nil, models.ErrResultNotFound
	}
	return &r, nil
}

type inline struct{}

func (inline) Submit(task func()) error {
	task()
	return nil
}

type testEnv struct {
	router http.Handler
	orders *stubOrders
	carts  *stubCarts
	repo   *memoryRepo
}

func newTestEnv() *testEnv {
	orders := &stubOrders{orders: map[string]*models.OrderRecord{
		"ORD-9": {OrderCode: "ORD-9", Status: models.OrderPaid, PaymentStatus: models.PaymentCompleted, TotalAmount: 99000},
		"ORD-55": {OrderCode: "ORD-55", Status: models.OrderPaymentFailed, PaymentStatus: models.PaymentFailed,
			PaymentDetails: &models.PaymentDetails{ErrorCode: "24", ErrorMessage: "User cancelled"}},
	}}
	carts := &stubCarts{}
	repo := &memoryRepo{results: map[string]models.PaymentResult{}}
	slot := pending.NewMemorySlot()

	resolver := service.NewResolver(orders, carts, slot, service.NewMemoryClearLedger(), inline{}, service.Options{}, repo)
	h := handlers.NewPaymentResultHandler(resolver, repo, deeplink.NewIntake(slot))
	return &testEnv{router: NewRouter(h), orders: orders, carts: carts, repo: repo}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) models.PaymentResult {
	t.Helper()
	var res models.PaymentResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestHealth(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "payment-result")
}

func TestResolveEndpoint(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/payments/result", map[string]any{
		"client_id": "device-1",
		"user_id":   "user-1",
		"params":    map[string]string{"status": "failed", "orderId": "ORD-55"},
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	res := decodeResult(t, w)
	assert.Equal(t, models.ResultError, res.Status)
	assert.Equal(t, "24", res.ErrorCode)
	assert.Equal(t, "User cancelled", res.ErrorMessage)
	assert.Empty(t, env.carts.users)
}

func TestDeepLinkThenResolve(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/deeplinks", map[string]string{
		"client_id": "device-1",
		"url":       "f7shop://payment-result?orderId=ORD-9&status=success",
	}, nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	w = env.do(t, http.MethodPost, "/payments/result", map[string]any{
		"client_id": "device-1",
		"user_id":   "user-1",
		"params":    map[string]string{"status": "failed", "orderId": "ORD-55"},
	}, nil)
	res := decodeResult(t, w)
	assert.Equal(t, models.ResultSuccess, res.Status)
	assert.Equal(t, "ORD-9", res.OrderCode)
	assert.Equal(t, []string{"user-1"}, env.carts.users)

	w = env.do(t, http.MethodGet, "/payments/ORD-9/result", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ResultSuccess, decodeResult(t, w).Status)
}

func TestDeepLinkRejectsForeignURL(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/deeplinks", map[string]string{
		"client_id": "device-1",
		"url":       "https://example.com/?orderId=ORD-9",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/deeplinks", map[string]string{"client_id": "device-1"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGatewayReturn(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodGet,
		"/vnpay/payment-result?vnp_ResponseCode=00&vnp_OrderInfo=Thanh_toan_don_hang_ORD-9&vnp_BankCode=NCB",
		nil, map[string]string{"X-User-ID": "user-2"})

	require.Equal(t, http.StatusOK, w.Code)
	res := decodeResult(t, w)
	assert.Equal(t, models.ResultSuccess, res.Status)
	assert.Equal(t, "ORD-9", res.OrderCode)
	assert.Equal(t, "99.000₫", res.AmountText)
	assert.Equal(t, []string{"user-2"}, env.carts.users)
}

func TestRetryEndpoint(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/payments/result/retry", map[string]string{
		"client_id":  "device-1",
		"user_id":    "user-1",
		"order_code": "ORD-9",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ResultSuccess, decodeResult(t, w).Status)

	// second retry for the same order does not clear the cart again
	env.do(t, http.MethodPost, "/payments/result/retry", map[string]string{
		"client_id":  "device-1",
		"user_id":    "user-1",
		"order_code": "ORD-9",
	}, nil)
	assert.Equal(t, []string{"user-1"}, env.carts.users)
}

func TestRetryWithoutOrderCode(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/payments/result/retry", map[string]string{"client_id": "device-1"}, nil)
	res := decodeResult(t, w)
	assert.Equal(t, models.ResultError, res.Status)
	assert.Equal(t, "No payment information", res.Title)
}

func TestGetResultNotFound(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodGet, "/payments/ORD-0/result", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConcurrentRetriesRunOneLookup(t *testing.T) {
	env := newTestEnv()
	env.orders.gate = make(chan struct{})
	env.orders.started = make(chan struct{}, 1)

	body := map[string]string{"client_id": "device-1", "user_id": "user-1", "order_code": "ORD-55"}
	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- env.do(t, http.MethodPost, "/payments/result/retry", body, nil)
	}()
	<-env.orders.started

	w := env.do(t, http.MethodPost, "/payments/result/retry", body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ResultLoading, decodeResult(t, w).Status, "retry while in flight is ignored")

	close(env.orders.gate)
	assert.Equal(t, models.ResultError, decodeResult(t, <-first).Status)

	env.orders.mu.Lock()
	defer env.orders.mu.Unlock()
	assert.Equal(t, 1, env.orders.orderCalls)
}

func TestUnmountThenRetryStartsFresh(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/payments/result", map[string]any{
		"client_id": "device-1",
		"params":    map[string]string{"orderId": "ORD-9"},
	}, nil)
	require.Equal(t, models.ResultSuccess, decodeResult(t, w).Status)

	// the live screen shows success, so a retry is ignored
	env.do(t, http.MethodPost, "/payments/result/retry", map[string]string{"client_id": "device-1"}, nil)
	assert.Equal(t, 1, env.orders.orderCalls)

	w = env.do(t, http.MethodDelete, "/payments/result/device-1", nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodPost, "/payments/result/retry", map[string]string{"client_id": "device-1"}, nil)
	assert.Equal(t, "No payment information", decodeResult(t, w).Title)
}
