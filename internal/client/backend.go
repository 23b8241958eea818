// Package client talks to the storefront's e-commerce backend.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/akylbek/payment-system/payment-result/internal/models"
)

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

// Backend implements interfaces.OrderQueryService and interfaces.CartService.
// Deadlines come from the caller's context.
type Backend struct {
	baseURL string
	http    *http.Client
}

func NewBackend(baseURL string, httpClient *http.Client) *Backend {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Backend{baseURL: baseURL, http: httpClient}
}

func (b *Backend) LookupCachedResult(ctx context.Context, orderCode string) (*models.CachedResult, error) {
	var env envelope[models.CachedResult]
	status, err := b.getJSON(ctx, "/vnpay/get_payment_result", orderCode, &env)
	if err != nil {
		return nil, fmt.Errorf("cache lookup %s: %w", orderCode, err)
	}
	if status == http.StatusNotFound || !env.Success || env.Data == nil {
		return nil, models.ErrNoCachedResult
	}
	return env.Data, nil
}

func (b *Backend) LookupOrder(ctx context.Context, orderCode string) (*models.OrderRecord, error) {
	var env envelope[models.OrderRecord]
	status, err := b.getJSON(ctx, "/vnpay/check_order_status", orderCode, &env)
	if err != nil {
		return nil, fmt.Errorf("order lookup %s: %w", orderCode, err)
	}
	if status == http.StatusNotFound || !env.Success || env.Data == nil {
		return nil, models.ErrOrderNotFound
	}
	return env.Data, nil
}

// ClearCart deletes every item in the user's cart. A missing cart counts as cleared.
func (b *Backend) ClearCart(ctx context.Context, userID string) error {
	endpoint := b.baseURL + "/api/carts/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("clear cart %s: %w", userID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("clear cart %s: unexpected status %d", userID, resp.StatusCode)
}

// getJSON decodes the body for 2xx and 404 responses; other statuses are errors.
func (b *Backend) getJSON(ctx context.Context, path, orderCode string, out any) (int, error) {
	endpoint := b.baseURL + path + "?" + url.Values{"order_code": {orderCode}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
