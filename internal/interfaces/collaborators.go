package interfaces

import (
	"context"
	"net/url"

	"github.com/akylbek/payment-system/payment-result/internal/models"
)

// OrderQueryService fetches authoritative payment data by order code.
type OrderQueryService interface {
	// LookupCachedResult returns models.ErrNoCachedResult when the cache has no entry.
	LookupCachedResult(ctx context.Context, orderCode string) (*models.CachedResult, error)
	// LookupOrder returns models.ErrOrderNotFound for unknown order codes.
	LookupOrder(ctx context.Context, orderCode string) (*models.OrderRecord, error)
}

// CartService empties a shopper's cart. Clearing an absent cart is not an error.
type CartService interface {
	ClearCart(ctx context.Context, userID string) error
}

// PendingSignalStore is a single-slot mailbox per client: Put overwrites, Take
// consumes and clears.
type PendingSignalStore interface {
	Put(ctx context.Context, clientID string, params url.Values) error
	Take(ctx context.Context, clientID string) (url.Values, bool, error)
}

// ClearLedger records which orders already had their cart cleared.
type ClearLedger interface {
	// Claim returns true for the first caller for an order code only.
	Claim(ctx context.Context, orderCode string) (bool, error)
}

// TaskRunner runs side effects off the resolution path.
type TaskRunner interface {
	Submit(task func()) error
}

// ResultSink receives every terminal result.
type ResultSink interface {
	Record(ctx context.Context, result models.PaymentResult) error
}
