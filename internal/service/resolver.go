package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-result/internal/interfaces"
	"github.com/akylbek/payment-system/payment-result/internal/models"
	"github.com/akylbek/payment-system/payment-result/internal/signal"
	"github.com/akylbek/payment-system/payment-result/internal/telemetry"
)

const (
	defaultLookupTimeout = 5 * time.Second
	defaultClearTimeout  = 5 * time.Second
	sinkTimeout          = 5 * time.Second
)

type Options struct {
	CacheLookupTimeout time.Duration
	OrderLookupTimeout time.Duration
	CartClearTimeout   time.Duration
}

func (o Options) withDefaults() Options {
	if o.CacheLookupTimeout <= 0 {
		o.CacheLookupTimeout = defaultLookupTimeout
	}
	if o.OrderLookupTimeout <= 0 {
		o.OrderLookupTimeout = defaultLookupTimeout
	}
	if o.CartClearTimeout <= 0 {
		o.CartClearTimeout = defaultClearTimeout
	}
	return o
}

// Attempt is one run of the resolution procedure.
type Attempt struct {
	// ClientID selects the pending deep-link slot.
	ClientID string
	// UserID owns the cart cleared on success. Empty skips the clear.
	UserID string
	// Params are the navigation parameters the screen was opened with.
	Params url.Values
	// FallbackOrderCode is used when no signal names an order, e.g. on retry.
	FallbackOrderCode string
}

// Resolver turns payment signals into one authoritative PaymentResult.
type Resolver struct {
	orders  interfaces.OrderQueryService
	carts   interfaces.CartService
	pending interfaces.PendingSignalStore
	ledger  interfaces.ClearLedger
	runner  interfaces.TaskRunner
	sinks   []interfaces.ResultSink
	opts    Options
}

func NewResolver(
	orders interfaces.OrderQueryService,
	carts interfaces.CartService,
	pending interfaces.PendingSignalStore,
	ledger interfaces.ClearLedger,
	runner interfaces.TaskRunner,
	opts Options,
	sinks ...interfaces.ResultSink,
) *Resolver {
	return &Resolver{
		orders:  orders,
		carts:   carts,
		pending: pending,
		ledger:  ledger,
		runner:  runner,
		sinks:   sinks,
		opts:    opts.withDefaults(),
	}
}

// Resolve never fails: every failure is expressed as an error result.
func (r *Resolver) Resolve(ctx context.Context, a Attempt) models.PaymentResult {
	ctx, span := telemetry.Tracer.Start(ctx, "payment_result.resolve")
	defer span.End()

	sig := r.takeSignal(ctx, a)
	orderCode := sig.OrderCode()
	if orderCode == "" {
		orderCode = a.FallbackOrderCode
	}

	telemetry.Logger.Info("Resolving payment result",
		zap.String("signal", sig.Kind()),
		zap.String("order_code", orderCode),
		zap.String("client_id", a.ClientID),
	)

	var (
		result    models.PaymentResult
		confirmed bool
	)
	if orderCode == "" {
		result = noPaymentInfo()
	} else {
		result, confirmed = r.fetchOrderDetails(ctx, orderCode, a.UserID)
		if gw, ok := sig.(signal.Gateway); ok {
			result = keepGatewayCode(result, gw)
		}
	}
	result.Actions = actionsFor(result.Status)

	span.SetAttributes(
		attribute.String("payment.signal", sig.Kind()),
		attribute.String("payment.order_code", orderCode),
		attribute.String("payment.status", string(result.Status)),
	)
	telemetry.ResolutionsTotal.WithLabelValues(string(result.Status)).Inc()
	telemetry.Logger.Info("Payment result resolved",
		zap.String("order_code", result.OrderCode),
		zap.String("status", string(result.Status)),
		zap.String("error_code", result.ErrorCode),
	)

	// Only answers the backend actually gave are recorded. A cancelled run or
	// an unreachable backend says nothing about the payment.
	if confirmed && ctx.Err() == nil {
		r.record(result)
	}
	return result
}

// takeSignal prefers a pending deep link over navigation parameters.
func (r *Resolver) takeSignal(ctx context.Context, a Attempt) signal.Signal {
	params, ok, err := r.pending.Take(ctx, a.ClientID)
	if err != nil {
		telemetry.Logger.Warn("Pending signal unavailable",
			zap.String("client_id", a.ClientID),
			zap.Error(err),
		)
	}
	if ok && len(params) > 0 {
		return signal.Decode(params)
	}
	return signal.Decode(a.Params)
}

// fetchOrderDetails consults the result cache, then the order record. It
// reports false when neither lookup produced an answer.
func (r *Resolver) fetchOrderDetails(ctx context.Context, orderCode, userID string) (models.PaymentResult, bool) {
	cached, cacheErr := lookup(ctx, r.opts.CacheLookupTimeout, "cache", func(ctx context.Context) (*models.CachedResult, error) {
		return r.orders.LookupCachedResult(ctx, orderCode)
	})
	if cacheErr == nil && cached == nil {
		cacheErr = models.ErrNoCachedResult
	}
	if cacheErr == nil {
		result := fromCache(orderCode, cached)
		if result.Status == models.ResultSuccess {
			r.clearCart(ctx, userID, orderCode)
		}
		return result, true
	}
	telemetry.Logger.Info("Cached payment result unavailable",
		zap.String("order_code", orderCode),
		zap.Error(cacheErr),
	)

	order, orderErr := lookup(ctx, r.opts.OrderLookupTimeout, "order", func(ctx context.Context) (*models.OrderRecord, error) {
		return r.orders.LookupOrder(ctx, orderCode)
	})
	if orderErr == nil && order == nil {
		orderErr = models.ErrOrderNotFound
	}
	if orderErr == nil {
		result := fromOrder(orderCode, order)
		if result.Status == models.ResultSuccess {
			r.clearCart(ctx, userID, orderCode)
		}
		return result, true
	}

	telemetry.Logger.Warn("Order lookup failed",
		zap.String("order_code", orderCode),
		zap.NamedError("cache_error", cacheErr),
		zap.Error(orderErr),
	)
	return lookupFailed(orderCode, orderErr), false
}

// lookup bounds call by timeout even if it ignores its context.
func lookup[T any](ctx context.Context, timeout time.Duration, source string, call func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ctx, span := telemetry.Tracer.Start(ctx, "payment_result."+source+"_lookup")
	defer span.End()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		v, err := call(ctx)
		done <- outcome{v, err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
	}

	label := "ok"
	if out.err != nil {
		label = "error"
		span.RecordError(out.err)
	}
	telemetry.LookupDuration.WithLabelValues(source, label).Observe(time.Since(start).Seconds())
	return out.value, out.err
}

// clearCart claims the order before clearing so a cart is emptied at most once
// per order. The clear itself runs off the resolution path.
func (r *Resolver) clearCart(ctx context.Context, userID, orderCode string) {
	if userID == "" {
		telemetry.Logger.Info("No user to clear cart for", zap.String("order_code", orderCode))
		return
	}

	claimed, err := r.ledger.Claim(ctx, orderCode)
	if err != nil {
		telemetry.CartClearsTotal.WithLabelValues("claim_error").Inc()
		telemetry.Logger.Error("Failed to claim cart clear",
			zap.String("order_code", orderCode),
			zap.Error(err),
		)
		return
	}
	if !claimed {
		telemetry.CartClearsTotal.WithLabelValues("duplicate").Inc()
		return
	}

	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.opts.CartClearTimeout)
		defer cancel()

		if err := r.carts.ClearCart(ctx, userID); err != nil {
			telemetry.CartClearsTotal.WithLabelValues("failed").Inc()
			telemetry.Logger.Error("Failed to clear cart",
				zap.String("user_id", userID),
				zap.String("order_code", orderCode),
				zap.Error(err),
			)
			return
		}
		telemetry.CartClearsTotal.WithLabelValues("cleared").Inc()
		telemetry.Logger.Info("Cart cleared",
			zap.String("user_id", userID),
			zap.String("order_code", orderCode),
		)
	}
	if err := r.runner.Submit(task); err != nil {
		telemetry.CartClearsTotal.WithLabelValues("failed").Inc()
		telemetry.Logger.Error("Failed to schedule cart clear",
			zap.String("order_code", orderCode),
			zap.Error(err),
		)
	}
}

func (r *Resolver) record(result models.PaymentResult) {
	if result.OrderCode == "" || !result.Status.Terminal() {
		return
	}
	for _, sink := range r.sinks {
		sink := sink
		err := r.runner.Submit(func() {
			ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
			defer cancel()
			if err := sink.Record(ctx, result); err != nil {
				telemetry.Logger.Error("Failed to record payment result",
					zap.String("order_code", result.OrderCode),
					zap.Error(err),
				)
			}
		})
		if err != nil {
			telemetry.Logger.Error("Failed to schedule result sink", zap.Error(err))
		}
	}
}

func fromCache(orderCode string, c *models.CachedResult) models.PaymentResult {
	if c.OrderID != "" {
		orderCode = c.OrderID
	}
	result := models.PaymentResult{
		OrderCode:     orderCode,
		Amount:        c.Amount,
		AmountText:    FormatAmount(c.Amount),
		TransactionID: c.TransactionID,
		ErrorCode:     c.ErrorCode,
		ErrorMessage:  c.ErrorMessage,
	}
	if c.Status == "success" {
		result.Status = models.ResultSuccess
		result.Title = titleSuccess
		result.Subtitle = subtitleSuccess
		return result
	}
	result.Status = models.ResultError
	result.Title = titleFailed
	result.Subtitle = orDefault(c.ErrorMessage, subtitleFailed)
	return result
}

func fromOrder(orderCode string, o *models.OrderRecord) models.PaymentResult {
	if o.OrderCode != "" {
		orderCode = o.OrderCode
	}
	details := models.PaymentDetails{}
	if o.PaymentDetails != nil {
		details = *o.PaymentDetails
	}

	switch {
	case o.Status == models.OrderPaid && o.PaymentStatus == models.PaymentCompleted:
		return models.PaymentResult{
			Status:        models.ResultSuccess,
			Title:         titleSuccess,
			Subtitle:      subtitleSuccess,
			OrderCode:     orderCode,
			Amount:        o.TotalAmount,
			AmountText:    FormatAmount(o.TotalAmount),
			TransactionID: details.TransactionID,
			BankCode:      details.BankCode,
			PaymentTime:   details.PaymentTime,
			PaymentAt:     FormatPaymentTime(details.PaymentTime),
		}
	case o.Status == models.OrderPaymentFailed || o.PaymentStatus == models.PaymentFailed:
		return models.PaymentResult{
			Status:       models.ResultError,
			Title:        titleFailed,
			Subtitle:     orDefault(details.ErrorMessage, subtitleFailed),
			OrderCode:    orderCode,
			ErrorCode:    details.ErrorCode,
			ErrorMessage: details.ErrorMessage,
		}
	default:
		return models.PaymentResult{
			Status:    models.ResultError,
			Title:     "Payment status undetermined",
			Subtitle:  "We could not determine the payment status",
			OrderCode: orderCode,
		}
	}
}

func lookupFailed(orderCode string, err error) models.PaymentResult {
	if errors.Is(err, models.ErrOrderNotFound) {
		return models.PaymentResult{
			Status:    models.ResultError,
			Title:     "Order not found",
			Subtitle:  fmt.Sprintf("No order was found with code %s. Contact support with this code.", orderCode),
			OrderCode: orderCode,
		}
	}
	return models.PaymentResult{
		Status:    models.ResultError,
		Title:     "Connection error",
		Subtitle:  fmt.Sprintf("Could not confirm order %s with the server. Check your network connection and try again.", orderCode),
		OrderCode: orderCode,
	}
}

func noPaymentInfo() models.PaymentResult {
	return models.PaymentResult{
		Status:   models.ResultError,
		Title:    "No payment information",
		Subtitle: "Please try again or contact support",
	}
}

// keepGatewayCode carries the provider's code into error results that have none.
func keepGatewayCode(result models.PaymentResult, gw signal.Gateway) models.PaymentResult {
	if result.Status != models.ResultError || gw.Succeeded() || result.ErrorCode != "" {
		return result
	}
	if !gw.Mapped() {
		telemetry.Logger.Info("Unmapped gateway response code",
			zap.String("order_code", result.OrderCode),
			zap.String("response_code", gw.ResponseCode),
		)
	}
	result.ErrorCode = gw.ResponseCode
	if result.ErrorMessage == "" && gw.Cancelled() {
		result.ErrorMessage = "Payment cancelled by customer"
	}
	return result
}

func actionsFor(status models.ResultStatus) []models.Action {
	if status == models.ResultSuccess {
		return []models.Action{models.ActionViewOrders, models.ActionHome}
	}
	return []models.Action{models.ActionRetry, models.ActionHome, models.ActionViewOrders}
}

const (
	titleSuccess    = "Payment successful"
	subtitleSuccess = "Your order has been processed successfully"
	titleFailed     = "Payment failed"
	subtitleFailed  = "Something went wrong while processing the payment"
)

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
