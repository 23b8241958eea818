package models

// ResultStatus is the state of the PaymentResult shown to the shopper.
type ResultStatus string

const (
	ResultLoading ResultStatus = "loading"
	ResultSuccess ResultStatus = "success"
	ResultError   ResultStatus = "error"
)

// Terminal reports whether the status can no longer change within one attempt.
func (s ResultStatus) Terminal() bool {
	return s == ResultSuccess || s == ResultError
}

// Action is a follow-up the client offers next to a resolved result.
type Action string

const (
	ActionViewOrders Action = "view_orders"
	ActionHome       Action = "home"
	ActionRetry      Action = "retry"
)

// PaymentResult is the canonical outcome of a payment attempt.
type PaymentResult struct {
	Status        ResultStatus `json:"status"`
	Title         string       `json:"title"`
	Subtitle      string       `json:"subtitle"`
	OrderCode     string       `json:"orderCode,omitempty"`
	Amount        float64      `json:"amount,omitempty"`
	AmountText    string       `json:"amountText,omitempty"`
	TransactionID string       `json:"transactionId,omitempty"`
	BankCode      string       `json:"bankCode,omitempty"`
	PaymentTime   string       `json:"paymentTime,omitempty"`
	PaymentAt     string       `json:"paymentTimeText,omitempty"`
	ErrorCode     string       `json:"errorCode,omitempty"`
	ErrorMessage  string       `json:"errorMessage,omitempty"`
	Actions       []Action     `json:"actions,omitempty"`
}

// Loading is the result every attempt starts from.
func Loading() PaymentResult {
	return PaymentResult{
		Status:   ResultLoading,
		Title:    "Checking payment...",
		Subtitle: "Please wait a moment",
	}
}

// OrderStatus values reported by the order service.
const (
	OrderWaiting       = "waiting"
	OrderPending       = "pending"
	OrderConfirmed     = "confirmed"
	OrderShipped       = "shipped"
	OrderDelivered     = "delivered"
	OrderCancelled     = "cancelled"
	OrderReturned      = "returned"
	OrderPaymentFailed = "payment_failed"
	OrderPaid          = "paid"
)

// Payment status values on an order record.
const (
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentPending   = "pending"
)

type PaymentDetails struct {
	TransactionID string `json:"transactionId"`
	BankCode      string `json:"bankCode"`
	PaymentTime   string `json:"paymentTime"`
	ErrorCode     string `json:"errorCode"`
	ErrorMessage  string `json:"errorMessage"`
}

// OrderRecord is the order as stored by the backend. Read-only here.
type OrderRecord struct {
	OrderCode      string          `json:"order_code"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"paymentStatus"`
	PaymentDetails *PaymentDetails `json:"paymentDetails,omitempty"`
	TotalAmount    float64         `json:"total_amount"`
}

// CachedResult is an entry of the backend's short-lived payment result cache.
type CachedResult struct {
	Status        string  `json:"status"`
	OrderID       string  `json:"orderId"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transactionId"`
	ErrorCode     string  `json:"errorCode"`
	ErrorMessage  string  `json:"errorMessage"`
}

// ResolvedEvent is published once a result reaches a terminal state.
type ResolvedEvent struct {
	EventID   string        `json:"event_id"`
	OrderCode string        `json:"order_code"`
	Status    ResultStatus  `json:"status"`
	Result    PaymentResult `json:"result"`
	Timestamp string        `json:"timestamp"`
}
