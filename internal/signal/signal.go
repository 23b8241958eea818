// Package signal decodes the loosely typed parameter bags that arrive after a
// payment redirect into a closed set of signal shapes.
package signal

import (
	"net/url"
	"strings"

	"github.com/spf13/cast"

	"github.com/akylbek/payment-system/payment-result/internal/models"
)

// OrderInfoPrefix is prepended to the order code in vnp_OrderInfo at checkout.
const OrderInfoPrefix = "Thanh_toan_don_hang_"

// VNPay response codes with a known meaning. Anything else is kept raw.
const (
	ResponseCodeSuccess   = "00"
	ResponseCodeCancelled = "24"
)

const (
	deepLinkScheme = "f7shop"
	deepLinkHost   = "payment-result"
	universalHost  = "f7shop.com"
)

// Signal is one of DeepLink, Gateway or Unknown.
type Signal interface {
	// OrderCode is the order identifier the signal points at, possibly empty.
	OrderCode() string
	Kind() string
}

// DeepLink is the backend's redirect back into the app. Its status is only a
// trigger: the outcome is always looked up.
type DeepLink struct {
	Status        string
	OrderID       string
	Amount        float64
	TransactionID string
	ErrorCode     string
	ErrorMessage  string
	Timestamp     string
}

func (d DeepLink) OrderCode() string { return d.OrderID }
func (DeepLink) Kind() string        { return "deep_link" }

// Gateway carries the payment provider's own return parameters.
type Gateway struct {
	ResponseCode  string
	OrderInfo     string
	TxnRef        string
	TransactionNo string
	BankCode      string
	PayDate       string
	// Amount is in VND; the raw vnp_Amount is ×100.
	Amount float64
}

// OrderCode strips the checkout prefix from vnp_OrderInfo.
func (g Gateway) OrderCode() string {
	return strings.TrimPrefix(strings.TrimSpace(g.OrderInfo), OrderInfoPrefix)
}

func (Gateway) Kind() string { return "gateway" }

// Succeeded reports the provider's own view, which is never trusted on its own.
func (g Gateway) Succeeded() bool { return g.ResponseCode == ResponseCodeSuccess }

// Cancelled reports a shopper-initiated cancel at the provider.
func (g Gateway) Cancelled() bool { return g.ResponseCode == ResponseCodeCancelled }

// Mapped reports whether the response code has a known meaning.
func (g Gateway) Mapped() bool { return g.Succeeded() || g.Cancelled() }

// Unknown is any other bag. OrderID holds an identifier salvaged from generic
// parameters, if there was one.
type Unknown struct {
	OrderID string
}

func (u Unknown) OrderCode() string { return u.OrderID }
func (Unknown) Kind() string        { return "unknown" }

// Decode classifies a parameter bag. An empty bag decodes to Unknown{}.
func Decode(v url.Values) Signal {
	switch status := v.Get("status"); {
	case status == "success" || status == "failed":
		return DeepLink{
			Status:        status,
			OrderID:       v.Get("orderId"),
			Amount:        toAmount(v.Get("amount")),
			TransactionID: v.Get("transactionId"),
			ErrorCode:     v.Get("errorCode"),
			ErrorMessage:  v.Get("errorMessage"),
			Timestamp:     v.Get("timestamp"),
		}
	case v.Get("vnp_ResponseCode") != "":
		return Gateway{
			ResponseCode:  v.Get("vnp_ResponseCode"),
			OrderInfo:     v.Get("vnp_OrderInfo"),
			TxnRef:        v.Get("vnp_TxnRef"),
			TransactionNo: v.Get("vnp_TransactionNo"),
			BankCode:      v.Get("vnp_BankCode"),
			PayDate:       v.Get("vnp_PayDate"),
			Amount:        toAmount(v.Get("vnp_Amount")) / 100,
		}
	}

	id := v.Get("orderId")
	if id == "" {
		id = v.Get("order_code")
	}
	return Unknown{OrderID: id}
}

// FromMap builds a parameter bag from a flat JSON object.
func FromMap(m map[string]string) url.Values {
	v := make(url.Values, len(m))
	for key, val := range m {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v
}

// ParseDeepLink extracts the query parameters of a payment-result link.
func ParseDeepLink(raw string) (url.Values, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, models.ErrInvalidDeepLink
	}

	switch {
	case u.Scheme == deepLinkScheme && u.Host == deepLinkHost:
	case (u.Scheme == "https" || u.Scheme == "http") && u.Host == universalHost &&
		strings.TrimSuffix(u.Path, "/") == "/"+deepLinkHost:
	default:
		return nil, models.ErrInvalidDeepLink
	}

	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return nil, models.ErrInvalidDeepLink
	}
	if len(values) == 0 {
		return nil, models.ErrEmptySignal
	}
	return values, nil
}

func toAmount(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0
	}
	return f
}
