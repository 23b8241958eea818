package service

import (
	"time"

	"github.com/leekchan/accounting"
)

const paymentTimeLayout = "15:04:05 02/01/2006"

var (
	vnd = accounting.Accounting{Symbol: "₫", Precision: 0, Thousand: ".", Decimal: ",", Format: "%v%s"}
	ict = time.FixedZone("ICT", 7*60*60)
)

// FormatAmount renders a VND amount with vi-VN grouping, e.g. 1.250.000₫.
func FormatAmount(amount float64) string {
	if amount <= 0 {
		return ""
	}
	return vnd.FormatMoney(amount)
}

// FormatPaymentTime renders a payment timestamp in Vietnam time. It accepts
// RFC 3339 and VNPay's yyyyMMddHHmmss; anything else is returned unchanged.
func FormatPaymentTime(raw string) string {
	if raw == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(ict).Format(paymentTimeLayout)
	}
	if t, err := time.ParseInLocation("20060102150405", raw, ict); err == nil {
		return t.Format(paymentTimeLayout)
	}
	return raw
}
