package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRecord_AmountAsString(t *testing.T) {
	var o OrderRecord
	require.NoError(t, json.Unmarshal([]byte(`{"order_code":"ORD-1","status":"paid","paymentStatus":"completed","total_amount":"1250000"}`), &o))

	assert.Equal(t, "ORD-1", o.OrderCode)
	assert.Equal(t, OrderPaid, o.Status)
	assert.Equal(t, PaymentCompleted, o.PaymentStatus)
	assert.Equal(t, 1250000.0, o.TotalAmount)
}

func TestOrderRecord_AmountAsNumber(t *testing.T) {
	var o OrderRecord
	require.NoError(t, json.Unmarshal([]byte(`{"order_code":"ORD-1","total_amount":99000,"paymentDetails":{"bankCode":"NCB"}}`), &o))

	assert.Equal(t, 99000.0, o.TotalAmount)
	require.NotNil(t, o.PaymentDetails)
	assert.Equal(t, "NCB", o.PaymentDetails.BankCode)
}

func TestCachedResult_LooseAmounts(t *testing.T) {
	cases := map[string]float64{
		`{"status":"success","amount":"250000"}`:   250000,
		`{"status":"success","amount":" 250000 "}`: 250000,
		`{"status":"success","amount":null}`:       0,
		`{"status":"success","amount":""}`:         0,
		`{"status":"success","amount":"n/a"}`:      0,
		`{"status":"success"}`:                     0,
	}
	for body, want := range cases {
		var c CachedResult
		require.NoError(t, json.Unmarshal([]byte(body), &c), body)
		assert.Equal(t, "success", c.Status, body)
		assert.Equal(t, want, c.Amount, body)
	}
}
