package models

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
)

// looseAmount accepts an amount sent as a JSON number or a numeric string.
// Anything else reads as zero.
type looseAmount float64

func (a *looseAmount) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		f = 0
	}
	*a = looseAmount(f)
	return nil
}

func (o *OrderRecord) UnmarshalJSON(data []byte) error {
	type plain OrderRecord
	aux := struct {
		*plain
		TotalAmount looseAmount `json:"total_amount"`
	}{plain: (*plain)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	o.TotalAmount = float64(aux.TotalAmount)
	return nil
}

func (c *CachedResult) UnmarshalJSON(data []byte) error {
	type plain CachedResult
	aux := struct {
		*plain
		Amount looseAmount `json:"amount"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Amount = float64(aux.Amount)
	return nil
}
