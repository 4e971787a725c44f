package core

import (
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// Optional field wrappers for partial updates. UnmarshalJSON only runs when
// the key is present in the request body, so `Set` distinguishes an absent
// field (leave unchanged) from an explicit null/value (clear/replace).

type OptString struct {
	null.String
	Set bool
}

func (s *OptString) UnmarshalJSON(data []byte) error {
	s.Set = true
	return s.String.UnmarshalJSON(data)
}

type OptFloat64 struct {
	null.Float64
	Set bool
}

func (f *OptFloat64) UnmarshalJSON(data []byte) error {
	f.Set = true
	return f.Float64.UnmarshalJSON(data)
}

type OptTime struct {
	null.Time
	Set bool
}

func (t *OptTime) UnmarshalJSON(data []byte) error {
	t.Set = true
	return t.Time.UnmarshalJSON(data)
}

type OptDecimal struct {
	decimal.NullDecimal
	Set bool
}

func (d *OptDecimal) UnmarshalJSON(data []byte) error {
	d.Set = true
	return d.NullDecimal.UnmarshalJSON(data)
}
