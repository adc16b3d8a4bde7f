package domain

import (
	"bytes"
	"strconv"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value as returned by the remote API. The API is not
// consistent about numbers vs numeric strings; anything that does not parse
// decodes to zero rather than failing the whole payload.
type Amount struct {
	decimal.Decimal
}

// NewAmount builds an Amount from a float.
func NewAmount(v float64) Amount {
	return Amount{decimal.NewFromFloat(v)}
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			a.Decimal = decimal.Zero
			return nil
		}
		data = []byte(s)
	}
	d, err := decimal.NewFromString(string(bytes.TrimSpace(data)))
	if err != nil {
		a.Decimal = decimal.Zero
		return nil
	}
	a.Decimal = d
	return nil
}

// MarshalJSON writes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	return Amount{a.Decimal.Abs()}
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{a.Decimal.Add(b.Decimal)}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{a.Decimal.Sub(b.Decimal)}
}
