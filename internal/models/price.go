package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the symbol the storefront renders after every amount.
const Currency = "₿"

// Price is a fractional currency amount. It travels as a bare JSON number, which is
// what the service sends and expects.
type Price struct {
	decimal.Decimal
}

func NewPrice(d decimal.Decimal) Price {
	return Price{Decimal: d}
}

// MustPrice parses a literal such as "0.0038".
func MustPrice(s string) Price {
	return Price{Decimal: decimal.RequireFromString(s)}
}

func ZeroPrice() Price {
	return Price{Decimal: decimal.Zero}
}

// Plus returns p + o.
func (p Price) Plus(o Price) Price {
	return Price{Decimal: p.Decimal.Add(o.Decimal)}
}

// Same reports numeric equality regardless of scale ("0.0080" equals "0.008").
func (p Price) Same(o Price) bool {
	return p.Decimal.Equal(o.Decimal)
}

// Display renders the amount the way receipts show it, e.g. "0.008 ₿".
func (p Price) Display() string {
	return p.Decimal.String() + " " + Currency
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		p.Decimal = decimal.Zero
		return nil
	}
	return p.Decimal.UnmarshalJSON(data)
}

// SumPrices adds prices in order.
func SumPrices(prices ...Price) Price {
	total := ZeroPrice()
	for _, p := range prices {
		total = total.Plus(p)
	}
	return total
}
