package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OrderItem is a line item copied from the draft at submit time.
type OrderItem struct {
	ID          ID     `json:"id,omitempty"`
	MenuID      ID     `json:"menuId"`
	Description string `json:"description"`
	Price       Price  `json:"price"`
}

// Order is created by the order service and never mutated by the client.
type Order struct {
	ID          ID          `json:"id,omitempty"`
	FranchiseID ID          `json:"franchiseId"`
	StoreID     ID          `json:"storeId"`
	Date        *time.Time  `json:"date,omitempty"`
	Items       []OrderItem `json:"items"`
}

// Total is the sum of the order's line items.
func (o *Order) Total() Price {
	total := ZeroPrice()
	for _, item := range o.Items {
		total = total.Plus(item.Price)
	}
	return total
}

// OrderRequest is what the client sends to create an order.
type OrderRequest struct {
	FranchiseID ID          `json:"franchiseId"`
	StoreID     ID          `json:"storeId"`
	Items       []OrderItem `json:"items"`
}

// OrderResult pairs the created order with its receipt token.
type OrderResult struct {
	Order Order  `json:"order"`
	JWT   string `json:"jwt"`
}

// OrderPage is one page of a diner's order history.
type OrderPage struct {
	DinerID ID      `json:"dinerId"`
	Orders  []Order `json:"orders"`
	Page    int     `json:"page"`
	More    bool    `json:"more,omitempty"`
}

// Receipt is the opaque verification token bound to one order.
type Receipt struct {
	OrderID ID
	Token   string
}

// Claims decodes the token payload for display without checking its signature; the
// verification endpoint is the only authority on authenticity. ok is false when the
// token is not a decodable JWT, which is not an error.
func (r Receipt) Claims() (claims jwt.MapClaims, ok bool) {
	if r.Token == "" {
		return nil, false
	}
	claims = jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(r.Token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// Verification is the service's authenticity verdict for a receipt.
type Verification struct {
	Message string                 `json:"message"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Valid reports whether the service vouched for the receipt.
func (v *Verification) Valid() bool {
	return v != nil && v.Message == "valid"
}
