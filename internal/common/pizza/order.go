package pizza

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"pizza-storefront/internal/common/validation"
	"pizza-storefront/internal/models"
)

// SubmitOrder creates an order. Any failure short of an access error is CHECKOUT_FAILED,
// except an accepted order whose reply cannot be read, which is ORDER_STATUS_UNKNOWN.
func (c *Client) SubmitOrder(ctx context.Context, req models.OrderRequest) (*models.OrderResult, error) {
	var out models.OrderResult
	err := c.do(ctx, call{
		operation: "submit_order",
		method:    http.MethodPost,
		url:       c.apiURL("/api/order", nil),
		body:      req,
		out:       &out,
		contract:  validation.OrderResponseContract,
		mode:      checkout,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns one page of the signed-in diner's order history.
func (c *Client) ListOrders(ctx context.Context, page int) (*models.OrderPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprintf("%d", page))
	}
	var out models.OrderPage
	err := c.do(ctx, call{
		operation: "list_orders",
		method:    http.MethodGet,
		url:       c.apiURL("/api/order", q),
		out:       &out,
		resource:  "order",
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type verifyRequest struct {
	JWT string `json:"jwt"`
}

// VerifyReceipt asks the factory whether a receipt is authentic. The verdict is returned
// as given; failed exchanges are VERIFICATION_FAILED.
func (c *Client) VerifyReceipt(ctx context.Context, receipt models.Receipt) (*models.Verification, error) {
	var out models.Verification
	err := c.do(ctx, call{
		operation: "verify_receipt",
		method:    http.MethodPost,
		url:       c.factoryURL + "/api/order/verify",
		body:      verifyRequest{JWT: receipt.Token},
		out:       &out,
		mode:      verification,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
