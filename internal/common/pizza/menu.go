package pizza

import (
	"context"
	"net/http"

	"pizza-storefront/internal/common/validation"
	"pizza-storefront/internal/models"
)

// ListMenu returns the menu in service order.
func (c *Client) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	var out []models.MenuItem
	err := c.do(ctx, call{
		operation: "list_menu",
		method:    http.MethodGet,
		url:       c.apiURL("/api/order/menu", nil),
		out:       &out,
		contract:  validation.MenuContract,
		resource:  "menu",
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
