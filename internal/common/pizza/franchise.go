package pizza

import (
	"context"
	"net/http"
	"net/url"

	"pizza-storefront/internal/models"
)

// ListFranchises pages through the franchise directory.
func (c *Client) ListFranchises(ctx context.Context, filter models.FranchiseFilter) (*models.FranchisePage, error) {
	var out models.FranchisePage
	err := c.do(ctx, call{
		operation: "list_franchises",
		method:    http.MethodGet,
		url:       c.apiURL("/api/franchise", pageQuery(filter.Page, filter.Limit, filter.Name)),
		out:       &out,
		resource:  "franchise",
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUserFranchises returns the franchises a user administers.
func (c *Client) ListUserFranchises(ctx context.Context, userID models.ID) ([]models.Franchise, error) {
	var out []models.Franchise
	err := c.do(ctx, call{
		operation: "list_user_franchises",
		method:    http.MethodGet,
		url:       c.apiURL("/api/franchise/"+url.PathEscape(userID.String()), nil),
		out:       &out,
		resource:  "franchise",
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateFranchise(ctx context.Context, req models.NewFranchise) (*models.Franchise, error) {
	var out models.Franchise
	err := c.do(ctx, call{
		operation: "create_franchise",
		method:    http.MethodPost,
		url:       c.apiURL("/api/franchise", nil),
		body:      req,
		out:       &out,
		resource:  "franchise",
		field:     "name",
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFranchise closes a franchise and, server-side, all of its stores.
func (c *Client) DeleteFranchise(ctx context.Context, franchiseID models.ID) error {
	return c.do(ctx, call{
		operation: "delete_franchise",
		method:    http.MethodDelete,
		url:       c.apiURL("/api/franchise/"+url.PathEscape(franchiseID.String()), nil),
		resource:  "franchise",
	})
}

func (c *Client) CreateStore(ctx context.Context, req models.NewStore) (*models.Store, error) {
	var out models.Store
	err := c.do(ctx, call{
		operation: "create_store",
		method:    http.MethodPost,
		url:       c.apiURL("/api/franchise/"+url.PathEscape(req.FranchiseID.String())+"/store", nil),
		body:      req,
		out:       &out,
		resource:  "franchise",
		field:     "name",
	})
	if err != nil {
		return nil, err
	}
	if out.FranchiseID.IsZero() {
		out.FranchiseID = req.FranchiseID
	}
	return &out, nil
}

func (c *Client) DeleteStore(ctx context.Context, franchiseID, storeID models.ID) error {
	return c.do(ctx, call{
		operation: "delete_store",
		method:    http.MethodDelete,
		url: c.apiURL("/api/franchise/"+url.PathEscape(franchiseID.String())+
			"/store/"+url.PathEscape(storeID.String()), nil),
		resource: "store",
	})
}
