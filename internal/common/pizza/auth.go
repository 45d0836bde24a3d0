package pizza

import (
	"context"
	"net/http"
	"net/url"

	"pizza-storefront/internal/common/errors"
	"pizza-storefront/internal/common/validation"
	"pizza-storefront/internal/models"
)

// Register creates a diner account and signs it in.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	var out models.AuthResult
	err := c.do(ctx, call{
		operation: "register",
		method:    http.MethodPost,
		url:       c.apiURL("/api/auth", nil),
		body:      reg,
		out:       &out,
		contract:  validation.AuthResponseContract,
		field:     "email",
	})
	if err != nil {
		return nil, err
	}
	out.User.Normalize()
	return &out, nil
}

// Login authenticates with email and password. Wrong credentials yield AUTHENTICATION_FAILED.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	var out models.AuthResult
	err := c.do(ctx, call{
		operation: "login",
		method:    http.MethodPut,
		url:       c.apiURL("/api/auth", nil),
		body:      creds,
		out:       &out,
		contract:  validation.AuthResponseContract,
		field:     "email",
	})
	if err != nil {
		return nil, err
	}
	out.User.Normalize()
	return &out, nil
}

// Logout invalidates the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, call{
		operation: "logout",
		method:    http.MethodDelete,
		url:       c.apiURL("/api/auth", nil),
	})
}

// CurrentUser resolves the session token to a user. A rejected or unknown token yields
// (nil, nil); only transport failures are errors.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var out *models.User
	err := c.do(ctx, call{
		operation: "current_user",
		method:    http.MethodGet,
		url:       c.apiURL("/api/user/me", nil),
		out:       &out,
		resource:  "user",
	})
	if err != nil {
		if errors.Is(err, errors.ErrCodeAuthenticationFailed) || errors.Is(err, errors.ErrCodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if out == nil || out.ID.IsZero() {
		return nil, nil
	}
	out.Normalize()
	return out, nil
}

// UpdateUser applies a partial change and returns the user with a refreshed token.
func (c *Client) UpdateUser(ctx context.Context, userID models.ID, update models.UserUpdate) (*models.AuthResult, error) {
	var out models.AuthResult
	err := c.do(ctx, call{
		operation: "update_user",
		method:    http.MethodPut,
		url:       c.apiURL("/api/user/"+url.PathEscape(userID.String()), nil),
		body:      update,
		out:       &out,
		contract:  validation.AuthResponseContract,
		resource:  "user",
	})
	if err != nil {
		return nil, err
	}
	out.User.Normalize()
	return &out, nil
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, userID models.ID) error {
	return c.do(ctx, call{
		operation: "delete_user",
		method:    http.MethodDelete,
		url:       c.apiURL("/api/user/"+url.PathEscape(userID.String()), nil),
		resource:  "user",
	})
}

// ListUsers pages through all users; admin only.
func (c *Client) ListUsers(ctx context.Context, page, limit int, name string) (*models.UserPage, error) {
	var out models.UserPage
	err := c.do(ctx, call{
		operation: "list_users",
		method:    http.MethodGet,
		url:       c.apiURL("/api/user", pageQuery(page, limit, name)),
		out:       &out,
		resource:  "user",
	})
	if err != nil {
		return nil, err
	}
	for i := range out.Users {
		out.Users[i].Normalize()
	}
	return &out, nil
}
