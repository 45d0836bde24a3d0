package profile

import (
	"context"

	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/common/validation"
	"pizza-storefront/internal/models"
)

// Service is the user and order-history side of the pizza service.
type Service interface {
	ListOrders(ctx context.Context, page int) (*models.OrderPage, error)
	UpdateUser(ctx context.Context, userID models.ID, update models.UserUpdate) (*models.AuthResult, error)
	ListUsers(ctx context.Context, page, limit int, name string) (*models.UserPage, error)
}

// Sessions is the part of the session manager the profile writes back to.
type Sessions interface {
	IsAuthenticated() bool
	User() *models.User
	Token() string
	Set(ctx context.Context, token string, user *models.User) error
}

type ServiceDependencies struct {
	Service  Service
	Sessions Sessions
	Logger   logger.Logger
}

// History is one page of the diner's past orders.
type History struct {
	Orders []models.Order
	Page   int
	More   bool
}

// UserListing is the admin user directory as last loaded.
type UserListing struct {
	Users []models.User
	Page  int
	Name  string
	More  bool
}

var updateSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"name":     {Type: "string", MaxLength: validation.IntPtr(64)},
		"email":    {Type: "string", Format: "email"},
		"password": {Type: "string", MinLength: validation.IntPtr(1)},
	},
}
