package franchise

import (
	"context"

	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/common/validation"
	"pizza-storefront/internal/models"
)

// Service is the franchise side of the pizza service.
type Service interface {
	ListFranchises(ctx context.Context, filter models.FranchiseFilter) (*models.FranchisePage, error)
	ListUserFranchises(ctx context.Context, userID models.ID) ([]models.Franchise, error)
	CreateFranchise(ctx context.Context, req models.NewFranchise) (*models.Franchise, error)
	CreateStore(ctx context.Context, req models.NewStore) (*models.Store, error)
}

type Identity interface {
	IsAuthenticated() bool
	User() *models.User
}

type ServiceDependencies struct {
	Service  Service
	Identity Identity
	Logger   logger.Logger
}

// Listing is what the dashboard currently shows.
type Listing struct {
	Franchises []models.Franchise
	Filter     models.FranchiseFilter
	More       bool
	// Owned is set for the franchisee view, unset for the admin directory.
	Owned bool
}

// Revenue sums the revenue of every store in f.
func Revenue(f models.Franchise) models.Price {
	prices := make([]models.Price, len(f.Stores))
	for i, s := range f.Stores {
		prices[i] = s.TotalRevenue
	}
	return models.SumPrices(prices...)
}

var createFranchiseSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"name":       {Type: "string", MinLength: validation.IntPtr(1), MaxLength: validation.IntPtr(64)},
		"adminEmail": {Type: "string", Format: "email"},
	},
	Required: []string{"name", "adminEmail"},
}

var createStoreSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"name": {Type: "string", MinLength: validation.IntPtr(1), MaxLength: validation.IntPtr(64)},
	},
	Required: []string{"name"},
}
