// internal/workflows/franchise/dashboard.go
package franchise

import (
	"context"
	"strings"
	"sync"

	"pizza-storefront/internal/common/errors"
	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/common/validation"
	"pizza-storefront/internal/models"
	"pizza-storefront/internal/workflows/confirm"
)

const Workflow = "franchise"

// Dashboard backs the admin franchise directory and the franchisee's own franchise view.
// It keeps the last listing so removals confirmed elsewhere can be reconciled locally.
type Dashboard struct {
	config   *Config
	service  Service
	identity Identity
	logger   logger.Logger

	mu      sync.Mutex
	listing Listing
}

func NewDashboard(deps ServiceDependencies, config *Config) *Dashboard {
	if config == nil {
		config = DefaultConfig()
	}
	return &Dashboard{
		config:   config,
		service:  deps.Service,
		identity: deps.Identity,
		logger:   deps.Logger.WithFields(map[string]interface{}{"workflow": Workflow}),
	}
}

func (d *Dashboard) requireAdmin() error {
	if !d.identity.IsAuthenticated() {
		return errors.NewAuthenticationFailedError("sign in to manage franchises")
	}
	if !d.identity.User().IsAdmin() {
		return errors.NewForbiddenError("only admins can manage franchises")
	}
	return nil
}

// Directory loads one page of all franchises for an admin. Page 0 means the first
// page; an empty name matches every franchise.
func (d *Dashboard) Directory(ctx context.Context, filter models.FranchiseFilter) (Listing, error) {
	if err := d.requireAdmin(); err != nil {
		return Listing{}, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = d.config.PageSize
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	page, err := d.service.ListFranchises(ctx, filter)
	if err != nil {
		return Listing{}, err
	}

	listing := Listing{Franchises: page.Franchises, Filter: filter, More: page.More}
	d.store(listing)

	d.logger.Debug("Franchise directory loaded", map[string]interface{}{
		"page":       filter.Page,
		"name":       filter.Name,
		"franchises": len(page.Franchises),
		"more":       page.More,
	})
	return listing, nil
}

// Mine loads the franchises the signed-in user administers. A diner without a
// franchise gets an empty listing, not an error.
func (d *Dashboard) Mine(ctx context.Context) (Listing, error) {
	if !d.identity.IsAuthenticated() {
		return Listing{}, errors.NewAuthenticationFailedError("sign in to see your franchise")
	}
	user := d.identity.User()

	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	franchises, err := d.service.ListUserFranchises(ctx, user.ID)
	if err != nil {
		return Listing{}, err
	}

	listing := Listing{Franchises: franchises, Owned: true}
	d.store(listing)
	return listing, nil
}

// CreateFranchise creates a franchise administered by the user with adminEmail.
func (d *Dashboard) CreateFranchise(ctx context.Context, name, adminEmail string) (*models.Franchise, error) {
	if err := d.requireAdmin(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	adminEmail = strings.TrimSpace(adminEmail)

	result := validation.ValidateInput(map[string]interface{}{
		"name":       name,
		"adminEmail": adminEmail,
	}, createFranchiseSchema)
	if err := result.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	created, err := d.service.CreateFranchise(ctx, models.NewFranchise{
		Name:   name,
		Admins: []models.Admin{{Email: adminEmail}},
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("Franchise created", map[string]interface{}{
		"franchiseId": created.ID.String(),
		"name":        created.Name,
	})
	return created, nil
}

// CreateStore opens a store in franchiseID. Admins may do so for any franchise,
// franchisees only for their own.
func (d *Dashboard) CreateStore(ctx context.Context, franchiseID models.ID, name string) (*models.Store, error) {
	if !d.identity.IsAuthenticated() {
		return nil, errors.NewAuthenticationFailedError("sign in to create a store")
	}
	if franchiseID.IsZero() {
		return nil, errors.NewMissingTargetError("a franchise must be selected")
	}
	if !d.identity.User().CanManageFranchise(franchiseID) {
		return nil, errors.NewForbiddenError("not an administrator of franchise " + franchiseID.String())
	}

	name = strings.TrimSpace(name)
	if err := validation.ValidateInput(map[string]interface{}{"name": name}, createStoreSchema).Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	store, err := d.service.CreateStore(ctx, models.NewStore{FranchiseID: franchiseID, Name: name})
	if err != nil {
		return nil, err
	}
	if store.FranchiseID.IsZero() {
		store.FranchiseID = franchiseID
	}

	d.mu.Lock()
	for i := range d.listing.Franchises {
		if d.listing.Franchises[i].ID == franchiseID {
			d.listing.Franchises[i].Stores = append(d.listing.Franchises[i].Stores, *store)
		}
	}
	d.mu.Unlock()

	d.logger.Info("Store created", map[string]interface{}{
		"franchiseId": franchiseID.String(),
		"storeId":     store.ID.String(),
		"name":        store.Name,
	})
	return store, nil
}

// Listing returns the last loaded listing.
func (d *Dashboard) Listing() Listing {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.listing
	out.Franchises = append([]models.Franchise(nil), d.listing.Franchises...)
	return out
}

func (d *Dashboard) store(l Listing) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listing = l
}

// CloseFranchiseTarget resolves a listed franchise into a confirmation target.
func (d *Dashboard) CloseFranchiseTarget(franchiseID models.ID) (confirm.Target, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range d.listing.Franchises {
		if f.ID == franchiseID {
			return confirm.Target{Kind: confirm.KindFranchise, ID: f.ID, Name: f.Name}, nil
		}
	}
	return confirm.Target{}, errors.NewMissingTargetError("franchise " + franchiseID.String() + " is not listed")
}

// CloseStoreTarget resolves a listed store into a confirmation target.
func (d *Dashboard) CloseStoreTarget(storeID models.ID) (confirm.Target, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.listing.Franchises {
		f := &d.listing.Franchises[i]
		if s, ok := f.Store(storeID); ok {
			return confirm.Target{
				Kind:       confirm.KindStore,
				ID:         s.ID,
				Name:       s.Name,
				ParentID:   f.ID,
				ParentName: f.Name,
			}, nil
		}
	}
	return confirm.Target{}, errors.NewMissingTargetError("store " + storeID.String() + " is not listed")
}

// Removed drops a confirmed franchise or store removal from the listing.
func (d *Dashboard) Removed(target confirm.Target) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch target.Kind {
	case confirm.KindFranchise:
		d.listing.Franchises = models.WithoutFranchise(d.listing.Franchises, target.ID)
	case confirm.KindStore:
		for i, f := range d.listing.Franchises {
			if f.ID == target.ParentID {
				d.listing.Franchises[i] = f.WithoutStore(target.ID)
			}
		}
	}
}
