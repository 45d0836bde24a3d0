package franchise

import (
	"context"
	"testing"

	"pizza-storefront/internal/common/errors"
	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/models"
	"pizza-storefront/internal/session"
	"pizza-storefront/internal/workflows/confirm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type mockService struct {
	mock.Mock
}

func (m *mockService) ListFranchises(ctx context.Context, filter models.FranchiseFilter) (*models.FranchisePage, error) {
	args := m.Called(ctx, filter)
	page, _ := args.Get(0).(*models.FranchisePage)
	return page, args.Error(1)
}

func (m *mockService) ListUserFranchises(ctx context.Context, userID models.ID) ([]models.Franchise, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]models.Franchise)
	return list, args.Error(1)
}

func (m *mockService) CreateFranchise(ctx context.Context, req models.NewFranchise) (*models.Franchise, error) {
	args := m.Called(ctx, req)
	f, _ := args.Get(0).(*models.Franchise)
	return f, args.Error(1)
}

func (m *mockService) CreateStore(ctx context.Context, req models.NewStore) (*models.Store, error) {
	args := m.Called(ctx, req)
	s, _ := args.Get(0).(*models.Store)
	return s, args.Error(1)
}

var (
	admin = &models.User{ID: "5", Name: "Aaron Admin", Email: "a@jwt.com", Roles: []models.Role{models.AdminRole()}}
	diner = &models.User{ID: "3", Name: "Kai Chen", Email: "d@jwt.com", Roles: []models.Role{models.DinerRole()}}
	owner = &models.User{ID: "4", Name: "Jared Franchisee", Email: "f@jwt.com", Roles: []models.Role{models.DinerRole(), models.FranchiseeRole("2")}}
)

func seedFranchises() []models.Franchise {
	return []models.Franchise{
		{
			ID:   "2",
			Name: "LotaPizza",
			Stores: []models.Store{
				{ID: "4", Name: "Lehi", TotalRevenue: models.MustPrice("0.0038")},
				{ID: "5", Name: "Springville", TotalRevenue: models.MustPrice("0.0042")},
				{ID: "6", Name: "American Fork", TotalRevenue: models.ZeroPrice()},
			},
		},
		{ID: "3", Name: "PizzaCorp", Stores: []models.Store{{ID: "7", Name: "Spanish Fork", TotalRevenue: models.ZeroPrice()}}},
		{ID: "4", Name: "topSpot", Stores: []models.Store{}},
	}
}

func newDashboard(t *testing.T, user *models.User) (*Dashboard, *mockService) {
	log := logger.NewTestLogger(t)
	sessions := session.NewManager(session.NewMemoryStore(), log)
	if user != nil {
		require.NoError(t, sessions.Set(context.Background(), "tttttt", user))
	}
	svc := &mockService{}
	return NewDashboard(ServiceDependencies{Service: svc, Identity: sessions, Logger: log}, DefaultConfig()), svc
}

// ==========================
// Directory Tests
// ==========================

func TestDirectory_AdminLoadsFirstPage(t *testing.T) {
	d, svc := newDashboard(t, admin)
	want := models.FranchiseFilter{Page: 1, Limit: 10, Name: "Lota"}
	svc.On("ListFranchises", mock.Anything, want).
		Return(&models.FranchisePage{Franchises: seedFranchises()[:1], More: true}, nil).Once()

	listing, err := d.Directory(context.Background(), models.FranchiseFilter{Name: "Lota"})
	require.NoError(t, err)
	assert.Len(t, listing.Franchises, 1)
	assert.True(t, listing.More)
	assert.False(t, listing.Owned)
	assert.Equal(t, want, listing.Filter)
	svc.AssertExpectations(t)
}

func TestDirectory_RoleChecks(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		code errors.ErrorCode
	}{
		{name: "anonymous", user: nil, code: errors.ErrCodeAuthenticationFailed},
		{name: "diner", user: diner, code: errors.ErrCodeForbidden},
		{name: "franchisee", user: owner, code: errors.ErrCodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, svc := newDashboard(t, tt.user)
			_, err := d.Directory(context.Background(), models.FranchiseFilter{})
			assert.True(t, errors.Is(err, tt.code))
			svc.AssertNotCalled(t, "ListFranchises", mock.Anything, mock.Anything)
		})
	}
}

func TestMine_FranchiseeView(t *testing.T) {
	d, svc := newDashboard(t, owner)
	svc.On("ListUserFranchises", mock.Anything, models.ID("4")).Return(seedFranchises()[:1], nil).Once()

	listing, err := d.Mine(context.Background())
	require.NoError(t, err)
	assert.True(t, listing.Owned)
	require.Len(t, listing.Franchises, 1)
	assert.Equal(t, "0.008 ₿", Revenue(listing.Franchises[0]).Display())
}

func TestMine_DinerWithoutFranchise(t *testing.T) {
	d, svc := newDashboard(t, diner)
	svc.On("ListUserFranchises", mock.Anything, models.ID("3")).Return([]models.Franchise{}, nil).Once()

	listing, err := d.Mine(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listing.Franchises)
}

// ==========================
// Create Tests
// ==========================

func TestCreateFranchise(t *testing.T) {
	d, svc := newDashboard(t, admin)
	req := models.NewFranchise{Name: "pizzaPocket", Admins: []models.Admin{{Email: "f@jwt.com"}}}
	svc.On("CreateFranchise", mock.Anything, req).
		Return(&models.Franchise{ID: "1", Name: "pizzaPocket", Admins: []models.Admin{{ID: "4", Name: "pizza franchisee", Email: "f@jwt.com"}}}, nil).Once()

	created, err := d.CreateFranchise(context.Background(), " pizzaPocket ", "f@jwt.com")
	require.NoError(t, err)
	assert.Equal(t, models.ID("1"), created.ID)
	svc.AssertExpectations(t)
}

func TestCreateFranchise_Validation(t *testing.T) {
	tests := []struct {
		name      string
		franchise string
		email     string
		field     string
	}{
		{name: "missing name", franchise: "  ", email: "f@jwt.com", field: "name"},
		{name: "missing email", franchise: "pizzaPocket", email: "", field: "adminEmail"},
		{name: "bad email", franchise: "pizzaPocket", email: "franchisee", field: "adminEmail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, svc := newDashboard(t, admin)
			_, err := d.CreateFranchise(context.Background(), tt.franchise, tt.email)
			require.Error(t, err)
			se, ok := errors.AsStandard(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeValidationFailed, se.Code)
			assert.Equal(t, tt.field, se.Field)
			svc.AssertNotCalled(t, "CreateFranchise", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateStore_AddsToListing(t *testing.T) {
	d, svc := newDashboard(t, owner)
	svc.On("ListUserFranchises", mock.Anything, models.ID("4")).Return(seedFranchises()[:1], nil).Once()
	svc.On("CreateStore", mock.Anything, models.NewStore{FranchiseID: "2", Name: "Provo"}).
		Return(&models.Store{ID: "8", Name: "Provo", TotalRevenue: models.ZeroPrice()}, nil).Once()

	_, err := d.Mine(context.Background())
	require.NoError(t, err)

	store, err := d.CreateStore(context.Background(), "2", "Provo")
	require.NoError(t, err)
	assert.Equal(t, models.ID("2"), store.FranchiseID)

	listing := d.Listing()
	assert.Len(t, listing.Franchises[0].Stores, 4)
}

func TestCreateStore_ForeignFranchise(t *testing.T) {
	d, svc := newDashboard(t, owner)

	_, err := d.CreateStore(context.Background(), "3", "Provo")
	assert.True(t, errors.Is(err, errors.ErrCodeForbidden))
	svc.AssertNotCalled(t, "CreateStore", mock.Anything, mock.Anything)
}

// ==========================
// Reconciliation Tests
// ==========================

func TestTargetsAndReconciliation(t *testing.T) {
	d, svc := newDashboard(t, admin)
	svc.On("ListFranchises", mock.Anything, mock.Anything).
		Return(&models.FranchisePage{Franchises: seedFranchises()}, nil).Once()
	_, err := d.Directory(context.Background(), models.FranchiseFilter{})
	require.NoError(t, err)

	storeTarget, err := d.CloseStoreTarget("5")
	require.NoError(t, err)
	assert.Equal(t, confirm.Target{Kind: confirm.KindStore, ID: "5", Name: "Springville", ParentID: "2", ParentName: "LotaPizza"}, storeTarget)

	d.Removed(storeTarget)
	listing := d.Listing()
	require.Len(t, listing.Franchises, 3)
	assert.Len(t, listing.Franchises[0].Stores, 2)

	franchiseTarget, err := d.CloseFranchiseTarget("2")
	require.NoError(t, err)
	d.Removed(franchiseTarget)

	listing = d.Listing()
	require.Len(t, listing.Franchises, 2)
	assert.Equal(t, "PizzaCorp", listing.Franchises[0].Name)
	assert.Equal(t, "topSpot", listing.Franchises[1].Name)

	_, err = d.CloseFranchiseTarget("2")
	assert.True(t, errors.Is(err, errors.ErrCodeMissingTarget))
}
