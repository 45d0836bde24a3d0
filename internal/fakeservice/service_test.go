package fakeservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"pizza-storefront/internal/common/errors"
	commonhttp "pizza-storefront/internal/common/http"
	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/common/observability"
	"pizza-storefront/internal/common/pizza"
	"pizza-storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type tokenBox struct {
	mu    sync.Mutex
	token string
}

func (b *tokenBox) Token() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

func (b *tokenBox) set(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

func newHarness(t *testing.T) (*Service, *pizza.Client, *tokenBox) {
	t.Helper()
	log := logger.NewTestLogger(t)
	svc := New(log)
	server := httptest.NewServer(svc.Router())
	t.Cleanup(server.Close)

	tokens := &tokenBox{}
	hc := commonhttp.NewClientWith(server.Client(), observability.Nop())
	return svc, pizza.NewClient(pizza.Config{BaseURL: server.URL}, hc, tokens, log), tokens
}

func signIn(t *testing.T, client *pizza.Client, tokens *tokenBox, email, password string) *models.AuthResult {
	t.Helper()
	res, err := client.Login(context.Background(), models.Credentials{Email: email, Password: password})
	require.NoError(t, err)
	tokens.set(res.Token)
	return res
}

// ==========================
// Auth Tests
// ==========================

func TestLogin_SeedAccounts(t *testing.T) {
	tests := []struct {
		email    string
		password string
		name     string
		admin    bool
	}{
		{email: "d@jwt.com", password: "a", name: "Kai Chen"},
		{email: "f@jwt.com", password: "franchisee", name: "Jared Franchisee"},
		{email: "a@jwt.com", password: "admin", name: "Aaron Admin", admin: true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			_, client, tokens := newHarness(t)
			res := signIn(t, client, tokens, tt.email, tt.password)
			assert.Equal(t, tt.name, res.User.Name)
			assert.Equal(t, tt.admin, res.User.IsAdmin())
			assert.True(t, res.User.Has(models.RoleDiner))

			me, err := client.CurrentUser(context.Background())
			require.NoError(t, err)
			assert.Equal(t, res.User.ID, me.ID)
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	_, client, _ := newHarness(t)

	_, err := client.Login(context.Background(), models.Credentials{Email: "d@jwt.com", Password: "nope"})
	assert.True(t, errors.Is(err, errors.ErrCodeAuthenticationFailed))
}

func TestRegisterAndLogout(t *testing.T) {
	_, client, tokens := newHarness(t)

	res, err := client.Register(context.Background(), models.Registration{Name: "pizza diner", Email: "new@jwt.com", Password: "pw"})
	require.NoError(t, err)
	tokens.set(res.Token)

	require.NoError(t, client.Logout(context.Background()))
	me, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, me)

	_, err = client.Register(context.Background(), models.Registration{Name: "again", Email: "new@jwt.com", Password: "pw"})
	assert.True(t, errors.Is(err, errors.ErrCodeValidationFailed))
}

// ==========================
// Order Tests
// ==========================

func TestSubmitAndVerifyOrder(t *testing.T) {
	svc, client, tokens := newHarness(t)
	signIn(t, client, tokens, "d@jwt.com", "a")

	menu, err := client.ListMenu(context.Background())
	require.NoError(t, err)
	require.Len(t, menu, 2)

	draft := models.Draft{FranchiseID: "2", StoreID: "4", Items: menu}
	res, err := client.SubmitOrder(context.Background(), draft.OrderRequest())
	require.NoError(t, err)
	assert.Len(t, res.Order.Items, 2)
	assert.True(t, res.Order.Total().Same(models.MustPrice("0.008")))
	assert.NotEmpty(t, res.JWT)

	verdict, err := client.VerifyReceipt(context.Background(), models.Receipt{OrderID: res.Order.ID, Token: res.JWT})
	require.NoError(t, err)
	assert.True(t, verdict.Valid())
	assert.Contains(t, verdict.Payload, "order")

	verdict, err = client.VerifyReceipt(context.Background(), models.Receipt{OrderID: res.Order.ID, Token: res.JWT + "x"})
	require.NoError(t, err)
	assert.False(t, verdict.Valid())

	history, err := client.ListOrders(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.ID("3"), history.DinerID)
	assert.Len(t, history.Orders, 1)

	lehi, ok := svc.Franchises()[0].Store("4")
	require.True(t, ok)
	assert.Equal(t, "0.008 ₿", lehi.TotalRevenue.Display())
}

func TestSubmitOrder_InjectedFailure(t *testing.T) {
	svc, client, tokens := newHarness(t)
	signIn(t, client, tokens, "d@jwt.com", "a")
	svc.Fail(RouteSubmitOrder, http.StatusInternalServerError, 1)

	req := models.OrderRequest{FranchiseID: "2", StoreID: "4", Items: []models.OrderItem{{MenuID: "1", Description: "Veggie", Price: models.MustPrice("0.0038")}}}
	_, err := client.SubmitOrder(context.Background(), req)
	assert.True(t, errors.Is(err, errors.ErrCodeCheckoutFailed))

	_, err = client.SubmitOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, svc.Calls(RouteSubmitOrder))
}

// ==========================
// Franchise Tests
// ==========================

func TestListFranchises_FilterAndPaging(t *testing.T) {
	_, client, _ := newHarness(t)

	page, err := client.ListFranchises(context.Background(), models.FranchiseFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Franchises, 2)
	assert.True(t, page.More)
	assert.Equal(t, "LotaPizza", page.Franchises[0].Name)
	assert.Len(t, page.Franchises[0].Stores, 3)

	page, err = client.ListFranchises(context.Background(), models.FranchiseFilter{Page: 1, Limit: 10, Name: "corp"})
	require.NoError(t, err)
	require.Len(t, page.Franchises, 1)
	assert.Equal(t, "PizzaCorp", page.Franchises[0].Name)
	assert.False(t, page.More)
}

func TestFranchiseLifecycle(t *testing.T) {
	svc, client, tokens := newHarness(t)
	signIn(t, client, tokens, "a@jwt.com", "admin")
	ctx := context.Background()

	created, err := client.CreateFranchise(ctx, models.NewFranchise{Name: "pizzaPocket", Admins: []models.Admin{{Email: "d@jwt.com"}}})
	require.NoError(t, err)
	require.Len(t, created.Admins, 1)
	assert.Equal(t, models.ID("3"), created.Admins[0].ID)

	store, err := client.CreateStore(ctx, models.NewStore{FranchiseID: created.ID, Name: "Provo"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, store.FranchiseID)

	require.NoError(t, client.DeleteStore(ctx, created.ID, store.ID))
	err = client.DeleteStore(ctx, created.ID, store.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	require.NoError(t, client.DeleteFranchise(ctx, "2"))
	err = client.DeleteFranchise(ctx, "2")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	assert.Equal(t, 2, svc.Calls(RouteDeleteFranchise))

	names := []string{}
	for _, f := range svc.Franchises() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"PizzaCorp", "topSpot", "pizzaPocket"}, names)
}

func TestFranchiseeAccess(t *testing.T) {
	_, client, tokens := newHarness(t)
	res := signIn(t, client, tokens, "f@jwt.com", "franchisee")
	ctx := context.Background()

	mine, err := client.ListUserFranchises(ctx, res.User.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "LotaPizza", mine[0].Name)

	_, err = client.CreateStore(ctx, models.NewStore{FranchiseID: "3", Name: "Orem"})
	assert.True(t, errors.Is(err, errors.ErrCodeForbidden))

	err = client.DeleteFranchise(ctx, "2")
	assert.True(t, errors.Is(err, errors.ErrCodeForbidden))

	require.NoError(t, client.DeleteStore(ctx, "2", "6"))
}

// ==========================
// User Tests
// ==========================

func TestUserAdministration(t *testing.T) {
	_, client, tokens := newHarness(t)
	signIn(t, client, tokens, "a@jwt.com", "admin")
	ctx := context.Background()

	page, err := client.ListUsers(ctx, 1, 10, "")
	require.NoError(t, err)
	assert.Len(t, page.Users, 3)

	page, err = client.ListUsers(ctx, 1, 10, "kai")
	require.NoError(t, err)
	require.Len(t, page.Users, 1)

	require.NoError(t, client.DeleteUser(ctx, page.Users[0].ID))
	err = client.DeleteUser(ctx, page.Users[0].ID)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestUpdateUser(t *testing.T) {
	_, client, tokens := newHarness(t)
	res := signIn(t, client, tokens, "d@jwt.com", "a")

	name := "Kai C"
	updated, err := client.UpdateUser(context.Background(), res.User.ID, models.UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Kai C", updated.User.Name)
	assert.NotEqual(t, res.Token, updated.Token)
}
