package authgate

import (
	"context"
	"testing"

	"pizza-storefront/internal/common/errors"
	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/models"
	"pizza-storefront/internal/navigation"
	"pizza-storefront/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	args := m.Called(ctx, creds)
	res, _ := args.Get(0).(*models.AuthResult)
	return res, args.Error(1)
}

func (m *mockAuthenticator) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	args := m.Called(ctx, reg)
	res, _ := args.Get(0).(*models.AuthResult)
	return res, args.Error(1)
}

func (m *mockAuthenticator) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fixture struct {
	gate     *Gate
	auth     *mockAuthenticator
	sessions *session.Manager
	store    *session.MemoryStore
	nav      *navigation.Stack
}

func newFixture(t *testing.T) *fixture {
	log := logger.NewTestLogger(t)
	store := session.NewMemoryStore()
	sessions := session.NewManager(store, log)
	nav := navigation.NewStack()
	auth := &mockAuthenticator{}
	return &fixture{
		gate:     NewGate(auth, sessions, nav, log),
		auth:     auth,
		sessions: sessions,
		store:    store,
		nav:      nav,
	}
}

func kaiResult() *models.AuthResult {
	return &models.AuthResult{
		User:  models.User{ID: "3", Name: "Kai Chen", Email: "d@jwt.com", Roles: []models.Role{models.DinerRole()}},
		Token: "abcdef",
	}
}

func testDraft() models.Draft {
	return models.Draft{
		FranchiseID: "2",
		StoreID:     "4",
		Items: []models.MenuItem{
			{ID: "1", Title: "Veggie", Price: models.MustPrice("0.0038")},
			{ID: "2", Title: "Pepperoni", Price: models.MustPrice("0.0042")},
		},
	}
}

// ==========================
// State Machine Tests
// ==========================

func TestGate_CheckoutWhileAnonymous_ResumesAfterLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.nav.Push(navigation.Menu, nil)

	resumed := f.gate.Require(ctx, CheckoutIntent(testDraft()))
	assert.False(t, resumed)
	assert.Equal(t, PendingIntent, f.gate.State())
	assert.Equal(t, navigation.Login, f.nav.Current().Screen)

	f.auth.On("Login", ctx, models.Credentials{Email: "d@jwt.com", Password: "a"}).Return(kaiResult(), nil)

	out, err := f.gate.Login(ctx, "d@jwt.com", "a")
	require.NoError(t, err)
	require.NotNil(t, out.Resumed)
	assert.Equal(t, "checkout", out.Resumed.Action)
	assert.Equal(t, Authenticated, f.gate.State())

	assert.Equal(t, []navigation.Screen{navigation.Home, navigation.Menu, navigation.Payment}, f.nav.Trail())
	draft, ok := navigation.StateOf[models.Draft](f.nav.Current())
	require.True(t, ok)
	assert.Equal(t, testDraft(), draft)
	assert.True(t, draft.Total().Same(models.MustPrice("0.0080")))

	_, pending := f.gate.Pending()
	assert.False(t, pending)
	persisted, _ := f.store.Load(ctx)
	assert.Equal(t, "abcdef", persisted)
}

func TestGate_RegisterFromLoginScreen_ResumesIntent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.nav.Push(navigation.Menu, nil)
	f.gate.Require(ctx, CheckoutIntent(testDraft()))
	f.nav.Push(navigation.Register, nil)

	res := kaiResult()
	res.User.Name = "New Diner"
	f.auth.On("Register", ctx, models.Registration{Name: "New Diner", Email: "new@jwt.com", Password: "pw"}).Return(res, nil)

	out, err := f.gate.Register(ctx, " New Diner ", "new@jwt.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, out.Resumed)
	assert.Equal(t, []navigation.Screen{navigation.Home, navigation.Menu, navigation.Payment}, f.nav.Trail())
}

func TestGate_LoginWithoutIntent_LandsHome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.nav.Push(navigation.Login, nil)
	f.auth.On("Login", ctx, mock.Anything).Return(kaiResult(), nil)

	out, err := f.gate.Login(ctx, "d@jwt.com", "a")
	require.NoError(t, err)
	assert.Nil(t, out.Resumed)
	assert.Equal(t, navigation.Home, out.Landing.Screen)
	assert.Equal(t, 1, f.nav.Depth())
	assert.Equal(t, "Kai Chen", out.User.Name)
}

func TestGate_RequireWhenAuthenticated_RunsImmediately(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.sessions.Set(ctx, "abcdef", &kaiResult().User))
	assert.Equal(t, Authenticated, f.gate.Restore())

	assert.True(t, f.gate.Require(ctx, CheckoutIntent(testDraft())))
	assert.Equal(t, navigation.Payment, f.nav.Current().Screen)
}

func TestGate_RepeatedRequireDoesNotStackLoginScreens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gate.Require(ctx, CheckoutIntent(testDraft()))
	f.gate.Require(ctx, CheckoutIntent(models.Draft{StoreID: "5"}))

	assert.Equal(t, []navigation.Screen{navigation.Home, navigation.Login}, f.nav.Trail())
	intent, ok := f.gate.Pending()
	require.True(t, ok)
	draft, _ := intent.State.(models.Draft)
	assert.Equal(t, models.ID("5"), draft.StoreID)
}

// ==========================
// Failure Tests
// ==========================

func TestGate_FailedLoginLeavesStateUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		authErr  error
		wantCode errors.ErrorCode
		callsSvc bool
	}{
		{
			name:     "wrong password",
			email:    "d@jwt.com",
			password: "nope",
			authErr:  errors.NewAuthenticationFailedError("401"),
			wantCode: errors.ErrCodeAuthenticationFailed,
			callsSvc: true,
		},
		{
			name:     "malformed email",
			email:    "d@jwt",
			password: "a",
			wantCode: errors.ErrCodeValidationFailed,
		},
		{
			name:     "missing password",
			email:    "d@jwt.com",
			wantCode: errors.ErrCodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			f.gate.Require(ctx, CheckoutIntent(testDraft()))
			trail := f.nav.Trail()

			if tt.callsSvc {
				f.auth.On("Login", ctx, mock.Anything).Return(nil, tt.authErr)
			}

			out, err := f.gate.Login(ctx, tt.email, tt.password)
			assert.Nil(t, out)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			assert.Equal(t, PendingIntent, f.gate.State())
			assert.Equal(t, trail, f.nav.Trail())
			assert.Empty(t, f.sessions.Token())

			_, pending := f.gate.Pending()
			assert.True(t, pending)
			if !tt.callsSvc {
				f.auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestGate_ValidationErrorNamesField(t *testing.T) {
	f := newFixture(t)
	_, err := f.gate.Register(context.Background(), "", "x@jwt.com", "pw")

	stdErr, ok := errors.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, "name", stdErr.Field)
}

// ==========================
// Logout Tests
// ==========================

func TestGate_Logout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.auth.On("Login", ctx, mock.Anything).Return(kaiResult(), nil)
	_, err := f.gate.Login(ctx, "d@jwt.com", "a")
	require.NoError(t, err)

	f.auth.On("Logout", ctx).Return(errors.NewServiceUnavailableError("logout", assert.AnError))

	landing := f.gate.Logout(ctx)
	assert.Equal(t, navigation.Home, landing.Screen)
	assert.Equal(t, Anonymous, f.gate.State())
	assert.Empty(t, f.sessions.Token())
	persisted, _ := f.store.Load(ctx)
	assert.Empty(t, persisted)
	f.auth.AssertExpectations(t)
}

func TestGate_LogoutDropsPendingIntent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gate.Require(ctx, CheckoutIntent(testDraft()))

	f.gate.Logout(ctx)

	_, pending := f.gate.Pending()
	assert.False(t, pending)
	assert.Equal(t, Anonymous, f.gate.State())
	f.auth.AssertNotCalled(t, "Logout", mock.Anything)
}

func TestGate_Abandon(t *testing.T) {
	f := newFixture(t)
	f.gate.Require(context.Background(), CheckoutIntent(testDraft()))
	f.gate.Abandon()

	assert.Equal(t, Anonymous, f.gate.State())
	_, pending := f.gate.Pending()
	assert.False(t, pending)
}
