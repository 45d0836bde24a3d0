// internal/storefront/app.go
package storefront

import (
	"context"
	"strings"
	"sync"

	"pizza-storefront/internal/common/errors"
	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/journal"
	"pizza-storefront/internal/models"
	"pizza-storefront/internal/navigation"
	"pizza-storefront/internal/session"
	"pizza-storefront/internal/workflows/authgate"
	"pizza-storefront/internal/workflows/cart"
	"pizza-storefront/internal/workflows/checkout"
	"pizza-storefront/internal/workflows/confirm"
	"pizza-storefront/internal/workflows/franchise"
	"pizza-storefront/internal/workflows/profile"
)

const Component = "storefront"

// Service is everything the storefront asks of the pizza service.
type Service interface {
	authgate.Authenticator
	checkout.OrderService
	confirm.Deleter
	franchise.Service
	profile.Service
	ListMenu(ctx context.Context) ([]models.MenuItem, error)
	CurrentUser(ctx context.Context) (*models.User, error)
}

// Journal records orders and lists them back for the diner dashboard.
type Journal interface {
	checkout.Journal
	Recent(ctx context.Context, dinerID models.ID, limit int) ([]journal.Entry, error)
}

type Dependencies struct {
	Service  Service
	Sessions *session.Manager
	Journal  Journal
	Logger   logger.Logger
}

// View is what a screen shows after an action: where the user is, the rendered lines
// and at most one notice.
type View struct {
	Screen     navigation.Screen
	Breadcrumb string
	Lines      []string
	Notice     *errors.Notice
}

// App is the headless storefront. Every operation returns the resulting View; failures
// come back as the View's notice and never leave the app in a broken state.
type App struct {
	config   *Config
	service  Service
	sessions *session.Manager
	journal  Journal
	nav      *navigation.Stack
	reporter *errors.Reporter
	logger   logger.Logger

	cart       *cart.Builder
	gate       *authgate.Gate
	checkout   *checkout.Controller
	confirm    *confirm.Confirmator
	franchises *franchise.Dashboard
	profile    *profile.Profile

	mu       sync.Mutex
	menu     []models.MenuItem
	stores   []models.Franchise
	history  profile.History
	receipts []journal.Entry
	verified *checkout.VerifyResult
}

func New(deps Dependencies, cfg *Config) *App {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if deps.Journal == nil {
		deps.Journal = journal.Nop{}
	}
	log := deps.Logger.WithFields(map[string]interface{}{"component": Component})
	nav := navigation.NewStack()

	a := &App{
		config:   cfg,
		service:  deps.Service,
		sessions: deps.Sessions,
		journal:  deps.Journal,
		nav:      nav,
		reporter: errors.NewReporter(log),
		logger:   log,
		cart:     cart.NewBuilder(deps.Logger),
		gate:     authgate.NewGate(deps.Service, deps.Sessions, nav, deps.Logger),
		checkout: checkout.NewController(checkout.ServiceDependencies{
			Orders:   deps.Service,
			Identity: deps.Sessions,
			Journal:  deps.Journal,
			Logger:   deps.Logger,
		}, cfg.Checkout),
		confirm: confirm.NewConfirmator(confirm.ServiceDependencies{
			Deleter: deps.Service,
			Nav:     nav,
			Logger:  deps.Logger,
		}, cfg.Confirm),
		franchises: franchise.NewDashboard(franchise.ServiceDependencies{
			Service:  deps.Service,
			Identity: deps.Sessions,
			Logger:   deps.Logger,
		}, cfg.Franchise),
		profile: profile.NewProfile(profile.ServiceDependencies{
			Service:  deps.Service,
			Sessions: deps.Sessions,
			Logger:   deps.Logger,
		}, cfg.PageSize, cfg.Timeout),
	}
	a.confirm.Subscribe(a.franchises)
	a.confirm.Subscribe(a.profile)
	a.confirm.Subscribe(a)
	return a
}

// Current renders the screen the user is on.
func (a *App) Current() View {
	return a.view(nil)
}

func (a *App) view(n *errors.Notice) View {
	entry := a.nav.Current()
	return View{
		Screen:     entry.Screen,
		Breadcrumb: a.nav.Breadcrumb(),
		Lines:      a.render(entry),
		Notice:     n,
	}
}

// fail reports err and renders where the user ends up. FORBIDDEN sends the user back to
// the landing screen.
func (a *App) fail(action string, err error) View {
	n := a.reporter.Report(action, err)
	if n != nil && n.Surface == errors.SurfaceRedirect {
		a.nav.Reset(navigation.DefaultLanding)
	}
	return a.view(n)
}

// enter shows screen, replacing it when it is already current so reloading a list does
// not stack it twice.
func (a *App) enter(screen navigation.Screen, state interface{}) {
	if a.nav.Current().Screen == screen {
		a.nav.Replace(screen, state)
		return
	}
	a.nav.Push(screen, state)
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.Timeout)
}

// ==========================
// Session
// ==========================

// Start restores a persisted session and shows the landing screen. A service that
// cannot be reached leaves the user signed out with a notice.
func (a *App) Start(ctx context.Context) View {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	user, err := a.sessions.Init(ctx, a.service)
	a.gate.Restore()
	a.nav.Reset(navigation.DefaultLanding)
	if err != nil {
		return a.fail("start", err)
	}
	if user != nil {
		a.logger.Info("Welcome back", map[string]interface{}{"userId": user.ID.String()})
	}
	return a.view(nil)
}

func (a *App) Login(ctx context.Context, email, password string) View {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if _, err := a.gate.Login(ctx, email, password); err != nil {
		return a.fail("login", err)
	}
	return a.view(nil)
}

func (a *App) Register(ctx context.Context, name, email, password string) View {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if _, err := a.gate.Register(ctx, name, email, password); err != nil {
		return a.fail("register", err)
	}
	return a.view(nil)
}

// Logout signs out and forgets everything loaded for the previous user. The cart is
// not tied to a user and survives.
func (a *App) Logout(ctx context.Context) View {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	a.gate.Logout(ctx)
	a.mu.Lock()
	a.history = profile.History{}
	a.receipts = nil
	a.verified = nil
	a.mu.Unlock()
	return a.view(nil)
}

// ==========================
// Ordering
// ==========================

// OpenMenu loads the menu and the stores it can be ordered from.
func (a *App) OpenMenu(ctx context.Context) View {
	if err := a.loadMenu(ctx); err != nil {
		return a.fail("open_menu", err)
	}
	a.enter(navigation.Menu, nil)
	return a.view(nil)
}

func (a *App) loadMenu(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	menu, err := a.service.ListMenu(ctx)
	if err != nil {
		return err
	}
	page, err := a.service.ListFranchises(ctx, models.FranchiseFilter{Page: 1, Limit: a.config.StoreListLimit})
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.menu = menu
	a.stores = page.Franchises
	a.mu.Unlock()
	return nil
}

// SelectStore picks the store to order from. Only stores listed on the menu qualify.
func (a *App) SelectStore(franchiseID, storeID models.ID) View {
	if !a.storeListed(franchiseID, storeID) {
		return a.fail("select_store", errors.NewInvalidSelectionError())
	}
	if err := a.cart.SelectStore(franchiseID, storeID); err != nil {
		return a.fail("select_store", err)
	}
	return a.view(nil)
}

func (a *App) storeListed(franchiseID, storeID models.ID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.stores {
		if a.stores[i].ID != franchiseID {
			continue
		}
		_, ok := a.stores[i].Store(storeID)
		return ok
	}
	return false
}

// Removed drops a closed franchise or store from the menu's store list and from the
// cart, so an order can no longer be placed with it.
func (a *App) Removed(target confirm.Target) {
	var franchiseID, storeID models.ID
	switch target.Kind {
	case confirm.KindFranchise:
		franchiseID = target.ID
	case confirm.KindStore:
		franchiseID, storeID = target.ParentID, target.ID
	default:
		return
	}

	a.mu.Lock()
	if storeID.IsZero() {
		a.stores = models.WithoutFranchise(a.stores, franchiseID)
	} else {
		for i, f := range a.stores {
			if f.ID == franchiseID {
				a.stores[i] = f.WithoutStore(storeID)
			}
		}
	}
	a.mu.Unlock()

	a.cart.ForgetStore(franchiseID, storeID)
}

// ToggleItem adds or removes a menu item from the draft.
func (a *App) ToggleItem(itemID models.ID) View {
	item, ok := a.menuItem(itemID)
	if !ok {
		return a.fail("toggle_item", errors.NewValidationFailedError("item", "no menu item "+itemID.String()))
	}
	a.cart.ToggleItem(item)
	return a.view(nil)
}

func (a *App) menuItem(id models.ID) (models.MenuItem, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, item := range a.menu {
		if item.ID == id {
			return item, true
		}
	}
	return models.MenuItem{}, false
}

// Checkout moves the draft to payment, going through sign-in first when needed.
func (a *App) Checkout(ctx context.Context) View {
	if a.nav.Current().Screen == navigation.Payment {
		return a.view(nil)
	}
	draft, err := a.cart.Draft()
	if err != nil {
		return a.fail("checkout", err)
	}
	a.gate.Require(ctx, authgate.CheckoutIntent(draft))
	return a.view(nil)
}

// Pay submits the draft shown on the payment screen and shows the delivery screen.
func (a *App) Pay(ctx context.Context) View {
	if a.nav.Current().Screen != navigation.Payment {
		return a.fail("pay", errors.NewMissingTargetError("check out before paying"))
	}

	conf, err := a.cart.Submit(ctx, a.checkout)
	if conf == nil {
		return a.fail("pay", err)
	}

	a.nav.Replace(navigation.Delivery, *conf)
	a.mu.Lock()
	a.verified = nil
	a.mu.Unlock()
	if err != nil {
		return a.fail("pay", err)
	}
	return a.view(nil)
}

// Verify checks the receipt shown on the delivery screen.
func (a *App) Verify(ctx context.Context) View {
	entry := a.nav.Current()
	conf, ok := navigation.StateOf[models.Confirmation](entry)
	if entry.Screen != navigation.Delivery || !ok {
		return a.fail("verify", errors.NewMissingTargetError("no order to verify"))
	}

	res, err := a.checkout.Verify(ctx, conf)
	a.mu.Lock()
	a.verified = res
	a.mu.Unlock()
	if err != nil {
		return a.fail("verify", err)
	}
	return a.view(nil)
}

// ==========================
// Dashboards
// ==========================

// OpenAdmin shows the franchise directory, optionally filtered by name.
func (a *App) OpenAdmin(ctx context.Context, name string) View {
	if _, err := a.franchises.Directory(ctx, models.FranchiseFilter{Name: strings.TrimSpace(name)}); err != nil {
		return a.fail("open_admin", err)
	}
	a.enter(navigation.AdminDashboard, nil)
	return a.view(nil)
}

// OpenFranchise shows the signed-in user's own franchises.
func (a *App) OpenFranchise(ctx context.Context) View {
	if _, err := a.franchises.Mine(ctx); err != nil {
		return a.fail("open_franchise", err)
	}
	a.enter(navigation.FranchiseBoard, nil)
	return a.view(nil)
}

// OpenDiner shows the diner's account and order history.
func (a *App) OpenDiner(ctx context.Context) View {
	if err := a.loadDiner(ctx, 1); err != nil {
		return a.fail("open_diner", err)
	}
	a.enter(navigation.DinerDashboard, nil)
	return a.view(nil)
}

func (a *App) loadDiner(ctx context.Context, page int) error {
	history, err := a.profile.Orders(ctx, page)
	if err != nil {
		return err
	}

	var receipts []journal.Entry
	if user := a.sessions.User(); user != nil {
		jctx, cancel := a.withTimeout(ctx)
		receipts, err = a.journal.Recent(jctx, user.ID, a.config.PageSize)
		cancel()
		if err != nil {
			a.logger.Warn("Receipt journal unavailable", map[string]interface{}{"error": err.Error()})
			receipts = nil
		}
	}

	a.mu.Lock()
	a.history = history
	a.receipts = receipts
	a.mu.Unlock()
	return nil
}

// OpenUsers shows the admin user directory, optionally filtered by name.
func (a *App) OpenUsers(ctx context.Context, name string) View {
	if _, err := a.profile.Users(ctx, 1, strings.TrimSpace(name)); err != nil {
		return a.fail("open_users", err)
	}
	a.enter(navigation.Users, nil)
	return a.view(nil)
}

// Page loads another page of the list on screen.
func (a *App) Page(ctx context.Context, page int) View {
	var err error
	switch a.nav.Current().Screen {
	case navigation.AdminDashboard:
		filter := a.franchises.Listing().Filter
		filter.Page = page
		_, err = a.franchises.Directory(ctx, filter)
	case navigation.Users:
		_, err = a.profile.Users(ctx, page, a.profile.UserListing().Name)
	case navigation.DinerDashboard:
		err = a.loadDiner(ctx, page)
	default:
		err = errors.NewMissingTargetError("nothing to page through here")
	}
	if err != nil {
		return a.fail("page", err)
	}
	return a.view(nil)
}

// refresh re-fetches the list shown on screen after a change made elsewhere.
func (a *App) refresh(ctx context.Context, screen navigation.Screen) {
	var err error
	switch screen {
	case navigation.AdminDashboard:
		_, err = a.franchises.Directory(ctx, a.franchises.Listing().Filter)
	case navigation.FranchiseBoard:
		_, err = a.franchises.Mine(ctx)
	case navigation.Users:
		listing := a.profile.UserListing()
		_, err = a.profile.Users(ctx, listing.Page, listing.Name)
	case navigation.DinerDashboard:
		err = a.loadDiner(ctx, 1)
	}
	if err != nil {
		a.logger.Warn("List refresh failed, showing local copy", map[string]interface{}{
			"screen": string(screen),
			"error":  err.Error(),
		})
	}
}

// ==========================
// Administration
// ==========================

// CreateFranchise creates a franchise from the create screen and returns to the parent
// list. Failures keep the create screen open.
func (a *App) CreateFranchise(ctx context.Context, name, adminEmail string) View {
	a.enter(navigation.CreateFranchise, nil)
	if _, err := a.franchises.CreateFranchise(ctx, name, adminEmail); err != nil {
		return a.fail("create_franchise", err)
	}
	parent := a.nav.PopToParent()
	a.refresh(ctx, parent.Screen)
	return a.view(nil)
}

// CreateStore opens a store in a franchise and returns to the parent list.
func (a *App) CreateStore(ctx context.Context, franchiseID models.ID, name string) View {
	a.enter(navigation.CreateStore, franchiseID)
	if _, err := a.franchises.CreateStore(ctx, franchiseID, name); err != nil {
		return a.fail("create_store", err)
	}
	parent := a.nav.PopToParent()
	a.refresh(ctx, parent.Screen)
	return a.view(nil)
}

// UpdateProfile edits the signed-in user's account; blank fields stay unchanged.
func (a *App) UpdateProfile(ctx context.Context, name, email, password string) View {
	if _, err := a.profile.Update(ctx, name, email, password); err != nil {
		return a.fail("update_profile", err)
	}
	return a.view(nil)
}

// ==========================
// Destructive actions
// ==========================

// RequestCloseFranchise opens the confirmation for closing a listed franchise.
func (a *App) RequestCloseFranchise(franchiseID models.ID) View {
	if user := a.sessions.User(); user == nil || !user.IsAdmin() {
		return a.fail("close_franchise", errors.NewForbiddenError("only admins can close franchises"))
	}
	target, err := a.franchises.CloseFranchiseTarget(franchiseID)
	if err != nil {
		return a.fail("close_franchise", err)
	}
	return a.request("close_franchise", target)
}

// RequestCloseStore opens the confirmation for closing a listed store.
func (a *App) RequestCloseStore(storeID models.ID) View {
	target, err := a.franchises.CloseStoreTarget(storeID)
	if err != nil {
		return a.fail("close_store", err)
	}
	if user := a.sessions.User(); user == nil || !user.CanManageFranchise(target.ParentID) {
		return a.fail("close_store", errors.NewForbiddenError("not an administrator of "+target.ParentName))
	}
	return a.request("close_store", target)
}

// RequestDeleteUser opens the confirmation for deleting a listed user.
func (a *App) RequestDeleteUser(userID models.ID) View {
	if user := a.sessions.User(); user == nil || !user.IsAdmin() {
		return a.fail("delete_user", errors.NewForbiddenError("only admins can delete users"))
	}
	target, err := a.profile.DeleteUserTarget(userID)
	if err != nil {
		return a.fail("delete_user", err)
	}
	return a.request("delete_user", target)
}

func (a *App) request(action string, target confirm.Target) View {
	if _, err := a.confirm.Request(target); err != nil {
		return a.fail(action, err)
	}
	return a.view(nil)
}

// Confirm performs the removal on the confirmation screen and returns to the refreshed
// parent list.
func (a *App) Confirm(ctx context.Context) View {
	res, err := a.confirm.Confirm(ctx)
	if res != nil {
		a.refresh(ctx, res.Parent.Screen)
	}
	if err != nil {
		return a.fail("confirm", err)
	}
	return a.view(nil)
}

// Cancel leaves the confirmation screen without contacting the service.
func (a *App) Cancel() View {
	if !isConfirmScreen(a.nav.Current().Screen) {
		return a.fail("cancel", errors.NewMissingTargetError("nothing to cancel"))
	}
	if _, err := a.confirm.Cancel(); err != nil {
		return a.fail("cancel", err)
	}
	return a.view(nil)
}

// Back returns to the previous screen. Leaving sign-in drops a parked intent.
func (a *App) Back() View {
	switch a.nav.Current().Screen {
	case navigation.Login, navigation.Register:
		a.gate.Abandon()
	case navigation.CloseFranchise, navigation.CloseStore, navigation.DeleteUser:
		return a.Cancel()
	}
	a.nav.PopToParent()
	return a.view(nil)
}

func isConfirmScreen(s navigation.Screen) bool {
	return s == navigation.CloseFranchise || s == navigation.CloseStore || s == navigation.DeleteUser
}
