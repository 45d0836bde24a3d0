// Package fakeservice is an in-process pizza service with the production wire contract.
// It backs the -demo mode of the storefront and the end-to-end tests.
package fakeservice

import (
	"net/http"
	"sync"

	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/models"
)

// Route identifies one endpoint by method and chi pattern.
type Route struct {
	Method  string
	Pattern string
}

func (r Route) String() string {
	return r.Method + " " + r.Pattern
}

var (
	RouteRegister        = Route{http.MethodPost, "/api/auth"}
	RouteLogin           = Route{http.MethodPut, "/api/auth"}
	RouteLogout          = Route{http.MethodDelete, "/api/auth"}
	RouteMe              = Route{http.MethodGet, "/api/user/me"}
	RouteListUsers       = Route{http.MethodGet, "/api/user"}
	RouteUpdateUser      = Route{http.MethodPut, "/api/user/{userID}"}
	RouteDeleteUser      = Route{http.MethodDelete, "/api/user/{userID}"}
	RouteMenu            = Route{http.MethodGet, "/api/order/menu"}
	RouteListOrders      = Route{http.MethodGet, "/api/order"}
	RouteSubmitOrder     = Route{http.MethodPost, "/api/order"}
	RouteVerify          = Route{http.MethodPost, "/api/order/verify"}
	RouteListFranchises  = Route{http.MethodGet, "/api/franchise"}
	RouteUserFranchises  = Route{http.MethodGet, "/api/franchise/{userID}"}
	RouteCreateFranchise = Route{http.MethodPost, "/api/franchise"}
	RouteDeleteFranchise = Route{http.MethodDelete, "/api/franchise/{franchiseID}"}
	RouteCreateStore     = Route{http.MethodPost, "/api/franchise/{franchiseID}/store"}
	RouteDeleteStore     = Route{http.MethodDelete, "/api/franchise/{franchiseID}/store/{storeID}"}
)

type account struct {
	user     models.User
	password string
}

type injectedFailure struct {
	status    int
	remaining int
}

// Service holds all state behind a single lock.
type Service struct {
	mu         sync.Mutex
	secret     []byte
	accounts   []*account
	tokens     map[string]models.ID
	menu       []models.MenuItem
	franchises []models.Franchise
	orders     map[models.ID][]models.Order
	nextID     int64

	calls    map[Route]int
	failures map[Route]*injectedFailure

	logger logger.Logger
}

// New returns a service seeded with the demo accounts, menu and franchises.
func New(log logger.Logger) *Service {
	s := &Service{
		secret:   []byte("pizza-factory-demo-key"),
		tokens:   make(map[string]models.ID),
		orders:   make(map[models.ID][]models.Order),
		nextID:   100,
		calls:    make(map[Route]int),
		failures: make(map[Route]*injectedFailure),
		logger:   log.WithFields(map[string]interface{}{"component": "fakeservice"}),
	}
	s.seed()
	return s
}

func (s *Service) seed() {
	s.accounts = []*account{
		{user: models.User{ID: "3", Name: "Kai Chen", Email: "d@jwt.com", Roles: []models.Role{models.DinerRole()}}, password: "a"},
		{user: models.User{ID: "4", Name: "Jared Franchisee", Email: "f@jwt.com", Roles: []models.Role{models.DinerRole(), models.FranchiseeRole("2")}}, password: "franchisee"},
		{user: models.User{ID: "5", Name: "Aaron Admin", Email: "a@jwt.com", Roles: []models.Role{models.AdminRole()}}, password: "admin"},
	}

	s.menu = []models.MenuItem{
		{ID: "1", Title: "Veggie", Image: "pizza1.png", Price: models.MustPrice("0.0038"), Description: "A garden of delight"},
		{ID: "2", Title: "Pepperoni", Image: "pizza2.png", Price: models.MustPrice("0.0042"), Description: "Spicy treat"},
	}

	jared := models.Admin{ID: "4", Name: "Jared Franchisee", Email: "f@jwt.com"}
	s.franchises = []models.Franchise{
		{
			ID:     "2",
			Name:   "LotaPizza",
			Admins: []models.Admin{jared},
			Stores: []models.Store{
				{ID: "4", FranchiseID: "2", Name: "Lehi", TotalRevenue: models.ZeroPrice()},
				{ID: "5", FranchiseID: "2", Name: "Springville", TotalRevenue: models.ZeroPrice()},
				{ID: "6", FranchiseID: "2", Name: "American Fork", TotalRevenue: models.ZeroPrice()},
			},
		},
		{
			ID:     "3",
			Name:   "PizzaCorp",
			Stores: []models.Store{{ID: "7", FranchiseID: "3", Name: "Spanish Fork", TotalRevenue: models.ZeroPrice()}},
		},
		{ID: "4", Name: "topSpot", Stores: []models.Store{}},
	}
}

// Fail makes the next times calls to route answer with status.
func (s *Service) Fail(route Route, status, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = &injectedFailure{status: status, remaining: times}
}

// Calls reports how many requests route has received, failed ones included.
func (s *Service) Calls(route Route) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Franchises returns a snapshot of the franchise table.
func (s *Service) Franchises() []models.Franchise {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Franchise, len(s.franchises))
	for i, f := range s.franchises {
		f.Stores = append([]models.Store(nil), f.Stores...)
		out[i] = f
	}
	return out
}

// Orders returns the orders placed by a diner.
func (s *Service) Orders(dinerID models.ID) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Order(nil), s.orders[dinerID]...)
}

func (s *Service) newID() models.ID {
	s.nextID++
	return models.IDFromInt(s.nextID)
}

func (s *Service) accountByEmail(email string) *account {
	for _, a := range s.accounts {
		if a.user.Email == email {
			return a
		}
	}
	return nil
}

func (s *Service) accountByID(id models.ID) *account {
	for _, a := range s.accounts {
		if a.user.ID == id {
			return a
		}
	}
	return nil
}

func (s *Service) franchiseIndex(id models.ID) int {
	for i, f := range s.franchises {
		if f.ID == id {
			return i
		}
	}
	return -1
}
