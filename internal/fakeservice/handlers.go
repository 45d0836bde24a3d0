package fakeservice

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"pizza-storefront/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

// caller resolves the bearer token. Callers must hold s.mu.
func (s *Service) caller(r *http.Request) *account {
	id, ok := s.tokens[bearer(r)]
	if !ok {
		return nil
	}
	return s.accountByID(id)
}

func (s *Service) issueToken(a *account) string {
	token := uuid.NewString()
	s.tokens[token] = a.user.ID
	return token
}

func pageParams(r *http.Request, defaultLimit int) (page, limit int, name string) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	name = strings.Trim(r.URL.Query().Get("name"), "*")
	return page, limit, strings.ToLower(name)
}

// ==========================
// Auth
// ==========================

func (s *Service) register(w http.ResponseWriter, r *http.Request) {
	var req models.Registration
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email, and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountByEmail(req.Email) != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	a := &account{
		user:     models.User{ID: s.newID(), Name: req.Name, Email: req.Email, Roles: []models.Role{models.DinerRole()}},
		password: req.Password,
	}
	s.accounts = append(s.accounts, a)
	writeJSON(w, http.StatusOK, models.AuthResult{User: a.user, Token: s.issueToken(a)})
}

func (s *Service) login(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accountByEmail(req.Email)
	if a == nil || a.password != req.Password {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResult{User: a.user, Token: s.issueToken(a)})
}

func (s *Service) logout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.caller(r) == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	delete(s.tokens, bearer(r))
	writeJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

// ==========================
// Users
// ==========================

func (s *Service) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, a.user)
}

func (s *Service) listUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, name := pageParams(r, 10)

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !a.user.IsAdmin() {
		writeError(w, http.StatusForbidden, "unable to list users")
		return
	}

	var matched []models.User
	for _, acc := range s.accounts {
		if name == "" || strings.Contains(strings.ToLower(acc.user.Name), name) {
			matched = append(matched, acc.user)
		}
	}
	users, more := paginate(matched, page, limit)
	writeJSON(w, http.StatusOK, models.UserPage{Users: users, More: more})
}

type userUpdate struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) updateUser(w http.ResponseWriter, r *http.Request) {
	var req userUpdate
	if !decode(w, r, &req) {
		return
	}
	id := models.ID(chi.URLParam(r, "userID"))

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if a.user.ID != id && !a.user.IsAdmin() {
		writeError(w, http.StatusForbidden, "unauthorized")
		return
	}
	target := s.accountByID(id)
	if target == nil {
		writeError(w, http.StatusNotFound, "unknown user")
		return
	}
	if req.Email != "" && req.Email != target.user.Email && s.accountByEmail(req.Email) != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	if req.Name != "" {
		target.user.Name = req.Name
	}
	if req.Email != "" {
		target.user.Email = req.Email
	}
	if req.Password != "" {
		target.password = req.Password
	}
	writeJSON(w, http.StatusOK, models.AuthResult{User: target.user, Token: s.issueToken(target)})
}

func (s *Service) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "userID"))

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !a.user.IsAdmin() {
		writeError(w, http.StatusForbidden, "unable to delete a user")
		return
	}
	for i, acc := range s.accounts {
		if acc.user.ID == id {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			for token, owner := range s.tokens {
				if owner == id {
					delete(s.tokens, token)
				}
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "unknown user")
}

// ==========================
// Orders
// ==========================

func (s *Service) getMenu(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.menu)
}

func (s *Service) listOrders(w http.ResponseWriter, r *http.Request) {
	page, limit, _ := pageParams(r, 10)

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orders, more := paginate(s.orders[a.user.ID], page, limit)
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSON(w, http.StatusOK, models.OrderPage{DinerID: a.user.ID, Orders: orders, Page: page, More: more})
}

func (s *Service) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	fi := s.franchiseIndex(req.FranchiseID)
	if fi < 0 {
		writeError(w, http.StatusBadRequest, "unknown franchise")
		return
	}
	store := -1
	for i, st := range s.franchises[fi].Stores {
		if st.ID == req.StoreID {
			store = i
		}
	}
	if store < 0 {
		writeError(w, http.StatusBadRequest, "unknown store")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "an order needs at least one item")
		return
	}

	now := time.Now().UTC()
	order := models.Order{
		ID:          s.newID(),
		FranchiseID: req.FranchiseID,
		StoreID:     req.StoreID,
		Date:        &now,
		Items:       make([]models.OrderItem, len(req.Items)),
	}
	for i, item := range req.Items {
		item.ID = s.newID()
		order.Items[i] = item
	}

	receipt, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"vendor": map[string]string{"id": "pizza-storefront", "name": "Pizza Storefront"},
		"diner":  map[string]interface{}{"id": a.user.ID, "name": a.user.Name, "email": a.user.Email},
		"order":  order,
		"iat":    now.Unix(),
	}).SignedString(s.secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fulfill order at factory")
		return
	}

	st := &s.franchises[fi].Stores[store]
	st.TotalRevenue = st.TotalRevenue.Plus(order.Total())
	s.orders[a.user.ID] = append(s.orders[a.user.ID], order)

	writeJSON(w, http.StatusOK, models.OrderResult{Order: order, JWT: receipt})
}

type verifyRequest struct {
	JWT string `json:"jwt"`
}

func (s *Service) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decode(w, r, &req) {
		return
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(req.JWT, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		writeJSON(w, http.StatusOK, models.Verification{
			Message: "invalid",
			Payload: map[string]interface{}{"error": err.Error()},
		})
		return
	}
	writeJSON(w, http.StatusOK, models.Verification{Message: "valid", Payload: claims})
}

// ==========================
// Franchises
// ==========================

func (s *Service) listFranchises(w http.ResponseWriter, r *http.Request) {
	page, limit, name := pageParams(r, 10)

	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.Franchise
	for _, f := range s.franchises {
		if name == "" || strings.Contains(strings.ToLower(f.Name), name) {
			matched = append(matched, f)
		}
	}
	franchises, more := paginate(matched, page, limit)
	if franchises == nil {
		franchises = []models.Franchise{}
	}
	writeJSON(w, http.StatusOK, models.FranchisePage{Franchises: franchises, More: more})
}

func (s *Service) userFranchises(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "userID"))

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	out := []models.Franchise{}
	if a.user.ID != id && !a.user.IsAdmin() {
		writeJSON(w, http.StatusOK, out)
		return
	}
	for _, f := range s.franchises {
		for _, admin := range f.Admins {
			if admin.ID == id {
				out = append(out, f)
				break
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) createFranchise(w http.ResponseWriter, r *http.Request) {
	var req models.NewFranchise
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !a.user.IsAdmin() {
		writeError(w, http.StatusForbidden, "unable to create a franchise")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "franchise name is required")
		return
	}
	for _, f := range s.franchises {
		if strings.EqualFold(f.Name, req.Name) {
			writeError(w, http.StatusConflict, "franchise already exists")
			return
		}
	}

	franchise := models.Franchise{ID: s.newID(), Name: req.Name, Stores: []models.Store{}}
	owners := make([]*account, 0, len(req.Admins))
	for _, admin := range req.Admins {
		acc := s.accountByEmail(admin.Email)
		if acc == nil {
			writeError(w, http.StatusNotFound, "unknown user for franchise admin "+admin.Email+" provided")
			return
		}
		owners = append(owners, acc)
		franchise.Admins = append(franchise.Admins, models.Admin{ID: acc.user.ID, Name: acc.user.Name, Email: acc.user.Email})
	}
	for _, acc := range owners {
		acc.user.Roles = append(acc.user.Roles, models.FranchiseeRole(franchise.ID))
	}
	s.franchises = append(s.franchises, franchise)
	writeJSON(w, http.StatusOK, franchise)
}

func (s *Service) deleteFranchise(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "franchiseID"))

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !a.user.IsAdmin() {
		writeError(w, http.StatusForbidden, "unable to delete a franchise")
		return
	}
	if s.franchiseIndex(id) < 0 {
		writeError(w, http.StatusNotFound, "unknown franchise")
		return
	}
	s.franchises = models.WithoutFranchise(s.franchises, id)
	for _, acc := range s.accounts {
		roles := acc.user.Roles[:0]
		for _, role := range acc.user.Roles {
			if role.Kind == models.RoleFranchisee && role.ObjectID == id {
				continue
			}
			roles = append(roles, role)
		}
		acc.user.Roles = roles
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "franchise deleted"})
}

func (s *Service) createStore(w http.ResponseWriter, r *http.Request) {
	var req models.NewStore
	if !decode(w, r, &req) {
		return
	}
	id := models.ID(chi.URLParam(r, "franchiseID"))

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	fi := s.franchiseIndex(id)
	if fi < 0 {
		writeError(w, http.StatusNotFound, "unknown franchise")
		return
	}
	if !a.user.CanManageFranchise(id) {
		writeError(w, http.StatusForbidden, "unable to create a store")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "store name is required")
		return
	}
	store := models.Store{ID: s.newID(), FranchiseID: id, Name: req.Name, TotalRevenue: models.ZeroPrice()}
	s.franchises[fi].Stores = append(s.franchises[fi].Stores, store)
	writeJSON(w, http.StatusOK, store)
}

func (s *Service) deleteStore(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "franchiseID"))
	storeID := models.ID(chi.URLParam(r, "storeID"))

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	if a == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	fi := s.franchiseIndex(id)
	if fi < 0 {
		writeError(w, http.StatusNotFound, "unknown franchise")
		return
	}
	if !a.user.CanManageFranchise(id) {
		writeError(w, http.StatusForbidden, "unable to delete a store")
		return
	}
	if _, ok := s.franchises[fi].Store(storeID); !ok {
		writeError(w, http.StatusNotFound, "unknown store")
		return
	}
	s.franchises[fi] = s.franchises[fi].WithoutStore(storeID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "store deleted"})
}

func paginate[T any](items []T, page, limit int) ([]T, bool) {
	start := (page - 1) * limit
	if start >= len(items) {
		return nil, false
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], end < len(items)
}
