// internal/fakeservice/router.go
package fakeservice

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router exposes the service over HTTP.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	s.handle(r, RouteRegister, s.register)
	s.handle(r, RouteLogin, s.login)
	s.handle(r, RouteLogout, s.logout)

	s.handle(r, RouteMe, s.me)
	s.handle(r, RouteListUsers, s.listUsers)
	s.handle(r, RouteUpdateUser, s.updateUser)
	s.handle(r, RouteDeleteUser, s.deleteUser)

	s.handle(r, RouteMenu, s.getMenu)
	s.handle(r, RouteListOrders, s.listOrders)
	s.handle(r, RouteSubmitOrder, s.submitOrder)
	s.handle(r, RouteVerify, s.verify)

	s.handle(r, RouteListFranchises, s.listFranchises)
	s.handle(r, RouteUserFranchises, s.userFranchises)
	s.handle(r, RouteCreateFranchise, s.createFranchise)
	s.handle(r, RouteDeleteFranchise, s.deleteFranchise)
	s.handle(r, RouteCreateStore, s.createStore)
	s.handle(r, RouteDeleteStore, s.deleteStore)

	return r
}

// handle counts every call to route and answers injected failures before h runs.
func (s *Service) handle(r chi.Router, route Route, h http.HandlerFunc) {
	r.Method(route.Method, route.Pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		s.calls[route]++
		status := 0
		if f, ok := s.failures[route]; ok && f.remaining > 0 {
			f.remaining--
			status = f.status
		}
		s.mu.Unlock()

		if status != 0 {
			writeError(w, status, http.StatusText(status))
			return
		}
		h(w, req)
	}))
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("Handled request", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  middleware.GetReqID(r.Context()),
		})
	})
}
