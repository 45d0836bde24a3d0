// internal/models/franchise.go
package models

// Franchise owns its stores; deleting it removes them server-side.
type Franchise struct {
	ID     ID      `json:"id"`
	Name   string  `json:"name"`
	Admins []Admin `json:"admins,omitempty"`
	Stores []Store `json:"stores"`
}

// Admin is a franchise administrator reference.
type Admin struct {
	ID    ID     `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Store revenue only grows from the client's point of view.
type Store struct {
	ID           ID     `json:"id"`
	FranchiseID  ID     `json:"franchiseId,omitempty"`
	Name         string `json:"name"`
	TotalRevenue Price  `json:"totalRevenue"`
}

// Store looks up a store by id.
func (f *Franchise) Store(id ID) (Store, bool) {
	for _, s := range f.Stores {
		if s.ID == id {
			return s, true
		}
	}
	return Store{}, false
}

// WithoutStore returns a copy of f minus one store.
func (f Franchise) WithoutStore(id ID) Franchise {
	stores := make([]Store, 0, len(f.Stores))
	for _, s := range f.Stores {
		if s.ID != id {
			stores = append(stores, s)
		}
	}
	f.Stores = stores
	return f
}

// FranchiseFilter narrows the admin franchise list.
type FranchiseFilter struct {
	Page  int
	Limit int
	Name  string
}

// FranchisePage is one page of the franchise directory.
type FranchisePage struct {
	Franchises []Franchise `json:"franchises"`
	More       bool        `json:"more"`
}

// NewFranchise is the create-franchise request.
type NewFranchise struct {
	Name   string  `json:"name"`
	Admins []Admin `json:"admins"`
}

// NewStore is the create-store request.
type NewStore struct {
	FranchiseID ID     `json:"franchiseId"`
	Name        string `json:"name"`
}

// WithoutFranchise filters a franchise out of a list, keeping order.
func WithoutFranchise(list []Franchise, id ID) []Franchise {
	out := make([]Franchise, 0, len(list))
	for _, f := range list {
		if f.ID != id {
			out = append(out, f)
		}
	}
	return out
}

// WithoutUser filters a user out of a list, keeping order.
func WithoutUser(list []User, id ID) []User {
	out := make([]User, 0, len(list))
	for _, u := range list {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}
