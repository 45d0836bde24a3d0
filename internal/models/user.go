package models

import "strings"

// RoleKind is the tag of a role assignment.
type RoleKind string

const (
	RoleDiner      RoleKind = "diner"
	RoleFranchisee RoleKind = "franchisee"
	RoleAdmin      RoleKind = "admin"
)

// Role is a tagged variant: Diner, Franchisee{FranchiseID} or Admin. ObjectID is only
// meaningful for Franchisee.
type Role struct {
	Kind     RoleKind `json:"role"`
	ObjectID ID       `json:"objectId,omitempty"`
}

func DinerRole() Role {
	return Role{Kind: RoleDiner}
}

func FranchiseeRole(franchiseID ID) Role {
	return Role{Kind: RoleFranchisee, ObjectID: franchiseID}
}

func AdminRole() Role {
	return Role{Kind: RoleAdmin}
}

// User as seen by the storefront. The password is write-only and never kept here.
type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

// Normalize guarantees the Diner role and drops duplicate assignments, keeping order.
func (u *User) Normalize() {
	seen := make(map[Role]bool, len(u.Roles)+1)
	roles := make([]Role, 0, len(u.Roles)+1)
	hasDiner := false
	for _, r := range u.Roles {
		r.Kind = RoleKind(strings.ToLower(string(r.Kind)))
		if r.Kind != RoleFranchisee {
			r.ObjectID = ""
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		if r.Kind == RoleDiner {
			hasDiner = true
		}
		roles = append(roles, r)
	}
	if !hasDiner {
		roles = append([]Role{DinerRole()}, roles...)
	}
	u.Roles = roles
}

// Has reports whether the user holds a role of the given kind.
func (u *User) Has(kind RoleKind) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.Kind == kind {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.Has(RoleAdmin)
}

// FranchiseIDs lists the franchises the user administers as a franchisee.
func (u *User) FranchiseIDs() []ID {
	if u == nil {
		return nil
	}
	var ids []ID
	for _, r := range u.Roles {
		if r.Kind == RoleFranchisee && !r.ObjectID.IsZero() {
			ids = append(ids, r.ObjectID)
		}
	}
	return ids
}

// CanManageFranchise reports whether the user may create or close stores of a franchise.
func (u *User) CanManageFranchise(franchiseID ID) bool {
	if u.IsAdmin() {
		return true
	}
	for _, id := range u.FranchiseIDs() {
		if id == franchiseID {
			return true
		}
	}
	return false
}

// Initials is the short badge shown for a signed-in user ("Kai Chen" -> "KC").
func (u *User) Initials() string {
	if u == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Fields(u.Name) {
		b.WriteString(strings.ToUpper(string([]rune(part)[:1])))
	}
	return b.String()
}

// UserUpdate is a partial profile change. Nil fields are left as they are.
type UserUpdate struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Password == nil
}

// UserPage is one page of the admin user list.
type UserPage struct {
	Users []User `json:"users"`
	More  bool   `json:"more"`
}
