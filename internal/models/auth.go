package models

// Credentials authenticate an existing user.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration creates a new diner account.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is what register, login and profile updates return.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
