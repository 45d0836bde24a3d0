// internal/workflows/authgate/models.go
package authgate

import (
	"pizza-storefront/internal/common/validation"
	"pizza-storefront/internal/models"
	"pizza-storefront/internal/navigation"
)

// State of the gate.
type State int

const (
	Anonymous State = iota
	PendingIntent
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case PendingIntent:
		return "pending-intent"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Intent is an action deferred until the user signs in. Resuming it opens Screen with
// State, e.g. the payment screen with the draft being checked out.
type Intent struct {
	Action string
	Screen navigation.Screen
	State  interface{}
}

// CheckoutIntent defers checking out draft.
func CheckoutIntent(draft models.Draft) Intent {
	return Intent{Action: "checkout", Screen: navigation.Payment, State: draft}
}

// Outcome of a successful sign-in.
type Outcome struct {
	User    *models.User
	Resumed *Intent
	Landing navigation.Entry
}

var loginSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"email":    {Type: "string", Format: "email"},
		"password": {Type: "string", MinLength: validation.IntPtr(1)},
	},
	Required: []string{"email", "password"},
}

var registerSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"name":     {Type: "string", MinLength: validation.IntPtr(1), MaxLength: validation.IntPtr(100)},
		"email":    {Type: "string", Format: "email"},
		"password": {Type: "string", MinLength: validation.IntPtr(1)},
	},
	Required: []string{"name", "email", "password"},
}
