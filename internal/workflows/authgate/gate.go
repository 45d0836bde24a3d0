// internal/workflows/authgate/gate.go
package authgate

import (
	"context"
	"strings"
	"sync"

	"pizza-storefront/internal/common/errors"
	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/common/metrics"
	"pizza-storefront/internal/common/validation"
	"pizza-storefront/internal/models"
	"pizza-storefront/internal/navigation"
	"pizza-storefront/internal/session"
)

const Workflow = "authgate"

// Authenticator is the account side of the pizza service.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error)
	Logout(ctx context.Context) error
}

// Gate guards actions that need a signed-in user. From Anonymous a guarded action is
// parked as a pending intent while the user signs in, then resumed.
type Gate struct {
	mu          sync.Mutex
	state       State
	intent      *Intent
	returnDepth int

	auth     Authenticator
	sessions *session.Manager
	nav      *navigation.Stack
	logger   logger.Logger
}

func NewGate(auth Authenticator, sessions *session.Manager, nav *navigation.Stack, log logger.Logger) *Gate {
	return &Gate{
		state:    Anonymous,
		auth:     auth,
		sessions: sessions,
		nav:      nav,
		logger:   log.WithFields(map[string]interface{}{"workflow": Workflow}),
	}
}

// Restore syncs the gate with a session restored at start-up.
func (g *Gate) Restore() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sessions.IsAuthenticated() {
		g.state = Authenticated
	}
	return g.state
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Pending returns the parked intent, if any.
func (g *Gate) Pending() (Intent, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.intent == nil {
		return Intent{}, false
	}
	return *g.intent, true
}

// Require runs intent now when signed in. Otherwise it parks the intent, opens the login
// screen and reports false.
func (g *Gate) Require(ctx context.Context, intent Intent) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Authenticated {
		g.nav.Push(intent.Screen, intent.State)
		return true
	}

	onAuthScreen := g.state == PendingIntent && isAuthScreen(g.nav.Current().Screen)
	if !onAuthScreen {
		g.returnDepth = g.nav.Depth()
		g.nav.Push(navigation.Login, nil)
	}
	g.state = PendingIntent
	g.intent = &intent

	g.logger.Info("Sign-in required, intent parked", map[string]interface{}{
		"action": intent.Action,
	})
	return false
}

func isAuthScreen(s navigation.Screen) bool {
	return s == navigation.Login || s == navigation.Register
}

// Login signs in. Bad input yields VALIDATION_FAILED, bad credentials
// AUTHENTICATION_FAILED; in both cases the gate is left exactly as it was.
func (g *Gate) Login(ctx context.Context, email, password string) (*Outcome, error) {
	email = strings.TrimSpace(email)
	if err := validation.ValidateInput(map[string]interface{}{
		"email":    email,
		"password": password,
	}, loginSchema).Err(); err != nil {
		return nil, err
	}

	res, err := g.auth.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		if errors.Is(err, errors.ErrCodeAuthenticationFailed) {
			g.logger.Info("Login rejected", map[string]interface{}{"email": email})
		}
		return nil, err
	}
	return g.signedIn(ctx, "login", res)
}

// Register creates an account and signs it in, with the same failure rules as Login.
func (g *Gate) Register(ctx context.Context, name, email, password string) (*Outcome, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := validation.ValidateInput(map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": password,
	}, registerSchema).Err(); err != nil {
		return nil, err
	}

	res, err := g.auth.Register(ctx, models.Registration{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return g.signedIn(ctx, "register", res)
}

func (g *Gate) signedIn(ctx context.Context, action string, res *models.AuthResult) (*Outcome, error) {
	// A failed token write only costs persistence across restarts.
	_ = g.sessions.Set(ctx, res.Token, &res.User)

	g.mu.Lock()
	defer g.mu.Unlock()

	out := &Outcome{User: g.sessions.User()}
	if g.state == PendingIntent && g.intent != nil {
		intent := *g.intent
		g.intent = nil
		g.nav.Truncate(g.returnDepth)
		out.Landing = g.nav.Push(intent.Screen, intent.State)
		out.Resumed = &intent
	} else {
		out.Landing = g.nav.Reset(navigation.DefaultLanding)
	}
	g.state = Authenticated
	metrics.ActionsCompleted.WithLabelValues(action).Inc()

	fields := map[string]interface{}{
		"userId": res.User.ID.String(),
		"token":  logger.MaskToken(res.Token),
	}
	if out.Resumed != nil {
		fields["resumed"] = out.Resumed.Action
	}
	g.logger.Info("Signed in", fields)
	return out, nil
}

// Logout always ends Anonymous with no pending intent and no token, local or persisted.
// The remote logout is best-effort.
func (g *Gate) Logout(ctx context.Context) navigation.Entry {
	if g.sessions.Token() != "" {
		if err := g.auth.Logout(ctx); err != nil {
			g.logger.Warn("Remote logout failed, clearing local session anyway", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	_ = g.sessions.Clear(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Anonymous
	g.intent = nil
	g.returnDepth = 0
	metrics.ActionsCompleted.WithLabelValues("logout").Inc()
	return g.nav.Reset(navigation.DefaultLanding)
}

// Abandon drops a pending intent when the user backs out of the login screen.
func (g *Gate) Abandon() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == PendingIntent {
		g.state = Anonymous
		g.intent = nil
	}
}
