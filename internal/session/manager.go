// internal/session/manager.go
package session

import (
	"context"
	"sync"
	"time"

	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/models"
)

// UserResolver turns the current token into a user; nil means the token is not valid.
type UserResolver interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// Manager owns the process-wide identity. Its lifecycle is explicit: Init restores a
// persisted token at start, Set replaces the identity on login or profile update and
// Clear tears it down on logout.
type Manager struct {
	mu      sync.RWMutex
	store   Store
	session *models.Session
	logger  logger.Logger
}

func NewManager(store Store, log logger.Logger) *Manager {
	return &Manager{store: store, logger: log}
}

// Init restores the persisted session, if any. A token the service no longer accepts
// is dropped from the store. On a transport failure the session stays anonymous and the
// persisted token is kept for the next start.
func (m *Manager) Init(ctx context.Context, resolver UserResolver) (*models.User, error) {
	token, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("Failed to load persisted session", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	// The resolver authenticates with the token being restored.
	m.mu.Lock()
	m.session = &models.Session{Token: token}
	m.mu.Unlock()

	user, err := resolver.CurrentUser(ctx)
	if err != nil {
		m.reset()
		m.logger.Warn("Could not restore session", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	if user == nil {
		m.reset()
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.logger.Warn("Failed to drop stale session token", map[string]interface{}{"error": clearErr.Error()})
		}
		m.logger.Info("Persisted session expired", nil)
		return nil, nil
	}

	m.mu.Lock()
	m.session = &models.Session{Token: token, User: user, CreatedAt: time.Now().UTC()}
	m.mu.Unlock()

	m.logger.Info("Session restored", map[string]interface{}{
		"userId": user.ID.String(),
		"token":  logger.MaskToken(token),
	})
	return user, nil
}

// Set installs a new identity and persists its token. The in-memory identity is
// replaced even when persisting fails.
func (m *Manager) Set(ctx context.Context, token string, user *models.User) error {
	u := *user
	m.mu.Lock()
	m.session = &models.Session{Token: token, User: &u, CreatedAt: time.Now().UTC()}
	m.mu.Unlock()

	if err := m.store.Save(ctx, token); err != nil {
		m.logger.Warn("Failed to persist session token", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

// Clear forgets the identity and its persisted token.
func (m *Manager) Clear(ctx context.Context) error {
	m.reset()
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("Failed to clear persisted session", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

func (m *Manager) reset() {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
}

// Token implements pizza.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return ""
	}
	return m.session.Token
}

// User returns a copy of the signed-in user, or nil.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil || m.session.User == nil {
		return nil
	}
	u := *m.session.User
	return &u
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.IsAuthenticated()
}
