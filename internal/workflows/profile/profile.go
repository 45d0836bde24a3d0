// internal/workflows/profile/profile.go
package profile

import (
	"context"
	"strings"
	"sync"
	"time"

	"pizza-storefront/internal/common/errors"
	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/common/validation"
	"pizza-storefront/internal/models"
	"pizza-storefront/internal/workflows/confirm"
)

const Workflow = "profile"

// Profile serves the diner dashboard (order history, account edits) and the admin
// user directory.
type Profile struct {
	service  Service
	sessions Sessions
	logger   logger.Logger
	pageSize int
	timeout  time.Duration

	mu    sync.Mutex
	users UserListing
}

func NewProfile(deps ServiceDependencies, pageSize int, timeout time.Duration) *Profile {
	if pageSize <= 0 {
		pageSize = 10
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Profile{
		service:  deps.Service,
		sessions: deps.Sessions,
		logger:   deps.Logger.WithFields(map[string]interface{}{"workflow": Workflow}),
		pageSize: pageSize,
		timeout:  timeout,
	}
}

func (p *Profile) requireUser() (*models.User, error) {
	if !p.sessions.IsAuthenticated() {
		return nil, errors.NewAuthenticationFailedError("sign in to see your profile")
	}
	return p.sessions.User(), nil
}

// Orders loads a page of the signed-in diner's order history.
func (p *Profile) Orders(ctx context.Context, page int) (History, error) {
	if _, err := p.requireUser(); err != nil {
		return History{}, err
	}
	if page < 1 {
		page = 1
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, err := p.service.ListOrders(ctx, page)
	if err != nil {
		return History{}, err
	}
	return History{Orders: res.Orders, Page: page, More: res.More}, nil
}

// Update changes the signed-in user's account. Blank fields are left as they are.
// The service answers with a fresh token, which replaces the session's.
func (p *Profile) Update(ctx context.Context, name, email, password string) (*models.User, error) {
	user, err := p.requireUser()
	if err != nil {
		return nil, err
	}

	input := map[string]interface{}{}
	update := models.UserUpdate{}
	if v := strings.TrimSpace(name); v != "" {
		input["name"] = v
		update.Name = &v
	}
	if v := strings.TrimSpace(email); v != "" {
		input["email"] = v
		update.Email = &v
	}
	if password != "" {
		input["password"] = password
		update.Password = &password
	}
	if update.IsEmpty() {
		return nil, errors.NewValidationFailedError("name", "nothing to update")
	}
	if err := validation.ValidateInput(input, updateSchema).Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, err := p.service.UpdateUser(ctx, user.ID, update)
	if err != nil {
		return nil, err
	}

	token := res.Token
	if token == "" {
		token = p.sessions.Token()
	}
	updated := res.User
	if updated.ID.IsZero() {
		updated = *user
		if update.Name != nil {
			updated.Name = *update.Name
		}
		if update.Email != nil {
			updated.Email = *update.Email
		}
	}
	if err := p.sessions.Set(ctx, token, &updated); err != nil {
		p.logger.Warn("Updated user not persisted to session store", map[string]interface{}{
			"error": err.Error(),
		})
	}

	p.logger.Info("Profile updated", map[string]interface{}{
		"userId":  user.ID.String(),
		"token":   logger.MaskToken(token),
		"renamed": update.Name != nil,
	})
	return p.sessions.User(), nil
}

// Users loads a page of the admin user directory.
func (p *Profile) Users(ctx context.Context, page int, name string) (UserListing, error) {
	user, err := p.requireUser()
	if err != nil {
		return UserListing{}, err
	}
	if !user.IsAdmin() {
		return UserListing{}, errors.NewForbiddenError("only admins can list users")
	}
	if page < 1 {
		page = 1
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, err := p.service.ListUsers(ctx, page, p.pageSize, name)
	if err != nil {
		return UserListing{}, err
	}

	listing := UserListing{Users: res.Users, Page: page, Name: name, More: res.More}
	p.mu.Lock()
	p.users = listing
	p.mu.Unlock()
	return listing, nil
}

// UserListing returns the last loaded user directory.
func (p *Profile) UserListing() UserListing {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.users
	out.Users = append([]models.User(nil), p.users.Users...)
	return out
}

// DeleteUserTarget resolves a listed user into a confirmation target. Admins cannot
// delete themselves from here.
func (p *Profile) DeleteUserTarget(userID models.ID) (confirm.Target, error) {
	if me := p.sessions.User(); me != nil && me.ID == userID {
		return confirm.Target{}, errors.NewForbiddenError("cannot delete the signed-in user")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range p.users.Users {
		if u.ID == userID {
			return confirm.Target{Kind: confirm.KindUser, ID: u.ID, Name: u.Name}, nil
		}
	}
	return confirm.Target{}, errors.NewMissingTargetError("user " + userID.String() + " is not listed")
}

// Removed drops a deleted user from the directory.
func (p *Profile) Removed(target confirm.Target) {
	if target.Kind != confirm.KindUser {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users.Users = models.WithoutUser(p.users.Users, target.ID)
}
