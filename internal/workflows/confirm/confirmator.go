// internal/workflows/confirm/confirmator.go
package confirm

import (
	"context"
	"sync"

	"pizza-storefront/internal/common/errors"
	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/common/metrics"
	"pizza-storefront/internal/navigation"
)

const Workflow = "confirm"

// Confirmator is the two-step pattern behind every delete-class action: a list screen
// opens a confirmation screen carrying the target, which is then confirmed or cancelled.
type Confirmator struct {
	config  *Config
	deleter Deleter
	nav     *navigation.Stack
	logger  logger.Logger

	mu          sync.Mutex
	inFlight    map[string]struct{}
	reconcilers []Reconciler
}

func NewConfirmator(deps ServiceDependencies, config *Config) *Confirmator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Confirmator{
		config:   config,
		deleter:  deps.Deleter,
		nav:      deps.Nav,
		logger:   deps.Logger.WithFields(map[string]interface{}{"workflow": Workflow}),
		inFlight: make(map[string]struct{}),
	}
}

// Subscribe registers a list holder to be told about removals.
func (c *Confirmator) Subscribe(r Reconciler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reconcilers = append(c.reconcilers, r)
}

// Request opens the confirmation screen for target.
func (c *Confirmator) Request(target Target) (navigation.Entry, error) {
	if !target.valid() {
		return navigation.Entry{}, errors.NewMissingTargetError("a " + string(target.Kind) + " must be selected")
	}
	return c.nav.Push(target.Kind.Screen(), target), nil
}

// Target reads the target of the current confirmation screen.
func (c *Confirmator) Target() (Target, error) {
	entry := c.nav.Current()
	target, ok := navigation.StateOf[Target](entry)
	if !ok || !target.valid() || target.Kind.Screen() != entry.Screen {
		return Target{}, errors.NewMissingTargetError("confirmation screen " + string(entry.Screen) + " has no target")
	}
	return target, nil
}

// Warning renders the warning for the current confirmation screen.
func (c *Confirmator) Warning() (string, error) {
	target, err := c.Target()
	if err != nil {
		return "", err
	}
	return Warning(target), nil
}

// Confirm deletes the current target and returns to the parent list.
//
// Without a target nothing is deleted and MISSING_TARGET is returned. A repeated confirm
// while the same target is being deleted returns REQUEST_IN_FLIGHT. NOT_FOUND means
// someone else removed it first: the screen still closes and the list is reconciled,
// and the error is returned so the user is told. Any other failure leaves the
// confirmation screen open for a retry.
func (c *Confirmator) Confirm(ctx context.Context) (*Result, error) {
	target, err := c.Target()
	if err != nil {
		c.logger.Warn("Confirm pressed without a target", map[string]interface{}{
			"screen": string(c.nav.Current().Screen),
		})
		return nil, err
	}

	key := target.key()
	c.mu.Lock()
	if _, busy := c.inFlight[key]; busy {
		c.mu.Unlock()
		metrics.DuplicateRequestsDropped.WithLabelValues("delete_" + string(target.Kind)).Inc()
		return nil, errors.NewRequestInFlightError("delete " + string(target.Kind))
	}
	c.inFlight[key] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()
	}()

	deleteCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	err = c.delete(deleteCtx, target)
	switch {
	case err == nil:
		metrics.DestructiveActions.WithLabelValues(string(target.Kind), "confirmed").Inc()
		c.logger.Info("Entity removed", map[string]interface{}{
			"kind": string(target.Kind),
			"id":   target.ID.String(),
			"name": target.Name,
		})
		return c.finish(target, false), nil

	case errors.Is(err, errors.ErrCodeNotFound):
		metrics.DestructiveActions.WithLabelValues(string(target.Kind), "already_gone").Inc()
		c.logger.Info("Entity was already removed", map[string]interface{}{
			"kind": string(target.Kind),
			"id":   target.ID.String(),
		})
		return c.finish(target, true), err

	default:
		metrics.DestructiveActions.WithLabelValues(string(target.Kind), "failed").Inc()
		c.logger.Warn("Removal failed, confirmation kept open", map[string]interface{}{
			"kind":  string(target.Kind),
			"id":    target.ID.String(),
			"error": err.Error(),
		})
		return nil, err
	}
}

func (c *Confirmator) delete(ctx context.Context, t Target) error {
	switch t.Kind {
	case KindFranchise:
		return c.deleter.DeleteFranchise(ctx, t.ID)
	case KindStore:
		return c.deleter.DeleteStore(ctx, t.ParentID, t.ID)
	case KindUser:
		return c.deleter.DeleteUser(ctx, t.ID)
	default:
		return errors.NewMissingTargetError("unknown kind " + string(t.Kind))
	}
}

// finish closes the confirmation screen if it is still showing target and tells the
// subscribers about the removal.
func (c *Confirmator) finish(target Target, gone bool) *Result {
	var parent navigation.Entry
	if current, err := c.Target(); err == nil && current.key() == target.key() {
		parent = c.nav.PopToParent()
	} else {
		parent = c.nav.Current()
	}

	c.mu.Lock()
	reconcilers := append([]Reconciler(nil), c.reconcilers...)
	c.mu.Unlock()
	for _, r := range reconcilers {
		r.Removed(target)
	}

	return &Result{Target: target, Parent: parent, AlreadyGone: gone}
}

// Cancel returns to the parent list without contacting the service. Once the removal
// has been sent it can no longer be cancelled and REQUEST_IN_FLIGHT is returned.
func (c *Confirmator) Cancel() (navigation.Entry, error) {
	target, err := c.Target()
	if err == nil {
		c.mu.Lock()
		_, busy := c.inFlight[target.key()]
		c.mu.Unlock()
		if busy {
			return c.nav.Current(), errors.NewRequestInFlightError("delete " + string(target.Kind))
		}
		metrics.DestructiveActions.WithLabelValues(string(target.Kind), "cancelled").Inc()
	}
	return c.nav.PopToParent(), nil
}
