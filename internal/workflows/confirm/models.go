package confirm

import (
	"context"
	"fmt"

	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/models"
	"pizza-storefront/internal/navigation"
)

// Kind of entity a destructive action removes.
type Kind string

const (
	KindFranchise Kind = "franchise"
	KindStore     Kind = "store"
	KindUser      Kind = "user"
)

// Screen is the confirmation screen for a kind.
func (k Kind) Screen() navigation.Screen {
	switch k {
	case KindFranchise:
		return navigation.CloseFranchise
	case KindStore:
		return navigation.CloseStore
	case KindUser:
		return navigation.DeleteUser
	default:
		return ""
	}
}

// Target is the entity a confirmation screen was opened for. For stores, ParentID and
// ParentName identify the owning franchise.
type Target struct {
	Kind       Kind
	ID         models.ID
	Name       string
	ParentID   models.ID
	ParentName string
}

func (t Target) key() string {
	return fmt.Sprintf("%s:%s:%s", t.Kind, t.ParentID, t.ID)
}

func (t Target) valid() bool {
	if t.ID.IsZero() || t.Kind.Screen() == "" {
		return false
	}
	return t.Kind != KindStore || !t.ParentID.IsZero()
}

// Warning is the fixed text shown before the user confirms.
func Warning(t Target) string {
	switch t.Kind {
	case KindFranchise:
		return fmt.Sprintf("Are you sure you want to close the %s franchise? This will close all associated stores and cannot be restored. All outstanding revenue will not be refunded.", t.Name)
	case KindStore:
		return fmt.Sprintf("Are you sure you want to close the %s store %s ? This cannot be restored. All outstanding revenue will not be refunded.", t.ParentName, t.Name)
	case KindUser:
		return fmt.Sprintf("Are you sure you want to delete the user %s? This cannot be restored.", t.Name)
	default:
		return "This cannot be restored."
	}
}

// Deleter performs the removals against the pizza service.
type Deleter interface {
	DeleteFranchise(ctx context.Context, franchiseID models.ID) error
	DeleteStore(ctx context.Context, franchiseID, storeID models.ID) error
	DeleteUser(ctx context.Context, userID models.ID) error
}

// Reconciler drops a removed entity from a list it holds.
type Reconciler interface {
	Removed(target Target)
}

type ServiceDependencies struct {
	Deleter Deleter
	Nav     *navigation.Stack
	Logger  logger.Logger
}

// Result of a confirmed removal.
type Result struct {
	Target Target
	Parent navigation.Entry
	// AlreadyGone is set when the service no longer knew the target.
	AlreadyGone bool
}
