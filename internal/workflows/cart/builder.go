// internal/workflows/cart/builder.go
package cart

import (
	"context"
	"sync"

	"pizza-storefront/internal/common/errors"
	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/common/metrics"
	"pizza-storefront/internal/models"
)

const Workflow = "cart"

// Submitter exchanges a draft for a placed order. A non-nil confirmation means the
// order exists, even when an error is returned alongside it.
type Submitter interface {
	Submit(ctx context.Context, draft models.Draft) (*models.Confirmation, error)
}

// Builder accumulates the pizzas picked for one store.
type Builder struct {
	mu          sync.Mutex
	franchiseID models.ID
	storeID     models.ID
	items       []models.MenuItem
	logger      logger.Logger
}

func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		logger: log.WithFields(map[string]interface{}{"workflow": Workflow}),
	}
}

// SelectStore fixes the store the draft will be ordered from.
func (b *Builder) SelectStore(franchiseID, storeID models.ID) error {
	if franchiseID.IsZero() || storeID.IsZero() {
		return errors.NewInvalidSelectionError()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.franchiseID = franchiseID
	b.storeID = storeID
	return nil
}

// Store returns the chosen franchise and store, zero when none is chosen.
func (b *Builder) Store() (franchiseID, storeID models.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.franchiseID, b.storeID
}

// ToggleItem adds item when it is not selected and removes it when it is. It reports
// whether the item is selected afterwards.
func (b *Builder) ToggleItem(item models.MenuItem) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	selected := true
	if i := b.indexOf(item.ID); i >= 0 {
		b.items = append(b.items[:i:i], b.items[i+1:]...)
		selected = false
	} else {
		b.items = append(b.items, item)
	}
	metrics.CartItems.Set(float64(len(b.items)))

	b.logger.Debug("Cart toggled", map[string]interface{}{
		"menuId":   item.ID.String(),
		"selected": selected,
		"count":    len(b.items),
	})
	return selected
}

func (b *Builder) indexOf(id models.ID) int {
	for i, it := range b.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Total sums the current selection on every call.
func (b *Builder) Total() models.Price {
	b.mu.Lock()
	defer b.mu.Unlock()
	return models.Draft{Items: b.items}.Total()
}

func (b *Builder) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns a copy of the selection in the order it was made.
func (b *Builder) Items() []models.MenuItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.MenuItem(nil), b.items...)
}

// IsSelected reports whether a menu item is in the draft.
func (b *Builder) IsSelected(id models.ID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.indexOf(id) >= 0
}

// Draft snapshots the cart. It fails when no store is chosen or nothing is selected.
func (b *Builder) Draft() (models.Draft, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.storeID.IsZero() {
		return models.Draft{}, errors.NewInvalidSelectionError()
	}
	if len(b.items) == 0 {
		return models.Draft{}, errors.NewEmptyCartError()
	}
	return models.Draft{
		FranchiseID: b.franchiseID,
		StoreID:     b.storeID,
		Items:       append([]models.MenuItem(nil), b.items...),
	}, nil
}

// Submit hands the draft to s. The cart is cleared only once s reports a placed order;
// on any other outcome it is left as it was so the same draft can be retried.
func (b *Builder) Submit(ctx context.Context, s Submitter) (*models.Confirmation, error) {
	draft, err := b.Draft()
	if err != nil {
		return nil, err
	}

	conf, err := s.Submit(ctx, draft)
	if conf != nil {
		b.Clear()
	}
	return conf, err
}

// ForgetStore drops the chosen store when it is the one removed. An empty storeID
// matches every store of the franchise. The selected pizzas are kept. It reports
// whether the selection changed.
func (b *Builder) ForgetStore(franchiseID, storeID models.ID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.franchiseID != franchiseID || (!storeID.IsZero() && b.storeID != storeID) {
		return false
	}
	b.franchiseID = ""
	b.storeID = ""
	b.logger.Info("Selected store removed from cart", map[string]interface{}{
		"franchiseId": franchiseID.String(),
		"storeId":     storeID.String(),
	})
	return true
}

// Clear empties the selection and forgets the store.
func (b *Builder) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
	b.franchiseID = ""
	b.storeID = ""
	metrics.CartItems.Set(0)
}
