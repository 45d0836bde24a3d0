package cart

import (
	"context"
	"math/rand"
	"testing"

	"pizza-storefront/internal/common/errors"
	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var (
	veggie    = models.MenuItem{ID: "1", Title: "Veggie", Image: "pizza1.png", Price: models.MustPrice("0.0038"), Description: "A garden of delight"}
	pepperoni = models.MenuItem{ID: "2", Title: "Pepperoni", Image: "pizza2.png", Price: models.MustPrice("0.0042"), Description: "Spicy treat"}
	margarita = models.MenuItem{ID: "3", Title: "Margarita", Image: "pizza3.png", Price: models.MustPrice("0.0014"), Description: "Essential classic"}
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(ctx context.Context, draft models.Draft) (*models.Confirmation, error) {
	args := m.Called(ctx, draft)
	conf, _ := args.Get(0).(*models.Confirmation)
	return conf, args.Error(1)
}

func createTestBuilder(t *testing.T) *Builder {
	b := NewBuilder(logger.NewTestLogger(t))
	require.NoError(t, b.SelectStore("2", "4"))
	return b
}

// ==========================
// Core Functionality Tests
// ==========================

func TestBuilder_Total(t *testing.T) {
	b := createTestBuilder(t)
	assert.True(t, b.Total().IsZero())

	b.ToggleItem(veggie)
	b.ToggleItem(pepperoni)

	assert.Equal(t, 2, b.Count())
	assert.True(t, b.Total().Same(models.MustPrice("0.0080")))
	franchiseID, storeID := b.Store()
	assert.Equal(t, models.ID("2"), franchiseID)
	assert.Equal(t, models.ID("4"), storeID)
	assert.Equal(t, "0.008 ₿", b.Total().Display())
}

func TestBuilder_ToggleIsIdempotentInPairs(t *testing.T) {
	b := createTestBuilder(t)
	b.ToggleItem(veggie)
	before := b.Total()

	assert.True(t, b.ToggleItem(pepperoni))
	assert.False(t, b.ToggleItem(pepperoni))

	assert.True(t, b.Total().Same(before))
	assert.Equal(t, []models.MenuItem{veggie}, b.Items())
}

func TestBuilder_TotalMatchesSumForRandomToggles(t *testing.T) {
	menu := []models.MenuItem{veggie, pepperoni, margarita}
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		b := createTestBuilder(t)
		for i := 0; i < 1+rng.Intn(12); i++ {
			b.ToggleItem(menu[rng.Intn(len(menu))])
		}

		expected := models.ZeroPrice()
		for _, item := range b.Items() {
			expected = expected.Plus(item.Price)
		}
		assert.True(t, b.Total().Same(expected), "run %d", run)
	}
}

func TestBuilder_ItemsIsACopy(t *testing.T) {
	b := createTestBuilder(t)
	b.ToggleItem(veggie)

	items := b.Items()
	items[0] = pepperoni

	assert.True(t, b.IsSelected("1"))
	assert.False(t, b.IsSelected("2"))
}

// ==========================
// Submission Tests
// ==========================

func TestBuilder_Draft_Preconditions(t *testing.T) {
	t.Run("no store", func(t *testing.T) {
		b := NewBuilder(logger.NewTestLogger(t))
		b.ToggleItem(veggie)
		_, err := b.Draft()
		assert.Equal(t, errors.ErrCodeInvalidSelection, errors.CodeOf(err))
	})

	t.Run("empty cart", func(t *testing.T) {
		b := createTestBuilder(t)
		submitter := &mockSubmitter{}
		_, err := b.Submit(context.Background(), submitter)
		assert.ErrorIs(t, err, errors.ErrEmptyCart)
		submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("blank store id", func(t *testing.T) {
		b := NewBuilder(logger.NewTestLogger(t))
		err := b.SelectStore("2", "")
		assert.ErrorIs(t, err, errors.ErrInvalidSelection)
	})
}

func TestBuilder_Submit_ClearsOnlyOnConfirmation(t *testing.T) {
	ctx := context.Background()
	b := createTestBuilder(t)
	b.ToggleItem(veggie)
	b.ToggleItem(pepperoni)
	expectedDraft := models.Draft{FranchiseID: "2", StoreID: "4", Items: []models.MenuItem{veggie, pepperoni}}

	submitter := &mockSubmitter{}
	submitter.On("Submit", ctx, expectedDraft).Return(nil, errors.NewCheckoutFailedError(assert.AnError)).Once()

	conf, err := b.Submit(ctx, submitter)
	assert.Nil(t, conf)
	assert.ErrorIs(t, err, errors.ErrCheckoutFailed)
	assert.Equal(t, 2, b.Count())
	assert.True(t, b.Total().Same(models.MustPrice("0.0080")))

	placed := &models.Confirmation{Order: models.Order{ID: "23"}, Total: expectedDraft.Total()}
	submitter.On("Submit", ctx, expectedDraft).Return(placed, nil).Once()

	conf, err = b.Submit(ctx, submitter)
	require.NoError(t, err)
	assert.Equal(t, models.ID("23"), conf.Order.ID)
	assert.Zero(t, b.Count())
	_, storeID := b.Store()
	assert.True(t, storeID.IsZero())

	submitter.AssertExpectations(t)
}

func TestBuilder_Submit_ClearsWhenOrderExistsDespiteError(t *testing.T) {
	ctx := context.Background()
	b := createTestBuilder(t)
	b.ToggleItem(veggie)

	placed := &models.Confirmation{Order: models.Order{ID: "23"}}
	submitter := &mockSubmitter{}
	submitter.On("Submit", ctx, mock.Anything).Return(placed, errors.NewOrderTotalMismatchError("0.0038", "0.004"))

	conf, err := b.Submit(ctx, submitter)
	assert.NotNil(t, conf)
	assert.ErrorIs(t, err, errors.ErrOrderTotalMismatch)
	assert.Zero(t, b.Count())
}

func TestBuilder_ForgetStore(t *testing.T) {
	tests := []struct {
		name        string
		franchiseID models.ID
		storeID     models.ID
		forgotten   bool
	}{
		{name: "selected store", franchiseID: "2", storeID: "4", forgotten: true},
		{name: "whole franchise", franchiseID: "2", storeID: "", forgotten: true},
		{name: "sibling store", franchiseID: "2", storeID: "5", forgotten: false},
		{name: "other franchise", franchiseID: "3", storeID: "", forgotten: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := createTestBuilder(t)
			require.NoError(t, b.SelectStore("2", "4"))
			b.ToggleItem(veggie)

			assert.Equal(t, tt.forgotten, b.ForgetStore(tt.franchiseID, tt.storeID))
			_, storeID := b.Store()
			assert.Equal(t, tt.forgotten, storeID.IsZero())
			assert.Equal(t, 1, b.Count())

			if tt.forgotten {
				_, err := b.Draft()
				assert.ErrorIs(t, err, errors.ErrInvalidSelection)
			}
		})
	}
}
