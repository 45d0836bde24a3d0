package journal

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newJournal(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db, "receipt_journal", logger.NewTestLogger(t)), mock
}

func confirmation() models.Confirmation {
	return models.Confirmation{
		Order: models.Order{
			ID:          "23",
			FranchiseID: "2",
			StoreID:     "4",
			Items: []models.OrderItem{
				{MenuID: "1", Description: "Veggie", Price: models.MustPrice("0.0038")},
				{MenuID: "2", Description: "Pepperoni", Price: models.MustPrice("0.0042")},
			},
		},
		Receipt: models.Receipt{OrderID: "23", Token: "eyJpYXQ"},
		Total:   models.MustPrice("0.008"),
	}
}

// ==========================
// Write Tests
// ==========================

func TestEnsureSchema(t *testing.T) {
	j, mock := newJournal(t)
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "receipt_journal"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, j.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOrder(t *testing.T) {
	j, mock := newJournal(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "receipt_journal" (kind, order_id, diner_id, franchise_id, store_id, total, receipt)`)).
		WithArgs(KindOrder, "23", "3", "2", "4", "0.008", "eyJpYXQ").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, j.RecordOrder(context.Background(), "3", confirmation()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOrder_DatabaseError(t *testing.T) {
	j, mock := newJournal(t)
	mock.ExpectExec(`INSERT INTO "receipt_journal"`).WillReturnError(fmt.Errorf("connection refused"))

	err := j.RecordOrder(context.Background(), "3", confirmation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal order 23")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordVerification(t *testing.T) {
	j, mock := newJournal(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "receipt_journal" (kind, order_id, valid, message)`)).
		WithArgs(KindVerification, "23", true, "valid").
		WillReturnResult(sqlmock.NewResult(2, 1))

	require.NoError(t, j.RecordVerification(context.Background(), "23", true, "valid"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgres_QuotesTable(t *testing.T) {
	j := NewPostgres(nil, `orders"; DROP TABLE x; --`, logger.NewNoOpLogger())
	assert.Equal(t, `"orders""; DROP TABLE x; --"`, j.table)
}

// ==========================
// Read Tests
// ==========================

func TestRecent(t *testing.T) {
	j, mock := newJournal(t)
	recorded := time.Date(2024, 6, 5, 5, 14, 40, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"order_id", "franchise_id", "store_id", "total", "receipt", "recorded_at", "valid", "message"}).
		AddRow("23", "2", "4", "0.00800000", "eyJpYXQ", recorded, true, "valid").
		AddRow("22", "2", "5", "0.00380000", "eyJhbGc", recorded.Add(-time.Hour), nil, "")
	mock.ExpectQuery(`SELECT o.order_id`).
		WithArgs(KindVerification, KindOrder, "3", 5).
		WillReturnRows(rows)

	entries, err := j.Recent(context.Background(), "3", 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, models.ID("23"), entries[0].OrderID)
	assert.Equal(t, "0.008 ₿", entries[0].Total.Display())
	assert.Equal(t, sql.NullBool{Bool: true, Valid: true}, entries[0].Valid)
	assert.Equal(t, recorded, entries[0].RecordedAt)

	assert.False(t, entries[1].Valid.Valid)
	assert.Equal(t, models.ID("5"), entries[1].StoreID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecent_QueryError(t *testing.T) {
	j, mock := newJournal(t)
	mock.ExpectQuery(`SELECT o.order_id`).WillReturnError(sql.ErrConnDone)

	_, err := j.Recent(context.Background(), "3", 0)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNop(t *testing.T) {
	var n Nop
	assert.NoError(t, n.RecordOrder(context.Background(), "3", confirmation()))
	assert.NoError(t, n.RecordVerification(context.Background(), "23", false, "invalid"))
	entries, err := n.Recent(context.Background(), "3", 10)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
