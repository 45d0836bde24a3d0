// Package journal keeps a local record of placed orders and receipt verdicts so the
// diner dashboard can show receipts after a restart.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/models"
)

const (
	KindOrder        = "order"
	KindVerification = "verification"
)

// Entry is one journal row.
type Entry struct {
	Kind        string
	OrderID     models.ID
	DinerID     models.ID
	FranchiseID models.ID
	StoreID     models.ID
	Total       models.Price
	Receipt     string
	Valid       sql.NullBool
	Message     string
	RecordedAt  time.Time
}

// Postgres is the lib/pq backed journal.
type Postgres struct {
	db     *sql.DB
	table  string
	logger logger.Logger
}

func NewPostgres(db *sql.DB, table string, log logger.Logger) *Postgres {
	return &Postgres{
		db:     db,
		table:  pq.QuoteIdentifier(table),
		logger: log.WithFields(map[string]interface{}{"component": "journal"}),
	}
}

// EnsureSchema creates the journal table when it does not exist yet.
func (j *Postgres) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGSERIAL PRIMARY KEY,
		kind TEXT NOT NULL,
		order_id TEXT NOT NULL,
		diner_id TEXT NOT NULL DEFAULT '',
		franchise_id TEXT NOT NULL DEFAULT '',
		store_id TEXT NOT NULL DEFAULT '',
		total NUMERIC(18,8) NOT NULL DEFAULT 0,
		receipt TEXT NOT NULL DEFAULT '',
		valid BOOLEAN,
		message TEXT NOT NULL DEFAULT '',
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, j.table)

	if _, err := j.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create journal table: %w", err)
	}
	return nil
}

// RecordOrder stores a placed order with its receipt.
func (j *Postgres) RecordOrder(ctx context.Context, dinerID models.ID, conf models.Confirmation) error {
	query := fmt.Sprintf(`INSERT INTO %s (kind, order_id, diner_id, franchise_id, store_id, total, receipt)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, j.table)

	_, err := j.db.ExecContext(ctx, query,
		KindOrder,
		conf.Order.ID.String(),
		dinerID.String(),
		conf.Order.FranchiseID.String(),
		conf.Order.StoreID.String(),
		conf.Order.Total().String(),
		conf.Receipt.Token,
	)
	if err != nil {
		return fmt.Errorf("journal order %s: %w", conf.Order.ID, err)
	}

	j.logger.Debug("Order journaled", map[string]interface{}{
		"orderId": conf.Order.ID.String(),
		"receipt": logger.MaskToken(conf.Receipt.Token),
	})
	return nil
}

// RecordVerification stores the verdict for an order's receipt.
func (j *Postgres) RecordVerification(ctx context.Context, orderID models.ID, valid bool, message string) error {
	query := fmt.Sprintf(`INSERT INTO %s (kind, order_id, valid, message)
		VALUES ($1, $2, $3, $4)`, j.table)

	if _, err := j.db.ExecContext(ctx, query, KindVerification, orderID.String(), valid, message); err != nil {
		return fmt.Errorf("journal verification %s: %w", orderID, err)
	}
	return nil
}

// Recent lists a diner's latest journaled orders, newest first, each with the last
// verdict recorded for it.
func (j *Postgres) Recent(ctx context.Context, dinerID models.ID, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT o.order_id, o.franchise_id, o.store_id, o.total, o.receipt, o.recorded_at,
			v.valid, COALESCE(v.message, '')
		FROM %[1]s o
		LEFT JOIN LATERAL (
			SELECT valid, message FROM %[1]s
			WHERE kind = $1 AND order_id = o.order_id
			ORDER BY recorded_at DESC LIMIT 1
		) v ON TRUE
		WHERE o.kind = $2 AND o.diner_id = $3
		ORDER BY o.recorded_at DESC
		LIMIT $4`, j.table)

	rows, err := j.db.QueryContext(ctx, query, KindVerification, KindOrder, dinerID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                             Entry
			orderID, franchiseID, storeID string
			total                         string
		)
		if err := rows.Scan(&orderID, &franchiseID, &storeID, &total, &e.Receipt, &e.RecordedAt, &e.Valid, &e.Message); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		amount, err := decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("journal total %q: %w", total, err)
		}
		e.Kind = KindOrder
		e.OrderID = models.ID(orderID)
		e.DinerID = dinerID
		e.FranchiseID = models.ID(franchiseID)
		e.StoreID = models.ID(storeID)
		e.Total = models.NewPrice(amount)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

// Nop discards everything; used when the journal is disabled.
type Nop struct{}

func (Nop) RecordOrder(context.Context, models.ID, models.Confirmation) error { return nil }

func (Nop) RecordVerification(context.Context, models.ID, bool, string) error { return nil }

func (Nop) Recent(context.Context, models.ID, int) ([]Entry, error) { return nil, nil }
