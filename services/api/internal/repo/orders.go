package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
	"github.com/JoseGlez23/runX-API3/shared/pkg/models"
	"github.com/JoseGlez23/runX-API3/shared/pkg/pg"
)

// OrdersPG holds the writes of an order placement. Every method runs on the
// handle it is given so the caller decides the transaction.
type OrdersPG struct{}

var orderItemColumns = []string{"order_id", "product_id", "quantity", "unit_price"}

// LockAccount takes the account row lock that serializes placements per account.
func (OrdersPG) LockAccount(ctx context.Context, db pg.DB, accountID int64) error {
	var id int64
	err := db.QueryRow(ctx, `select id from accounts where id = $1 for update`, accountID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("lock account: %w", err)
	}
	return nil
}

func (OrdersPG) InsertHeader(ctx context.Context, db pg.DB, accountID int64, total decimal.Decimal) (int64, error) {
	var orderID int64
	err := db.QueryRow(ctx, `
		insert into orders(account_id, total)
		values ($1, $2)
		returning id
	`, accountID, total).Scan(&orderID)
	return orderID, err
}

// InsertItems bulk-loads one row per item with COPY.
func (OrdersPG) InsertItems(ctx context.Context, db pg.DB, orderID int64, items []models.OrderItem) error {
	n, err := db.CopyFrom(ctx, pgx.Identifier{"order_items"}, orderItemColumns,
		pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
			it := items[i]
			return []any{orderID, it.ProductID, it.Quantity, it.UnitPrice}, nil
		}))
	if err != nil {
		return err
	}
	if n != int64(len(items)) {
		return fmt.Errorf("order items: copied %d of %d rows", n, len(items))
	}
	return nil
}

// ClearCart removes the account's cart lines for the ordered products only.
func (OrdersPG) ClearCart(ctx context.Context, db pg.DB, accountID int64, productIDs []int64) (int64, error) {
	ct, err := db.Exec(ctx, `
		delete from cart_items
		where account_id = $1 and product_id = any($2)
	`, accountID, productIDs)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
