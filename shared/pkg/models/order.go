package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID        int64
	AccountID int64
	Total     decimal.Decimal
	CreatedAt time.Time
}

// OrderItem snapshots the unit price at purchase time; later catalog price
// changes never reach it.
type OrderItem struct {
	ProductID int64           `json:"producto_id"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio"`
}

// Extension is quantity times unit price.
func (it OrderItem) Extension() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
