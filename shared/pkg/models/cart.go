package models

import "github.com/shopspring/decimal"

type CartLine struct {
	ID        int64
	AccountID int64
	ProductID int64
	Quantity  int
}

// CartView is a cart line joined with the product it points at.
type CartView struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"producto_id"`
	Name      string          `json:"nombre"`
	Price     decimal.Decimal `json:"precio"`
	Image     string          `json:"imagen"`
	Quantity  int             `json:"cantidad"`
	Sizes     string          `json:"tallas"`
}
