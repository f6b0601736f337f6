package models

import "github.com/shopspring/decimal"

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nombre"`
	Price       decimal.Decimal `json:"precio"`
	Description string          `json:"descripcion"`
	Sizes       string          `json:"tallas"`
	Image       string          `json:"imagen"`
}
