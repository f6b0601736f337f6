package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const EventOrderPlaced = "orders.placed"

type OrderPlacedPayload struct {
	AccountID int64           `json:"cliente_id"`
	Total     decimal.Decimal `json:"total"`
	Items     []OrderItem     `json:"items"`
}

func NewOrderPlacedEvent(orderID, accountID int64, total decimal.Decimal, items []OrderItem) Event[OrderPlacedPayload] {
	out := make([]OrderItem, len(items))
	copy(out, items)
	return Event[OrderPlacedPayload]{
		ID:      uuid.NewString(),
		Type:    EventOrderPlaced,
		Version: 1,
		Time:    time.Now().UTC(),
		OrderID: strconv.FormatInt(orderID, 10),
		Payload: OrderPlacedPayload{
			AccountID: accountID,
			Total:     total,
			Items:     out,
		},
	}
}
