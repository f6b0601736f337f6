package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
	"github.com/JoseGlez23/runX-API3/shared/pkg/metrics"
	"github.com/JoseGlez23/runX-API3/shared/pkg/models"
	"github.com/JoseGlez23/runX-API3/shared/pkg/pg"
)

type OrdersRepo interface {
	LockAccount(ctx context.Context, db pg.DB, accountID int64) error
	InsertHeader(ctx context.Context, db pg.DB, accountID int64, total decimal.Decimal) (int64, error)
	InsertItems(ctx context.Context, db pg.DB, orderID int64, items []models.OrderItem) error
	ClearCart(ctx context.Context, db pg.DB, accountID int64, productIDs []int64) (int64, error)
}

type Outbox interface {
	Enqueue(ctx context.Context, db pg.DB, eventID string, orderID int64, eventType string, payload any) error
}

// OrdersService places orders. The header, its items, the cart clear and the
// orders.placed outbox row are one transaction: either all are visible or none.
type OrdersService struct {
	DB      pg.TxStarter
	Repo    OrdersRepo
	Outbox  Outbox
	Timeout time.Duration
	Log     zerolog.Logger
}

type PlaceOrderInput struct {
	AccountID int64
	Total     decimal.Decimal
	Items     []models.OrderItem
}

func (in PlaceOrderInput) Validate() error {
	if in.AccountID <= 0 || in.Total.IsZero() || len(in.Items) == 0 {
		return fmt.Errorf("incomplete order: %w", apperr.ErrValidation)
	}
	for i, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 || it.UnitPrice.IsNegative() {
			return fmt.Errorf("order item %d: %w", i, apperr.ErrValidation)
		}
	}
	return nil
}

func (s *OrdersService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (int64, error) {
	if err := in.Validate(); err != nil {
		metrics.OrdersPlacedTotal.WithLabelValues("invalid").Inc()
		return 0, err
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	// The client total is stored as sent; a mismatch with the line sum is only logged.
	sum := lo.Reduce(in.Items, func(acc decimal.Decimal, it models.OrderItem, _ int) decimal.Decimal {
		return acc.Add(it.Extension())
	}, decimal.Zero)
	if !sum.Equal(in.Total) {
		s.Log.Warn().
			Int64("cliente_id", in.AccountID).
			Str("total", in.Total.String()).
			Str("items_sum", sum.String()).
			Msg("order total differs from line extensions")
	}

	productIDs := lo.Uniq(lo.Map(in.Items, func(it models.OrderItem, _ int) int64 { return it.ProductID }))

	var orderID int64
	err := pg.WithTx(ctx, s.DB, func(ctx context.Context, tx pg.DB) error {
		if err := s.Repo.LockAccount(ctx, tx, in.AccountID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return err
			}
			return apperr.NewStageError(apperr.StageHeader, err)
		}

		id, err := s.Repo.InsertHeader(ctx, tx, in.AccountID, in.Total)
		if err != nil {
			return apperr.NewStageError(apperr.StageHeader, err)
		}
		if err := s.Repo.InsertItems(ctx, tx, id, in.Items); err != nil {
			return apperr.NewStageError(apperr.StageItems, err)
		}
		cleared, err := s.Repo.ClearCart(ctx, tx, in.AccountID, productIDs)
		if err != nil {
			return apperr.NewStageError(apperr.StageCart, err)
		}

		evt := models.NewOrderPlacedEvent(id, in.AccountID, in.Total, in.Items)
		if err := s.Outbox.Enqueue(ctx, tx, evt.ID, id, evt.Type, evt); err != nil {
			return apperr.NewStageError(apperr.StageEvent, err)
		}

		s.Log.Debug().Int64("orden_id", id).Int64("cart_lines_cleared", cleared).Msg("order staged")
		orderID = id
		return nil
	})
	if err != nil {
		err = classifyTxError(err, orderID != 0)
		metrics.OrdersPlacedTotal.WithLabelValues(resultLabel(err)).Inc()
		return 0, fmt.Errorf("place order: %w", err)
	}

	metrics.OrdersPlacedTotal.WithLabelValues("ok").Inc()
	return orderID, nil
}

// classifyTxError tags errors raised by Begin (nothing written yet) or Commit
// (everything staged) with a stage.
func classifyTxError(err error, staged bool) error {
	var se *apperr.StageError
	if errors.As(err, &se) || errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if staged {
		return apperr.NewStageError(apperr.StageCommit, err)
	}
	return apperr.NewStageError(apperr.StageHeader, err)
}

func resultLabel(err error) string {
	var se *apperr.StageError
	switch {
	case errors.As(err, &se):
		return string(se.Stage)
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
