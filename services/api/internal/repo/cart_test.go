package repo

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
)

func TestCartList(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`from cart_items c\s+join products p`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "producto_id", "nombre", "precio", "imagen", "cantidad", "tallas"}).
			AddRow(int64(1), int64(7), "Trail X", decimal.RequireFromString("13.99"), "x.png", 2, "26").
			AddRow(int64(2), int64(9), "Road Y", decimal.RequireFromString("13.99"), "y.png", 1, "27"))

	lines, err := (&CartPG{DB: mock}).List(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, int64(7), lines[0].ProductID)
	require.Equal(t, 2, lines[0].Quantity)
}

func TestCartAdd(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`insert into cart_items`).
		WithArgs(int64(42), int64(7), 2).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))

	id, err := (&CartPG{DB: mock}).Add(context.Background(), 42, 7, 2)
	require.NoError(t, err)
	require.Equal(t, int64(3), id)
}

func TestCartUpdateQuantity_ScopedToAccount(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`update cart_items set quantity = \$1\s+where id = \$2 and account_id = \$3`).
		WithArgs(5, int64(3), int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, (&CartPG{DB: mock}).UpdateQuantity(context.Background(), 42, 3, 5))
}

func TestCartUpdateQuantity_RejectsZero(t *testing.T) {
	mock := newMock(t)
	err := (&CartPG{DB: mock}).UpdateQuantity(context.Background(), 42, 3, 0)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCartRemove(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`delete from cart_items where id = \$1 and account_id = \$2`).
		WithArgs(int64(3), int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, (&CartPG{DB: mock}).Remove(context.Background(), 42, 3))
}
