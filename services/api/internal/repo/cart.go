package repo

import (
	"context"
	"fmt"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
	"github.com/JoseGlez23/runX-API3/shared/pkg/models"
	"github.com/JoseGlez23/runX-API3/shared/pkg/pg"
)

type CartPG struct{ DB pg.DB }

func (r *CartPG) List(ctx context.Context, accountID int64) ([]models.CartView, error) {
	rows, err := r.DB.Query(ctx, `
		select c.id, p.id, p.name, p.price, p.image, c.quantity, p.sizes
		from cart_items c
		join products p on c.product_id = p.id
		where c.account_id = $1
		order by c.id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	defer rows.Close()

	out := []models.CartView{}
	for rows.Next() {
		var v models.CartView
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Price, &v.Image, &v.Quantity, &v.Sizes); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *CartPG) Add(ctx context.Context, accountID, productID int64, quantity int) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		insert into cart_items(account_id, product_id, quantity)
		values ($1, $2, $3)
		returning id
	`, accountID, productID, quantity).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add cart line: %w", err)
	}
	return id, nil
}

// UpdateQuantity only touches lines owned by accountID.
func (r *CartPG) UpdateQuantity(ctx context.Context, accountID, lineID int64, quantity int) error {
	if quantity < 1 {
		return apperr.ErrValidation
	}
	if _, err := r.DB.Exec(ctx, `
		update cart_items set quantity = $1
		where id = $2 and account_id = $3
	`, quantity, lineID, accountID); err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}
	return nil
}

func (r *CartPG) Remove(ctx context.Context, accountID, lineID int64) error {
	if _, err := r.DB.Exec(ctx, `
		delete from cart_items where id = $1 and account_id = $2
	`, lineID, accountID); err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	return nil
}
