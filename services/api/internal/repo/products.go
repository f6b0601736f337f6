package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
	"github.com/JoseGlez23/runX-API3/shared/pkg/models"
	"github.com/JoseGlez23/runX-API3/shared/pkg/pg"
)

type ProductsPG struct{ DB pg.DB }

func (r *ProductsPG) List(ctx context.Context) ([]models.Product, error) {
	rows, err := r.DB.Query(ctx, `
		select id, name, price, description, sizes, image
		from products order by id
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Sizes, &p.Image); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductsPG) Get(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	err := r.DB.QueryRow(ctx, `
		select id, name, price, description, sizes, image
		from products where id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Sizes, &p.Image)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, apperr.ErrNotFound
		}
		return models.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductsPG) Create(ctx context.Context, p models.Product) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		insert into products(name, price, description, sizes, image)
		values ($1, $2, $3, $4, $5)
		returning id
	`, p.Name, p.Price, p.Description, p.Sizes, p.Image).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}
	return id, nil
}

func (r *ProductsPG) Update(ctx context.Context, p models.Product) error {
	ct, err := r.DB.Exec(ctx, `
		update products
		set name = $2, price = $3, description = $4, sizes = $5, image = $6
		where id = $1
	`, p.ID, p.Name, p.Price, p.Description, p.Sizes, p.Image)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *ProductsPG) Delete(ctx context.Context, id int64) error {
	if _, err := r.DB.Exec(ctx, `delete from products where id = $1`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
