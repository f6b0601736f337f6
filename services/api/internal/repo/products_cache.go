package repo

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/JoseGlez23/runX-API3/shared/pkg/cache"
	"github.com/JoseGlez23/runX-API3/shared/pkg/models"
)

// ProductsCached puts a Redis read-through cache in front of ProductsPG.
// Redis trouble is logged and never fails a request.
type ProductsCached struct {
	PG    *ProductsPG
	Redis *cache.Redis
	TTL   time.Duration
	Log   zerolog.Logger
}

func productKey(id int64) string { return "product:" + strconv.FormatInt(id, 10) }

func (r *ProductsCached) List(ctx context.Context) ([]models.Product, error) {
	return r.PG.List(ctx)
}

func (r *ProductsCached) Get(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	err := r.Redis.GetJSON(ctx, productKey(id), &p)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		r.Log.Warn().Err(err).Int64("producto_id", id).Msg("product cache read failed")
	}

	p, err = r.PG.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	if err := r.Redis.SetJSON(ctx, productKey(id), p, r.TTL); err != nil {
		r.Log.Warn().Err(err).Int64("producto_id", id).Msg("product cache backfill failed")
	}
	return p, nil
}

func (r *ProductsCached) Create(ctx context.Context, p models.Product) (int64, error) {
	return r.PG.Create(ctx, p)
}

func (r *ProductsCached) Update(ctx context.Context, p models.Product) error {
	if err := r.PG.Update(ctx, p); err != nil {
		return err
	}
	r.evict(ctx, p.ID)
	return nil
}

func (r *ProductsCached) Delete(ctx context.Context, id int64) error {
	if err := r.PG.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

func (r *ProductsCached) evict(ctx context.Context, id int64) {
	if err := r.Redis.Del(ctx, productKey(id)); err != nil {
		r.Log.Warn().Err(err).Int64("producto_id", id).Msg("product cache evict failed")
	}
}
