// Package rediscache provides a Redis read-through cache in front of the
// coupon repository. Coupon rules change rarely and are read on every
// validation, so a short TTL takes most lookups off the database.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/coupon"
)

const couponCodeKey = "coupon:code:%s"

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository decorates a coupon.Repository with a Redis cache keyed by
// code. Writes go straight through and drop the cached entry, so staff edits
// are visible on the next lookup. Cache errors degrade to a database read,
// never to a failed validation.
type CouponRepository struct {
	inner coupon.Repository
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCouponRepository wraps inner with a Redis cache.
func NewCouponRepository(inner coupon.Repository, rdb *redis.Client, ttl time.Duration) *CouponRepository {
	return &CouponRepository{inner: inner, rdb: rdb, ttl: ttl}
}

// FindByCode serves from cache when possible, falling back to the database
// and populating the cache on a hit there.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	key := fmt.Sprintf(couponCodeKey, code)

	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var c coupon.Coupon
		if err := json.Unmarshal(raw, &c); err == nil {
			return &c, nil
		}
		// Corrupt entry: fall through to the database and overwrite it.
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down is not a validation failure.
		return r.inner.FindByCode(ctx, code)
	}

	c, err := r.inner.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(c); err == nil {
		_ = r.rdb.Set(ctx, key, raw, r.ttl).Err()
	}
	return c, nil
}

// GetByID passes through; only code lookups are on the validation hot path.
func (r *CouponRepository) GetByID(ctx context.Context, id string) (*coupon.Coupon, error) {
	return r.inner.GetByID(ctx, id)
}

// List passes through.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Coupon, error) {
	return r.inner.List(ctx)
}

// Create passes through and evicts the code's cache entry.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	if err := r.inner.Create(ctx, c); err != nil {
		return err
	}
	r.evict(ctx, c.Code)
	return nil
}

// Update passes through and evicts the code's cache entry. When the code
// itself changed, the stale entry for the old code expires by TTL.
func (r *CouponRepository) Update(ctx context.Context, c *coupon.Coupon) error {
	if err := r.inner.Update(ctx, c); err != nil {
		return err
	}
	r.evict(ctx, c.Code)
	return nil
}

// SetActive passes through and evicts by resolving the coupon's code first.
func (r *CouponRepository) SetActive(ctx context.Context, id string, active bool) error {
	if err := r.inner.SetActive(ctx, id, active); err != nil {
		return err
	}
	if c, err := r.inner.GetByID(ctx, id); err == nil {
		r.evict(ctx, c.Code)
	}
	return nil
}

// Delete resolves the code before deleting so the cache entry can be dropped.
func (r *CouponRepository) Delete(ctx context.Context, id string) error {
	code := ""
	if c, err := r.inner.GetByID(ctx, id); err == nil {
		code = c.Code
	}
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	if code != "" {
		r.evict(ctx, code)
	}
	return nil
}

func (r *CouponRepository) evict(ctx context.Context, code string) {
	_ = r.rdb.Del(ctx, fmt.Sprintf(couponCodeKey, code)).Err()
}
