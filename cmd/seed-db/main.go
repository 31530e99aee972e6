// Command seed-db loads a development database with sample products, demo
// coupons, and an API key so the admin API is usable immediately.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/coupon"
	"github.com/AkshatGarg2005/apna-collection-admin/internal/domain/product"
	"github.com/AkshatGarg2005/apna-collection-admin/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or ADMIN_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or ADMIN_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("ADMIN_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or ADMIN_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("ADMIN_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedCoupons(ctx, pool); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	if err := seedOrders(ctx, pool); err != nil {
		return errors.Wrap(err, "seed orders")
	}
	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) error {
	repo := postgres.NewProductRepository(pool)

	products := []product.Product{
		{ID: "prod-demo-1", Name: "Classic Cotton Kurta", Category: "Men", Price: decimal.NewFromInt(1299), Stock: 40, Active: true},
		{ID: "prod-demo-2", Name: "Embroidered Silk Saree", Category: "Women", Price: decimal.NewFromInt(4999), Stock: 15, Active: true},
		{ID: "prod-demo-3", Name: "Linen Casual Shirt", Category: "Men", Price: decimal.NewFromInt(1799), Stock: 25, Active: true},
	}

	for _, p := range products {
		if err := repo.Create(ctx, &p); err != nil {
			return errors.Wrapf(err, "create product %s", p.Name)
		}
		slog.Info("created product", slog.String("name", p.Name))
	}
	return nil
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool) error {
	repo := postgres.NewCouponRepository(pool)
	now := time.Now()

	coupons := []coupon.Coupon{
		{
			Code:           "SAVE10",
			DiscountType:   coupon.DiscountPercentage,
			DiscountValue:  decimal.NewFromInt(10),
			MaxDiscount:    decimal.NewFromInt(200),
			MinOrderAmount: decimal.NewFromInt(500),
			ValidFrom:      now,
			ValidUntil:     now.AddDate(0, 3, 0),
			Active:         true,
			Description:    "10% off orders above 500, capped at 200",
		},
		{
			Code:          "FLAT500",
			DiscountType:  coupon.DiscountFixed,
			DiscountValue: decimal.NewFromInt(500),
			ValidFrom:     now,
			ValidUntil:    now.AddDate(0, 1, 0),
			Active:        true,
			UsageLimit:    100,
			PerUserLimit:  1,
			Description:   "Flat 500 off, once per customer",
		},
	}

	for _, c := range coupons {
		c.ID = uuid.New().String()
		if err := repo.Create(ctx, &c); err != nil {
			return errors.Wrapf(err, "create coupon %s", c.Code)
		}
		slog.Info("created coupon", slog.String("code", c.Code))
	}
	return nil
}

func seedOrders(ctx context.Context, pool *pgxpool.Pool) error {
	const upsertOrderSQL = `INSERT INTO orders (id, user_id, items, subtotal, total, shipping_fee, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	type item struct {
		ProductID string          `json:"productId"`
		Name      string          `json:"name"`
		Quantity  int             `json:"quantity"`
		Price     decimal.Decimal `json:"price"`
	}

	orders := []struct {
		id       string
		userID   string
		items    []item
		subtotal decimal.Decimal
		shipping decimal.Decimal
		status   string
	}{
		{
			id:     "ord-demo-1",
			userID: "user-demo-1",
			items: []item{
				{ProductID: "prod-demo-1", Name: "Classic Cotton Kurta", Quantity: 2, Price: decimal.NewFromInt(1299)},
			},
			subtotal: decimal.NewFromInt(2598),
			shipping: decimal.NewFromInt(49),
			status:   "Processing",
		},
		{
			id:     "ord-demo-2",
			userID: "user-demo-2",
			items: []item{
				{ProductID: "prod-demo-2", Name: "Embroidered Silk Saree", Quantity: 1, Price: decimal.NewFromInt(4999)},
			},
			subtotal: decimal.NewFromInt(4999),
			shipping: decimal.Zero,
			status:   "Processing",
		},
	}

	for _, o := range orders {
		itemsJSON, err := json.Marshal(o.items)
		if err != nil {
			return errors.Wrapf(err, "marshal items for %s", o.id)
		}
		total := o.subtotal.Add(o.shipping)
		if _, err := pool.Exec(ctx, upsertOrderSQL, o.id, o.userID, itemsJSON, o.subtotal, total, o.shipping, o.status); err != nil {
			return errors.Wrapf(err, "create order %s", o.id)
		}
		slog.Info("created order", slog.String("id", o.id))
	}
	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	const upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, active)
		VALUES ('default', $1, 'Default admin key', TRUE)
		ON CONFLICT (id) DO UPDATE SET key_hash = EXCLUDED.key_hash, active = TRUE`

	if _, err := pool.Exec(ctx, upsertAPIKeySQL, keyHash); err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"))
	return nil
}
