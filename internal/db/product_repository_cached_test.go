package db

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/microcommerce/product-service/internal/cache"
	"github.com/microcommerce/product-service/internal/models"
)

func newCachedStore(t *testing.T) (*CachedProductStore, *MemoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	redisCache := cache.NewRedisCacheFromClient(client, time.Minute)
	inner := NewMemoryStore()
	return NewCachedProductStore(inner, redisCache), inner, mr
}

func TestCachedGetByIDReadThrough(t *testing.T) {
	cached, inner, mr := newCachedStore(t)
	ctx := context.Background()

	p := createProduct(t, inner, "MacBook Air M3", 15)

	// First read populates the cache.
	got, err := cached.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 15, got.Stock)
	require.True(t, mr.Exists("product:"+p.ID))

	// Second read is served from cache even when the store moved on.
	_, err = inner.UpdateStock(ctx, p.ID, 3)
	require.NoError(t, err)
	got, err = cached.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 15, got.Stock)
}

func TestAdjustStockInvalidatesCache(t *testing.T) {
	cached, _, mr := newCachedStore(t)
	ctx := context.Background()

	p, err := cached.Create(ctx, models.CreateProductRequest{Name: "Nintendo Switch OLED", Price: 349.99, Stock: 45})
	require.NoError(t, err)

	_, err = cached.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists("product:"+p.ID))

	newStock, err := cached.AdjustStock(ctx, p.ID, -5)
	require.NoError(t, err)
	require.Equal(t, 40, newStock)
	require.False(t, mr.Exists("product:"+p.ID))

	// The next read sees the adjusted value.
	got, err := cached.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 40, got.Stock)
}

func TestMutationsInvalidateListCache(t *testing.T) {
	cached, _, mr := newCachedStore(t)
	ctx := context.Background()

	p, err := cached.Create(ctx, models.CreateProductRequest{Name: "AirPods Pro 2", Price: 279.99, Stock: 50})
	require.NoError(t, err)

	_, err = cached.GetAll(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("products:all"))

	// Any list-style key under products: is swept too.
	require.NoError(t, mr.Set("products:category:Audio", "[]"))

	require.NoError(t, cached.Delete(ctx, p.ID))
	require.False(t, mr.Exists("products:all"))
	require.False(t, mr.Exists("products:category:Audio"))

	products, err := cached.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, products)
}

func TestCachedStorePropagatesSentinelErrors(t *testing.T) {
	cached, _, _ := newCachedStore(t)
	ctx := context.Background()

	_, err := cached.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = cached.AdjustStock(ctx, "missing", -1)
	require.ErrorIs(t, err, ErrNotFound)
}
