package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/microcommerce/product-service/internal/cache"
	"github.com/microcommerce/product-service/internal/models"
)

// CachedProductStore wraps a ProductStore with read-through Redis caching for
// the hot lookups. Every mutation, including the consumer's AdjustStock,
// invalidates the affected keys.
type CachedProductStore struct {
	store ProductStore
	cache *cache.RedisCache
}

func NewCachedProductStore(store ProductStore, cache *cache.RedisCache) *CachedProductStore {
	return &CachedProductStore{
		store: store,
		cache: cache,
	}
}

// Cache key helpers
func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func allProductsKey() string {
	return "products:all"
}

func (r *CachedProductStore) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, productKey(id)); err != nil {
		log.Printf("⚠️ Failed to invalidate product %s: %v", id, err)
	}
	// Drop every cached listing, not just products:all, so any list-style
	// key under products: goes stale-free after a mutation.
	if err := r.cache.DeleteByPattern(ctx, "products:*"); err != nil {
		log.Printf("⚠️ Failed to invalidate product listings: %v", err)
	}
}

// GetAll returns all products (with caching)
func (r *CachedProductStore) GetAll(ctx context.Context) ([]models.Product, error) {
	cacheKey := allProductsKey()

	var products []models.Product
	err := r.cache.Get(ctx, cacheKey, &products)
	if err == nil {
		log.Println("📦 Cache HIT: all products")
		return products, nil
	}

	log.Println("💾 Cache MISS: all products - fetching from store")
	products, err = r.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cacheKey, products); err != nil {
		log.Printf("⚠️ Failed to cache products: %v", err)
	}
	return products, nil
}

// GetByID returns a single product (with caching)
func (r *CachedProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	cacheKey := productKey(id)

	var product models.Product
	err := r.cache.Get(ctx, cacheKey, &product)
	if err == nil {
		log.Printf("📦 Cache HIT: product %s", id)
		return &product, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.Printf("⚠️ Cache error: %v", err)
	}

	log.Printf("💾 Cache MISS: product %s - fetching from store", id)
	p, err := r.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cacheKey, p); err != nil {
		log.Printf("⚠️ Failed to cache product %s: %v", id, err)
	}
	return p, nil
}

func (r *CachedProductStore) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	p, err := r.store.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, p.ID)
	return p, nil
}

func (r *CachedProductStore) Update(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	p, err := r.store.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return p, nil
}

func (r *CachedProductStore) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedProductStore) UpdateStock(ctx context.Context, id string, stock int) (*models.Product, error) {
	p, err := r.store.UpdateStock(ctx, id, stock)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return p, nil
}

func (r *CachedProductStore) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	newStock, err := r.store.AdjustStock(ctx, id, delta)
	if err != nil {
		return 0, err
	}
	r.invalidate(ctx, id)
	return newStock, nil
}

// Secondary finders always hit the store; their result sets change too often
// to be worth invalidation bookkeeping.

func (r *CachedProductStore) SearchByName(ctx context.Context, name string) ([]models.Product, error) {
	return r.store.SearchByName(ctx, name)
}

func (r *CachedProductStore) SearchByKeyword(ctx context.Context, keyword string) ([]models.Product, error) {
	return r.store.SearchByKeyword(ctx, keyword)
}

func (r *CachedProductStore) FindByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return r.store.FindByCategory(ctx, category)
}

func (r *CachedProductStore) FindByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]models.Product, error) {
	return r.store.FindByPriceRange(ctx, minPrice, maxPrice)
}

func (r *CachedProductStore) FindAvailable(ctx context.Context) ([]models.Product, error) {
	return r.store.FindAvailable(ctx)
}

func (r *CachedProductStore) FindLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	return r.store.FindLowStock(ctx, threshold)
}

func (r *CachedProductStore) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx)
}
