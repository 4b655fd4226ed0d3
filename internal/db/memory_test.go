package db

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/microcommerce/product-service/internal/models"
)

func createProduct(t *testing.T, s ProductStore, name string, stock int) *models.Product {
	t.Helper()
	p, err := s.Create(context.Background(), models.CreateProductRequest{
		Name:     name,
		Price:    99.99,
		Stock:    stock,
		Category: "Test",
	})
	require.NoError(t, err)
	return p
}

func TestMemoryStoreCRUD(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p := createProduct(t, s, "iPhone 15 Pro", 25)
	require.NotEmpty(t, p.ID)

	got, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "iPhone 15 Pro", got.Name)

	updated, err := s.Update(ctx, p.ID, models.UpdateProductRequest{
		Name: "iPhone 15 Pro Max", Price: 1399.99, Stock: 20, Category: "Smartphones",
	})
	require.NoError(t, err)
	require.Equal(t, "iPhone 15 Pro Max", updated.Name)
	require.Equal(t, 20, updated.Stock)

	require.NoError(t, s.Delete(ctx, p.ID))
	_, err = s.GetByID(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, p.ID), ErrNotFound)
}

func TestMemoryStoreDuplicateNameCaseInsensitive(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	createProduct(t, s, "AirPods Pro 2", 10)

	_, err := s.Create(ctx, models.CreateProductRequest{Name: "airpods pro 2", Price: 1, Stock: 1})
	require.ErrorIs(t, err, ErrDuplicateName)

	other := createProduct(t, s, "Sony WH-1000XM5", 10)
	_, err = s.Update(ctx, other.ID, models.UpdateProductRequest{Name: "AIRPODS PRO 2", Price: 1, Stock: 1})
	require.ErrorIs(t, err, ErrDuplicateName)

	// A product may keep its own name on update.
	_, err = s.Update(ctx, other.ID, models.UpdateProductRequest{Name: "sony wh-1000xm5", Price: 2, Stock: 3})
	require.NoError(t, err)
}

func TestAdjustStockAppliesSignedDelta(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p := createProduct(t, s, "iPad Air", 40)

	newStock, err := s.AdjustStock(ctx, p.ID, -15)
	require.NoError(t, err)
	require.Equal(t, 25, newStock)

	newStock, err = s.AdjustStock(ctx, p.ID, +5)
	require.NoError(t, err)
	require.Equal(t, 30, newStock)
}

func TestAdjustStockNeverGoesNegative(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p := createProduct(t, s, "PlayStation 5", 5)

	_, err := s.AdjustStock(ctx, p.ID, -8)
	require.ErrorIs(t, err, ErrInsufficientStock)

	got, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 5, got.Stock)

	// Down to exactly zero is allowed.
	newStock, err := s.AdjustStock(ctx, p.ID, -5)
	require.NoError(t, err)
	require.Equal(t, 0, newStock)
}

func TestAdjustStockUnknownProduct(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.AdjustStock(context.Background(), "missing", -1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAdjustStockConcurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p := createProduct(t, s, "Logitech MX Master 3S", 500)

	// 100 concurrent decrements of 3 and 100 increments of 1:
	// 500 - 300 + 100 = 300 exactly, or updates were lost.
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.AdjustStock(ctx, p.ID, -3)
			require.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.AdjustStock(ctx, p.ID, +1)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 300, got.Stock)
}

func TestMemoryStoreFinders(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Create(ctx, models.CreateProductRequest{
		Name: "Samsung Galaxy S24", Description: "Samsung smartphone", Price: 899.99, Stock: 30, Category: "Smartphones",
	})
	require.NoError(t, err)
	_, err = s.Create(ctx, models.CreateProductRequest{
		Name: "Dell XPS 13", Description: "Dell ultrabook", Price: 999.99, Stock: 0, Category: "Computers",
	})
	require.NoError(t, err)

	byName, err := s.SearchByName(ctx, "galaxy")
	require.NoError(t, err)
	require.Len(t, byName, 1)

	byKeyword, err := s.SearchByKeyword(ctx, "ultrabook")
	require.NoError(t, err)
	require.Len(t, byKeyword, 1)
	require.Equal(t, "Dell XPS 13", byKeyword[0].Name)

	byCategory, err := s.FindByCategory(ctx, "Smartphones")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	byPrice, err := s.FindByPriceRange(ctx, 900, 1100)
	require.NoError(t, err)
	require.Len(t, byPrice, 1)
	require.Equal(t, "Dell XPS 13", byPrice[0].Name)

	available, err := s.FindAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	require.Equal(t, "Samsung Galaxy S24", available[0].Name)

	low, err := s.FindLowStock(ctx, 5)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "Dell XPS 13", low[0].Name)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}

func TestSeedOnlyPopulatesEmptyStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, Seed(ctx, s))
	count, err := s.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 10, count)

	// Second run is a no-op.
	require.NoError(t, Seed(ctx, s))
	count, err = s.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 10, count)

	galaxy, err := s.SearchByName(ctx, "Samsung Galaxy S24")
	require.NoError(t, err)
	require.Len(t, galaxy, 1)
	require.Equal(t, 30, galaxy[0].Stock)
}
