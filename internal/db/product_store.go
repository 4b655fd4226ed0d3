package db

import (
	"context"
	"errors"

	"github.com/microcommerce/product-service/internal/models"
)

var (
	// ErrNotFound means the referenced product does not exist.
	ErrNotFound = errors.New("product not found")

	// ErrDuplicateName means another product already uses the name
	// (names are unique case-insensitively).
	ErrDuplicateName = errors.New("product name already exists")

	// ErrInsufficientStock means an adjustment would drive stock below zero.
	// The adjustment is rejected; a negative counter is never written.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductStore is the single gateway to the product documents. The REST
// handlers, the order-event consumer and the publisher's post-mutation reads
// all go through the same implementation, so stock changes share one atomic
// primitive.
type ProductStore interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error)
	Update(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id string) error

	// UpdateStock sets the counter to an absolute value (REST PATCH).
	UpdateStock(ctx context.Context, id string, stock int) (*models.Product, error)

	// AdjustStock applies a signed delta atomically with respect to every
	// concurrent mutation of the same product and returns the new counter.
	// It returns ErrInsufficientStock without writing when the result would
	// be negative.
	AdjustStock(ctx context.Context, id string, delta int) (int, error)

	SearchByName(ctx context.Context, name string) ([]models.Product, error)
	SearchByKeyword(ctx context.Context, keyword string) ([]models.Product, error)
	FindByCategory(ctx context.Context, category string) ([]models.Product, error)
	FindByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]models.Product, error)
	FindAvailable(ctx context.Context) ([]models.Product, error)
	FindLowStock(ctx context.Context, threshold int) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
}
