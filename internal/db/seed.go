package db

import (
	"context"
	"log"

	"github.com/microcommerce/product-service/internal/models"
)

var demoProducts = []models.CreateProductRequest{
	{Name: "iPhone 15 Pro", Description: "Apple flagship smartphone with the A17 Pro chip", Price: 1199.99, Stock: 25, Category: "Smartphones"},
	{Name: "Samsung Galaxy S24", Description: "Samsung smartphone with Dynamic AMOLED 2X display", Price: 899.99, Stock: 30, Category: "Smartphones"},
	{Name: "MacBook Air M3", Description: "Apple 13-inch laptop with the M3 chip", Price: 1299.99, Stock: 15, Category: "Computers"},
	{Name: "Dell XPS 13", Description: "Dell ultrabook with InfinityEdge display", Price: 999.99, Stock: 20, Category: "Computers"},
	{Name: "AirPods Pro 2", Description: "Apple wireless earbuds with active noise cancellation", Price: 279.99, Stock: 50, Category: "Audio"},
	{Name: "Sony WH-1000XM5", Description: "Sony wireless noise-cancelling headphones", Price: 399.99, Stock: 35, Category: "Audio"},
	{Name: "iPad Air", Description: "Apple 10.9-inch tablet with the M1 chip", Price: 699.99, Stock: 40, Category: "Tablets"},
	{Name: "Nintendo Switch OLED", Description: "Nintendo handheld console with OLED screen", Price: 349.99, Stock: 45, Category: "Gaming"},
	{Name: "PlayStation 5", Description: "Sony next-generation gaming console", Price: 549.99, Stock: 8, Category: "Gaming"},
	{Name: "Logitech MX Master 3S", Description: "Ergonomic wireless mouse for professionals", Price: 109.99, Stock: 75, Category: "Accessories"},
}

// Seed loads demo products into an empty store. A store that already has data
// is left untouched.
func Seed(ctx context.Context, store ProductStore) error {
	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Store already initialized with %d products", count)
		return nil
	}

	log.Println("Seeding demo products...")
	for _, req := range demoProducts {
		if _, err := store.Create(ctx, req); err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d demo products", len(demoProducts))
	return nil
}
