package models

// Product is a catalog entry stored in MongoDB.
// Stock is the shared counter mutated by both the REST API and the
// order-event consumer; it must never be committed below zero.
type Product struct {
	ID          string  `json:"id" bson:"_id,omitempty"`
	Name        string  `json:"name" bson:"name"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64 `json:"price" bson:"price"`
	Stock       int     `json:"stock" bson:"stock"`
	Category    string  `json:"category,omitempty" bson:"category,omitempty"`
}

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=100"`
	Description string  `json:"description" binding:"max=500"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"min=0"`
	Category    string  `json:"category" binding:"max=50"`
}

type UpdateProductRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=100"`
	Description string  `json:"description" binding:"max=500"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"min=0"`
	Category    string  `json:"category" binding:"max=50"`
}

type UpdateStockRequest struct {
	Stock *int `json:"stock" binding:"required,min=0"`
}

// ProductInfo is the slim view served to other services; no description,
// just the fields they need to price and validate an order line.
type ProductInfo struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Category  string  `json:"category,omitempty"`
	Stock     int     `json:"stock"`
	Available bool    `json:"available"`
}

// Info builds the inter-service view of a product.
func (p *Product) Info() ProductInfo {
	return ProductInfo{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Category:  p.Category,
		Stock:     p.Stock,
		Available: p.Stock > 0,
	}
}
