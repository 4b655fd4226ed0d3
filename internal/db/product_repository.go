package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/microcommerce/product-service/internal/models"
)

const productCollection = "products"

// ProductRepository is the MongoDB-backed ProductStore.
type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(database *MongoDB) *ProductRepository {
	return &ProductRepository{coll: database.Collection(productCollection)}
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M) ([]models.Product, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// GetAll returns all products
func (r *ProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.M{})
}

// GetByID returns a single product
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) existsByName(ctx context.Context, name, excludeID string) (bool, error) {
	filter := bson.M{"name": bson.M{
		"$regex":   "^" + regexp.QuoteMeta(name) + "$",
		"$options": "i",
	}}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check product name: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new product with a store-generated id
func (r *ProductRepository) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	taken, err := r.existsByName(ctx, req.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	p := models.Product{
		ID:          primitive.NewObjectID().Hex(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
	}

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &p, nil
}

// Update replaces every mutable field of an existing product
func (r *ProductRepository) Update(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	taken, err := r.existsByName(ctx, req.Name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateName
	}

	update := bson.M{"$set": bson.M{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"stock":       req.Stock,
		"category":    req.Category,
	}}

	var p models.Product
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &p, nil
}

// Delete removes a product
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStock sets the stock counter to an absolute value
func (r *ProductRepository) UpdateStock(ctx context.Context, id string, stock int) (*models.Product, error) {
	var p models.Product
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"stock": stock}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}
	return &p, nil
}

// AdjustStock applies a signed delta in a single server-side $inc. The filter
// refuses the write when the result would go negative, so concurrent
// adjustments for the same product can never lose an update or commit a
// negative counter.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}

	var p models.Product
	err := r.coll.FindOneAndUpdate(ctx,
		filter,
		bson.M{"$inc": bson.M{"stock": delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if err == nil {
		return p.Stock, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}

	// Filter missed: either the product is gone or the guard refused it.
	count, cerr := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if cerr != nil {
		return 0, fmt.Errorf("failed to adjust stock: %w", cerr)
	}
	if count == 0 {
		return 0, ErrNotFound
	}
	return 0, ErrInsufficientStock
}

// SearchByName returns products whose name contains the term (case insensitive)
func (r *ProductRepository) SearchByName(ctx context.Context, name string) ([]models.Product, error) {
	return r.find(ctx, bson.M{"name": bson.M{
		"$regex":   regexp.QuoteMeta(name),
		"$options": "i",
	}})
}

// SearchByKeyword searches name and description (case insensitive)
func (r *ProductRepository) SearchByKeyword(ctx context.Context, keyword string) ([]models.Product, error) {
	pattern := bson.M{"$regex": regexp.QuoteMeta(keyword), "$options": "i"}
	return r.find(ctx, bson.M{"$or": []bson.M{
		{"name": pattern},
		{"description": pattern},
	}})
}

// FindByCategory returns all products in a category
func (r *ProductRepository) FindByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return r.find(ctx, bson.M{"category": category})
}

// FindByPriceRange returns products priced within [minPrice, maxPrice]
func (r *ProductRepository) FindByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]models.Product, error) {
	return r.find(ctx, bson.M{"price": bson.M{"$gte": minPrice, "$lte": maxPrice}})
}

// FindAvailable returns products with stock remaining
func (r *ProductRepository) FindAvailable(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.M{"stock": bson.M{"$gt": 0}})
}

// FindLowStock returns products at or below the threshold
func (r *ProductRepository) FindLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	return r.find(ctx, bson.M{"stock": bson.M{"$lte": threshold}})
}

// Count returns the number of products
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
