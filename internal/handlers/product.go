package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/microcommerce/product-service/internal/db"
	"github.com/microcommerce/product-service/internal/models"
)

// ProductEventPublisher is the slice of the publisher the handlers need.
// Each successful mutation triggers the matching publish synchronously after
// the store commit.
type ProductEventPublisher interface {
	PublishProductCreated(ctx context.Context, product *models.Product)
	PublishProductUpdated(ctx context.Context, product *models.Product)
	PublishProductDeleted(ctx context.Context, productID string)
}

type ProductHandler struct {
	store db.ProductStore
	pub   ProductEventPublisher
}

func NewProductHandler(store db.ProductStore, pub ProductEventPublisher) *ProductHandler {
	return &ProductHandler{
		store: store,
		pub:   pub,
	}
}

func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, db.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": "a product with this name already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// HealthCheck returns server status
func (h *ProductHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "product-service"})
}

// ListProducts returns all products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.store.GetAll(c.Request.Context())
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct returns a single product
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetProductInfo returns the slim inter-service view of a product
func (h *ProductHandler) GetProductInfo(c *gin.Context) {
	product, err := h.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product.Info())
}

// CreateProduct creates a new product and publishes PRODUCT_CREATED
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.store.Create(c.Request.Context(), req)
	if err != nil {
		storeError(c, err)
		return
	}

	log.Printf("✅ Created product %s (%s)", product.ID, product.Name)
	h.pub.PublishProductCreated(c.Request.Context(), product)

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct updates a product and publishes PRODUCT_UPDATED
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.store.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		storeError(c, err)
		return
	}

	log.Printf("✅ Updated product %s (%s)", product.ID, product.Name)
	h.pub.PublishProductUpdated(c.Request.Context(), product)

	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product and publishes PRODUCT_DELETED
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		storeError(c, err)
		return
	}

	log.Printf("✅ Deleted product %s", id)
	h.pub.PublishProductDeleted(c.Request.Context(), id)

	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// UpdateStock sets the stock counter to an absolute value and publishes
// PRODUCT_UPDATED
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	var req models.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.store.UpdateStock(c.Request.Context(), c.Param("id"), *req.Stock)
	if err != nil {
		storeError(c, err)
		return
	}

	log.Printf("✅ Stock set to %d for product %s", product.Stock, product.ID)
	h.pub.PublishProductUpdated(c.Request.Context(), product)

	c.JSON(http.StatusOK, product)
}

// SearchProducts searches by name or by keyword across name and description
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if name := c.Query("name"); name != "" {
		products, err := h.store.SearchByName(ctx, name)
		if err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
		return
	}

	if keyword := c.Query("keyword"); keyword != "" {
		products, err := h.store.SearchByKeyword(ctx, keyword)
		if err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "name or keyword query parameter required"})
}

// ListByCategory returns all products in a category
func (h *ProductHandler) ListByCategory(c *gin.Context) {
	products, err := h.store.FindByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// ListByPriceRange returns products priced within [min, max]
func (h *ProductHandler) ListByPriceRange(c *gin.Context) {
	minPrice, err := strconv.ParseFloat(c.Query("min"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min price"})
		return
	}
	maxPrice, err := strconv.ParseFloat(c.Query("max"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max price"})
		return
	}

	products, err := h.store.FindByPriceRange(c.Request.Context(), minPrice, maxPrice)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// ListAvailable returns products with stock remaining
func (h *ProductHandler) ListAvailable(c *gin.Context) {
	products, err := h.store.FindAvailable(c.Request.Context())
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// ListLowStock returns products at or below the stock threshold
func (h *ProductHandler) ListLowStock(c *gin.Context) {
	threshold := 5
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold"})
			return
		}
		threshold = parsed
	}

	products, err := h.store.FindLowStock(c.Request.Context(), threshold)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}
