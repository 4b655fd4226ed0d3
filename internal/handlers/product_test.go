package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/microcommerce/product-service/internal/db"
	"github.com/microcommerce/product-service/internal/models"
)

type publishedCall struct {
	Kind      string
	ProductID string
	Stock     int
}

type fakePublisher struct {
	calls []publishedCall
}

func (p *fakePublisher) PublishProductCreated(_ context.Context, product *models.Product) {
	p.calls = append(p.calls, publishedCall{"created", product.ID, product.Stock})
}

func (p *fakePublisher) PublishProductUpdated(_ context.Context, product *models.Product) {
	p.calls = append(p.calls, publishedCall{"updated", product.ID, product.Stock})
}

func (p *fakePublisher) PublishProductDeleted(_ context.Context, productID string) {
	p.calls = append(p.calls, publishedCall{"deleted", productID, 0})
}

func newTestRouter(t *testing.T) (*gin.Engine, *db.MemoryStore, *fakePublisher) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemoryStore()
	pub := &fakePublisher{}
	h := NewProductHandler(store, pub)

	router := gin.New()
	router.GET("/products", h.ListProducts)
	router.GET("/products/search", h.SearchProducts)
	router.GET("/products/available", h.ListAvailable)
	router.GET("/products/low-stock", h.ListLowStock)
	router.GET("/products/price-range", h.ListByPriceRange)
	router.GET("/products/category/:category", h.ListByCategory)
	router.GET("/products/:id", h.GetProduct)
	router.GET("/products/:id/info", h.GetProductInfo)
	router.POST("/products", h.CreateProduct)
	router.PUT("/products/:id", h.UpdateProduct)
	router.DELETE("/products/:id", h.DeleteProduct)
	router.PATCH("/products/:id/stock", h.UpdateStock)
	return router, store, pub
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateProductPublishesCreated(t *testing.T) {
	router, _, pub := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/products", models.CreateProductRequest{
		Name: "Samsung Galaxy S24", Price: 899.99, Stock: 30, Category: "Smartphones",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	require.Len(t, pub.calls, 1)
	require.Equal(t, publishedCall{"created", created.ID, 30}, pub.calls[0])
}

func TestCreateProductValidation(t *testing.T) {
	router, _, pub := newTestRouter(t)

	// Name too short, price missing.
	w := doJSON(t, router, http.MethodPost, "/products", map[string]any{"name": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Negative price.
	w = doJSON(t, router, http.MethodPost, "/products", map[string]any{"name": "Valid name", "price": -5})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing published on failure.
	require.Empty(t, pub.calls)
}

func TestCreateDuplicateNameConflict(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body := models.CreateProductRequest{Name: "AirPods Pro 2", Price: 279.99, Stock: 50}
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/products", body).Code)

	body.Name = "airpods pro 2"
	require.Equal(t, http.StatusConflict, doJSON(t, router, http.MethodPost, "/products", body).Code)
}

func TestGetProductNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/products/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateStockPublishesUpdatedSnapshot(t *testing.T) {
	router, store, pub := newTestRouter(t)
	p, err := store.Create(context.Background(), models.CreateProductRequest{
		Name: "iPad Air", Price: 699.99, Stock: 40,
	})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPatch, "/products/"+p.ID+"/stock", map[string]int{"stock": 12})
	require.Equal(t, http.StatusOK, w.Code)

	got, err := store.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, 12, got.Stock)

	require.Len(t, pub.calls, 1)
	require.Equal(t, publishedCall{"updated", p.ID, 12}, pub.calls[0])
}

func TestUpdateStockRejectsNegative(t *testing.T) {
	router, store, _ := newTestRouter(t)
	p, err := store.Create(context.Background(), models.CreateProductRequest{
		Name: "iPad Air", Price: 699.99, Stock: 40,
	})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPatch, "/products/"+p.ID+"/stock", map[string]int{"stock": -1})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteProductPublishesDeleted(t *testing.T) {
	router, store, pub := newTestRouter(t)
	p, err := store.Create(context.Background(), models.CreateProductRequest{
		Name: "Dell XPS 13", Price: 999.99, Stock: 20,
	})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodDelete, "/products/"+p.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, pub.calls, 1)
	require.Equal(t, publishedCall{"deleted", p.ID, 0}, pub.calls[0])

	w = doJSON(t, router, http.MethodDelete, "/products/"+p.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Len(t, pub.calls, 1)
}

func TestSearchRequiresQueryParameter(t *testing.T) {
	router, _, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/products/search", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchByNameAndKeyword(t *testing.T) {
	router, store, _ := newTestRouter(t)
	_, err := store.Create(context.Background(), models.CreateProductRequest{
		Name: "Sony WH-1000XM5", Description: "noise-cancelling headphones", Price: 399.99, Stock: 35,
	})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodGet, "/products/search?name=sony", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 1)

	w = doJSON(t, router, http.MethodGet, "/products/search?keyword=noise-cancelling", nil)
	require.Equal(t, http.StatusOK, w.Code)
	products = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 1)
}

func TestProductInfoView(t *testing.T) {
	router, store, _ := newTestRouter(t)
	p, err := store.Create(context.Background(), models.CreateProductRequest{
		Name: "PlayStation 5", Price: 549.99, Stock: 0, Category: "Gaming",
	})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodGet, "/products/"+p.ID+"/info", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var info models.ProductInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	require.Equal(t, p.ID, info.ID)
	require.False(t, info.Available)
}

func TestPriceRangeValidation(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/products/price-range?min=abc&max=10", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/products/price-range?min=1&max=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
