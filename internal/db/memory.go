package db

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/microcommerce/product-service/internal/models"
)

// MemoryStore is an in-process ProductStore used for local development and
// tests (STORE_BACKEND=memory). It honors the same atomicity contract as the
// Mongo repository: AdjustStock holds the lock for the whole check-and-write.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]models.Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]models.Product)}
}

func (s *MemoryStore) snapshot(match func(models.Product) bool) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var products []models.Product
	for _, p := range s.m {
		if match(p) {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

func (s *MemoryStore) nameTaken(name, excludeID string) bool {
	for id, p := range s.m {
		if id != excludeID && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) GetAll(ctx context.Context) ([]models.Product, error) {
	return s.snapshot(func(models.Product) bool { return true }), nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(req.Name, "") {
		return nil, ErrDuplicateName
	}

	p := models.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
	}
	s.m[p.ID] = p
	return &p, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.nameTaken(req.Name, id) {
		return nil, ErrDuplicateName
	}

	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.Stock = req.Stock
	p.Category = req.Category
	s.m[id] = p
	return &p, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func (s *MemoryStore) UpdateStock(ctx context.Context, id string, stock int) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Stock = stock
	s.m[id] = p
	return &p, nil
}

func (s *MemoryStore) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return 0, ErrNotFound
	}
	if p.Stock+delta < 0 {
		return 0, ErrInsufficientStock
	}
	p.Stock += delta
	s.m[id] = p
	return p.Stock, nil
}

func (s *MemoryStore) SearchByName(ctx context.Context, name string) ([]models.Product, error) {
	term := strings.ToLower(name)
	return s.snapshot(func(p models.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), term)
	}), nil
}

func (s *MemoryStore) SearchByKeyword(ctx context.Context, keyword string) ([]models.Product, error) {
	term := strings.ToLower(keyword)
	return s.snapshot(func(p models.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term)
	}), nil
}

func (s *MemoryStore) FindByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.snapshot(func(p models.Product) bool { return p.Category == category }), nil
}

func (s *MemoryStore) FindByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]models.Product, error) {
	return s.snapshot(func(p models.Product) bool {
		return p.Price >= minPrice && p.Price <= maxPrice
	}), nil
}

func (s *MemoryStore) FindAvailable(ctx context.Context) ([]models.Product, error) {
	return s.snapshot(func(p models.Product) bool { return p.Stock > 0 }), nil
}

func (s *MemoryStore) FindLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	return s.snapshot(func(p models.Product) bool { return p.Stock <= threshold }), nil
}

func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.m)), nil
}
