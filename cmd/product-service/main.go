package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/microcommerce/product-service/internal/cache"
	"github.com/microcommerce/product-service/internal/config"
	"github.com/microcommerce/product-service/internal/consumer"
	"github.com/microcommerce/product-service/internal/db"
	"github.com/microcommerce/product-service/internal/discovery"
	"github.com/microcommerce/product-service/internal/handlers"
	"github.com/microcommerce/product-service/internal/messaging"
	"github.com/microcommerce/product-service/internal/publisher"
	"github.com/microcommerce/product-service/internal/security"
)

const (
	serviceName = "product-service"
	serviceID   = "product-service-1"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the document store
	var store db.ProductStore
	switch cfg.StoreBackend {
	case "memory":
		log.Println("⚠️ Using in-memory store, data will not survive a restart")
		store = db.NewMemoryStore()
	default:
		database, err := db.NewMongoDB(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer database.Close()
		store = db.NewProductRepository(database)
	}

	// Connect to Redis
	redisCache, err := cache.NewRedisCache(cfg.RedisHost, cfg.RedisPort, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	store = db.NewCachedProductStore(store, redisCache)

	if cfg.SeedData {
		if err := db.Seed(ctx, store); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	// Connect to RabbitMQ and declare the topology
	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitHost, cfg.RabbitPort, cfg.RabbitUser, cfg.RabbitPassword)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	if err := messaging.DeclareTopology(rabbitMQ); err != nil {
		log.Fatalf("Failed to declare broker topology: %v", err)
	}

	productPublisher := publisher.NewProductPublisher(rabbitMQ)

	// Register with Consul
	if cfg.ConsulEnabled {
		consul, err := discovery.NewConsulClient(cfg.ConsulHost, cfg.ConsulPort)
		if err != nil {
			log.Fatalf("Failed to connect to Consul: %v", err)
		}
		err = consul.Register(discovery.ServiceConfig{
			Name: serviceName,
			ID:   serviceID,
			Port: cfg.HTTPPort,
			Tags: []string{"api", "products"},
		})
		if err != nil {
			log.Fatalf("Failed to register service: %v", err)
		}
		defer consul.Deregister(serviceID)
	}

	// Start event consumers
	orderDeliveries, err := rabbitMQ.Consume(messaging.OrderQueue, cfg.PrefetchCount)
	if err != nil {
		log.Fatalf("Failed to consume order events: %v", err)
	}
	orderConsumer := consumer.NewOrderConsumer(store, productPublisher, redisCache,
		cfg.WorkerCount, cfg.HandlerTimeout, cfg.DedupTTL)
	go orderConsumer.Start(ctx, orderDeliveries)

	userDeliveries, err := rabbitMQ.Consume(messaging.UserQueue, cfg.PrefetchCount)
	if err != nil {
		log.Fatalf("Failed to consume user events: %v", err)
	}
	userConsumer := consumer.NewUserConsumer(cfg.WorkerCount)
	go userConsumer.Start(userDeliveries)

	// Setup router
	productHandler := handlers.NewProductHandler(store, productPublisher)
	auth := security.AuthMiddleware(cfg.JWTSecret)

	router := gin.Default()
	router.GET("/health", productHandler.HealthCheck)
	router.GET("/products", productHandler.ListProducts)
	router.GET("/products/search", productHandler.SearchProducts)
	router.GET("/products/available", productHandler.ListAvailable)
	router.GET("/products/low-stock", productHandler.ListLowStock)
	router.GET("/products/price-range", productHandler.ListByPriceRange)
	router.GET("/products/category/:category", productHandler.ListByCategory)
	router.GET("/products/:id", productHandler.GetProduct)
	router.GET("/products/:id/info", productHandler.GetProductInfo)
	router.POST("/products", auth, productHandler.CreateProduct)
	router.PUT("/products/:id", auth, productHandler.UpdateProduct)
	router.DELETE("/products/:id", auth, productHandler.DeleteProduct)
	router.PATCH("/products/:id/stock", auth, productHandler.UpdateStock)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("🚀 %s starting on http://localhost%s", serviceName, cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}
}
