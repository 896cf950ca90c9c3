package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"parfum/internal/cart"
	"parfum/internal/handlers"
	"parfum/internal/middleware"
	"parfum/internal/models"
	"parfum/internal/repositories"
	"parfum/internal/services"
	"parfum/pkg/rabbitmq"
	"parfum/pkg/sheets"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("SHEETS_URL", "https://script.google.com/macros/s/AKfycbxqmwugZ9S7Dw3ig0a-c_nKlS-9p2VjkawtDLmoFhzGgUNKY8UKdz0p_q1JKeFSWZIb/exec")
	viper.SetDefault("SHEETS_TIMEOUT_SECONDS", 10)
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_DSN", "parfum.db")
	viper.SetDefault("RABBITMQ_URL", "") // empty disables order events
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")

	// --- Order archive (GORM, sqlite by default, postgres via config) ---
	orderRepo, err := openOrderArchive(viper.GetString("DATABASE_DRIVER"), viper.GetString("DATABASE_DSN"))
	if err != nil {
		log.Printf("Order archive unavailable, archiving in memory only: %v", err)
		orderRepo = repositories.NewMockOrderRepository()
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if url := viper.GetString("RABBITMQ_URL"); url != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: url})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	}

	// --- Spreadsheet backend client ---
	sheetsClient := sheets.NewClient(sheets.Config{
		BaseURL: viper.GetString("SHEETS_URL"),
		Timeout: time.Duration(viper.GetInt("SHEETS_TIMEOUT_SECONDS")) * time.Second,
	})

	// --- Services ---
	catalogService := services.NewCatalogService(sheetsClient)
	var events services.EventPublisher
	if mqClient != nil {
		events = mqClient
	}
	orderService := services.NewOrderService(sheetsClient, orderRepo, events)

	// --- Carts ---
	carts := cart.NewManager()

	// Warm the catalog snapshot so cart adds work before the first
	// storefront request. Failures fall back to the sample catalog.
	loadCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	products := catalogService.Load(loadCtx)
	cancel()
	log.Printf("Catalog loaded with %d products", len(products))

	// --- Fiber app ---
	app := buildApp(catalogService, orderService, carts)

	// --- Order events consumer ---
	if mqClient != nil {
		log.Println("Starting RabbitMQ consumer for order events...")
		if consumerErr := mqClient.ConsumeOrderEvents(func(msg amqp.Delivery) error {
			log.Printf("Received order event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
			return nil
		}); consumerErr != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
		}
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// buildApp assembles the Fiber app with all storefront routes.
func buildApp(catalogService *services.CatalogService, orderService *services.OrderService, carts *cart.Manager) *fiber.App {
	app := fiber.New()
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1", middleware.Session())

	handlers.NewCatalogHandler(catalogService).RegisterRoutes(apiV1)
	handlers.NewCartHandler(carts, catalogService).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(orderService, carts).RegisterRoutes(apiV1)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app
}

// openOrderArchive opens the configured database and migrates the order
// table. sqlite keeps single-host deployments dependency-free; postgres is
// for shops that already run one.
func openOrderArchive(driver, dsn string) (repositories.OrderRepository, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.Order{}); err != nil {
		return nil, err
	}
	return repositories.NewGORMOrderRepository(db), nil
}
