package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-inventory-ledger/internal/handler"
	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/config"
	"go-inventory-ledger/pkg/database"
	"go-inventory-ledger/pkg/jwt"
	"go-inventory-ledger/pkg/lock"
	applog "go-inventory-ledger/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	log := applog.Get()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using process environment")
	}
	cfg := config.Load()
	applog.SetLevel(cfg.LogLevel)

	// 2. Setup Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := model.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// 3. Locks: in-process always, redis on top when several instances share the database
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.RedisAddress != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis %s: %v", cfg.RedisAddress, err)
		}
		defer rdb.Close()
		locker = lock.Chain{locker, lock.NewRedisLocker(rdb, "inventory:")}
		log.Infof("distributed locks enabled (%s)", cfg.RedisAddress)
	}

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	stockRepo := repository.NewStockRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	invoiceRepo := repository.NewInvoiceRepo(db)
	seqRepo := repository.NewSequenceRepo(db)
	reportRepo := repository.NewReportRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)

	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	book := service.NewStockBook(stockRepo, productRepo, locker)
	sequences := service.NewSequenceService(db, seqRepo)

	authService := service.NewAuthService(userRepo, roleRepo, privilegeRepo, tokens)
	catalogService := service.NewCatalogService(db, productRepo, stockRepo, book, wsHub)
	partyService := service.NewPartyService(db, supplierRepo, customerRepo, cfg.PhoneRegion)
	purchaseService := service.NewPurchaseService(db, purchaseRepo, supplierRepo, productRepo, book, sequences, wsHub)
	salesService := service.NewSalesService(db, saleRepo, invoiceRepo, productRepo, book, sequences, wsHub)
	invoiceService := service.NewInvoiceService(db, invoiceRepo, saleRepo, sequences, locker, cfg.GSTRate)
	reportService := service.NewReportService(saleRepo, purchaseRepo)
	dashService := service.NewDashboardService(reportRepo, cfg.LowStockThreshold)

	// 6. Seed default privileges, roles, and admin user
	if err := authService.Seed(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		applog.LogError("main", "Seed", "seeding privileges, roles and admin", nil, err)
	}

	handlers := &handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Inventory: handler.NewInventoryHandler(catalogService),
		Party:     handler.NewPartyHandler(partyService),
		Purchase:  handler.NewPurchaseHandler(purchaseService),
		Sales:     handler.NewSalesHandler(salesService),
		Invoice:   handler.NewInvoiceHandler(invoiceService),
		Report:    handler.NewReportHandler(reportService),
		Dashboard: handler.NewDashboardHandler(dashService),
		Role:      handler.NewRoleHandler(roleRepo, privilegeRepo),
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Inventory Ledger v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 8. Routes
	handler.Mount(app.Group("/api/v1"), handlers, middleware.RequireAuth(tokens, userRepo))

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	wsHub.Stop()

	log.Info("Server exited")
}
