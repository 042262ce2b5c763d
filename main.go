package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"arena-scheduler/handlers"
	"arena-scheduler/middleware"
	"arena-scheduler/models"
	"arena-scheduler/services"
	"arena-scheduler/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New()

	// GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}
	allowedOrigins = strings.Join(origins, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// The ledger is Postgres-backed when DATABASE_URL is set; otherwise an
	// in-memory ledger keeps dev runs working without a database.
	var ledger services.Ledger
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatal("failed to connect to database:", err)
		}
		if err := db.AutoMigrate(
			&models.PlayerWallet{},
			&models.WalletTransaction{},
		); err != nil {
			log.Fatal("failed to migrate database:", err)
		}
		ledger = services.NewWalletLedger(db)
	} else {
		log.Println("DATABASE_URL not set — using in-memory ledger, balances will not persist")
		ledger = services.NewMemoryLedger()
	}

	state := services.NewArenaState(models.DefaultCatalog(), ledger)
	eventService := services.NewEventService(state)
	bracketService := services.NewBracketService(state)
	settlementService := services.NewSettlementService(state)

	tickInterval := time.Second
	if v := os.Getenv("TICK_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			tickInterval = time.Duration(ms) * time.Millisecond
		}
	}
	ticksPerBeat := int64(1)
	if v := os.Getenv("TICKS_PER_BEAT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ticksPerBeat = n
		}
	}

	driver := workers.NewTickDriver(state, eventService, bracketService, tickInterval, ticksPerBeat)
	if err := driver.Start(); err != nil {
		log.Fatal("failed to start tick driver:", err)
	}
	defer driver.Stop()

	handlers.SetupArenaRoutes(app, eventService, bracketService, settlementService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server running on http://localhost:%s", port)
	log.Printf("Tick driver running (%d tick(s) every %s)", ticksPerBeat, tickInterval)
	log.Println("GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
