package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/api"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/config"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/repository/postgres"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/service/popup"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/storage"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

// withStatementTimeouts appends conservative server-side timeouts to the DSN
// so a slow query can never pin a connection indefinitely.
func withStatementTimeouts(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.Contains(dsn, "connect_timeout") {
		dsn += sep + "connect_timeout=5"
		sep = "&"
	}
	return dsn + sep + "options=-c%20statement_timeout%3D15000"
}

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to PostgreSQL
	if cfg.Database.URL == "" {
		log.Fatal("Database URL not configured (set database.url or DATABASE_URL)")
	}
	db, err := sql.Open("postgres", withStatementTimeouts(cfg.Database.URL))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		pingCancel()
		log.Fatalf("Database ping failed: %v", err)
	}
	pingCancel()
	log.Println("PostgreSQL connected")

	// Connect to Redis for the suppression store. A failed ping is a warning,
	// not fatal: suppression reads degrade to "not suppressed" and the
	// service stays up.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel = context.WithTimeout(ctx, 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed (%s): %v — suppression records may not persist", cfg.Redis.Addr, err)
	} else {
		log.Printf("Redis connected: %s", cfg.Redis.Addr)
	}
	pingCancel()

	// Initialize popup image storage
	assets, err := storage.New(ctx, cfg.Assets)
	if err != nil {
		log.Fatalf("Failed to initialize asset storage: %v", err)
	}
	log.Printf("Asset storage initialized (type: %s)", cfg.Assets.Type)

	// Wire repository, service, server
	repo := postgres.NewPopupRepo(db)
	popupService := popup.NewService(repo)
	server := api.NewServer(cfg.Server, popupService, assets, redisClient, cfg.Redis.SessionTTL())

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting popup service on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	redisClient.Close()
	db.Close()

	log.Println("Server stopped")
}
