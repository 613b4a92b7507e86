package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"travel-route-service/internal/adapters/cache"
	"travel-route-service/internal/adapters/repositories"
	"travel-route-service/internal/api"
	"travel-route-service/internal/config"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/places.json")
	port := config.Get("PORT", "8080")
	redisAddr := config.Get("REDIS_ADDR", "")
	cacheTTL := config.Get("ROUTE_CACHE_TTL", "5m")

	jwtSecret := os.Getenv("JWT_SECRET")
	if strings.TrimSpace(jwtSecret) == "" {
		log.Fatal("JWT_SECRET is required")
	}

	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Initialize schema and seed demo places on startup for local runs.
	if err := initAndSeed(db, seedPath); err != nil {
		log.Fatal(err)
	}

	routeRepo := repositories.NewSqliteRouteRepository(db)
	placeRepo := repositories.NewSqlitePlaceRepository(db)

	// Route snapshot caching is optional; without Redis every read hits SQLite.
	var routeCache *cache.RedisRouteCache
	if redisAddr != "" {
		ttl, err := time.ParseDuration(cacheTTL)
		if err != nil {
			log.Fatalf("invalid ROUTE_CACHE_TTL %q: %v", cacheTTL, err)
		}
		routeCache = cache.NewRedisRouteCache(redis.NewClient(&redis.Options{Addr: redisAddr}), ttl)
	}

	router, stopLimiter := api.NewRouter(api.RouterConfig{
		Routes:    routeRepo,
		Points:    routeRepo,
		Places:    placeRepo,
		Cache:     routeCache,
		JWTSecret: []byte(jwtSecret),
	})
	defer stopLimiter()

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); os.IsNotExist(err) {
		log.Printf("seed file %q not found, skipping", seedPath)
		return nil
	}

	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
