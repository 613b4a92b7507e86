package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"travel-route-service/internal/adapters/repositories"
	"travel-route-service/internal/config"
	"travel-route-service/internal/platform/db"
)

// dbtool provisions the PostgreSQL variant of the schema for production
// deployments. The server itself runs on SQLite for local use.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	maxConns, err := strconv.Atoi(config.Get("DB_MAX_CONNS", "4"))
	if err != nil {
		log.Fatalf("invalid DB_MAX_CONNS: %v", err)
	}

	conn, err := db.Open(databaseURL, maxConns)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitPostgresSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}
