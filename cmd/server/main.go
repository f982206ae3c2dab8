package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"stocktrail/internal/api"
	"stocktrail/internal/db"
	"stocktrail/internal/store"
)

func main() {
	// .env is optional; variables may come from the environment directly.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("server", flag.ExitOnError)
	dbPath := fs.String("db", envOr("STOCKTRAIL_DB", "stocktrail.sqlite3"), "path to SQLite database file")
	addr := fs.String("addr", envOr("STOCKTRAIL_ADDR", ":8080"), "listen address")
	jwtSecret := fs.String("jwt-secret", os.Getenv("STOCKTRAIL_JWT_SECRET"), "JWT signing key (persisted in the database if empty)")
	fs.Parse(os.Args[1:])

	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	// Migrations are idempotent.
	if err := db.Migrate(database); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Without an explicit secret, use one persisted alongside the data so
	// sessions survive restarts.
	if *jwtSecret == "" {
		secret, err := store.GetJWTSecret(context.Background(), database)
		if err != nil {
			log.Fatalf("Failed to load JWT secret: %v", err)
		}
		*jwtSecret = secret
	}

	handler := api.LoggingMiddleware(api.NewRouter(database, *jwtSecret))

	slog.Info("server listening", "addr", *addr, "db", *dbPath)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// envOr returns the environment variable's value, or a fallback if unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
