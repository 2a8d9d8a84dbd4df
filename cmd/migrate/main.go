package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/amielle/duty-roster/internal/config"
	"github.com/amielle/duty-roster/internal/database"
)

// Applies goose migrations from the migrations directory.
//
//	go run ./cmd/migrate            # migrate up
//	go run ./cmd/migrate -down      # roll back one
//	go run ./cmd/migrate -status    # show status
func main() {
	down := flag.Bool("down", false, "roll back the latest migration")
	status := flag.Bool("status", false, "print migration status")
	dir := flag.String("dir", "migrations", "migrations directory")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("mysql"); err != nil {
		log.Fatalf("set dialect: %v", err)
	}

	ctx := context.Background()
	switch {
	case *status:
		err = goose.StatusContext(ctx, db, *dir)
	case *down:
		err = goose.DownContext(ctx, db, *dir)
	default:
		err = goose.UpContext(ctx, db, *dir)
	}
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
}
