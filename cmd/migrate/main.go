package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/config"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	dir := flag.String("path", "migrations", "Directory holding the *.sql migrations")
	down := flag.Bool("down", false, "Roll back every migration instead of applying them")
	flag.Parse()

	log := logger.NewLogger()
	if err := godotenv.Load(); err != nil {
		log.Warn("ENV", "no .env file, using environment variables")
	}
	cfg := config.Load()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DATABASE", "open: "+err.Error())
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal("MIGRATE", "create driver: "+err.Error())
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+*dir, "postgres", driver)
	if err != nil {
		log.Fatal("MIGRATE", "create instance: "+err.Error())
	}

	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("MIGRATE", "run: "+err.Error())
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.LogProcess("MIGRATE", "schema is empty")
	case err != nil:
		log.Fatal("MIGRATE", "read version: "+err.Error())
	default:
		log.LogProcess("MIGRATE", fmt.Sprintf("schema at version %d (dirty=%t)", version, dirty))
	}
}
