package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/billing"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/config"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var log = logger.NewLogger()

func main() {
	// CLI flags
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", "", "Admin password")
	name := flag.String("name", "", "Admin full name")
	withCatalog := flag.Bool("catalog", true, "Also seed rooms, tables and the menu")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn("ENV", "no .env file, using environment variables")
	}

	// Fall back to environment variables, then defaults
	*email = firstNonEmpty(*email, os.Getenv("SEED_EMAIL"), "admin@savannah.test")
	*name = firstNonEmpty(*name, os.Getenv("SEED_NAME"), "Hotel Admin")
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *password == "" {
		*password = "password123"
		log.Warn("SEED", "using default password 'password123'. Change immediately in production!")
	}

	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DATABASE", "unable to connect: "+err.Error())
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal("DATABASE", "unable to ping: "+err.Error())
	}
	log.LogProcess("DATABASE", "connected")

	// Seed in a transaction: everything or nothing
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal("SEED", "begin transaction: "+err.Error())
	}
	defer tx.Rollback(ctx)

	q := database.New(tx)

	adminID, err := seedAdmin(ctx, q, *email, *password, *name)
	if err != nil {
		log.Fatal("SEED", "seed admin: "+err.Error())
	}

	if *withCatalog {
		if err := seedRooms(ctx, q); err != nil {
			log.Fatal("SEED", "seed rooms: "+err.Error())
		}
		if err := seedTables(ctx, q); err != nil {
			log.Fatal("SEED", "seed tables: "+err.Error())
		}
		if err := seedMenu(ctx, q); err != nil {
			log.Fatal("SEED", "seed menu: "+err.Error())
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal("SEED", "commit: "+err.Error())
	}

	log.LogProcess("SEED", "completed successfully")
	log.Info("SEED", "admin ID: "+adminID.String())
}

// seedAdmin creates the admin account if the email is not taken yet.
func seedAdmin(ctx context.Context, q *database.Queries, email, password, fullName string) (uuid.UUID, error) {
	existing, err := q.GetStaffByEmail(ctx, email)
	if err == nil {
		log.Info("SEED", fmt.Sprintf("staff '%s' already exists (ID: %s), skipping", email, existing.ID))
		return existing.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("check staff: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	s, err := q.CreateStaff(ctx, database.CreateStaffParams{
		FullName:       fullName,
		Email:          email,
		HashedPassword: string(hashed),
		Position:       database.StaffPositionAdmin,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert staff: %w", err)
	}

	log.Info("SEED", fmt.Sprintf("created admin '%s' (ID: %s)", email, s.ID))
	return s.ID, nil
}

// Rooms and tables are upserted on their numbers, so re-running is safe.

func seedRooms(ctx context.Context, q *database.Queries) error {
	rooms := []database.CreateRoomParams{
		{ClassType: "safari", Name: "Safari Standard", RoomNumber: "101", Price: kes("8500"), Floor: 1},
		{ClassType: "safari", Name: "Safari Standard", RoomNumber: "102", Price: kes("8500"), Floor: 1},
		{ClassType: "safari", Name: "Safari Twin", RoomNumber: "103", Price: kes("9500"), Floor: 1},
		{ClassType: "savannah", Name: "Savannah Deluxe", RoomNumber: "201", Price: kes("14000"), Floor: 2},
		{ClassType: "savannah", Name: "Savannah Deluxe", RoomNumber: "202", Price: kes("14000"), Floor: 2},
		{ClassType: "serenity", Name: "Serenity Suite", RoomNumber: "301", Price: kes("25000"), Floor: 3},
	}
	for _, r := range rooms {
		if _, err := q.CreateRoom(ctx, r); err != nil {
			return fmt.Errorf("room %s: %w", r.RoomNumber, err)
		}
	}
	log.Info("SEED", fmt.Sprintf("%d rooms in place", len(rooms)))
	return nil
}

func seedTables(ctx context.Context, q *database.Queries) error {
	tables := []database.CreateDiningTableParams{
		{ClassType: "intimate", TableNumber: 1, Capacity: 2, Location: "Terrace"},
		{ClassType: "intimate", TableNumber: 2, Capacity: 2, Location: "Terrace"},
		{ClassType: "family", TableNumber: 3, Capacity: 6, Location: "Main hall"},
		{ClassType: "family", TableNumber: 4, Capacity: 6, Location: "Main hall"},
		{ClassType: "chiefs", TableNumber: 5, Capacity: 12, Location: "Private room"},
	}
	for _, t := range tables {
		if _, err := q.CreateDiningTable(ctx, t); err != nil {
			return fmt.Errorf("table %d: %w", t.TableNumber, err)
		}
	}
	log.Info("SEED", fmt.Sprintf("%d tables in place", len(tables)))
	return nil
}

func seedMenu(ctx context.Context, q *database.Queries) error {
	existing, err := q.ListMenuItems(ctx, database.ListMenuItemsParams{})
	if err != nil {
		return fmt.Errorf("list menu: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, it := range existing {
		have[it.Name] = true
	}

	items := []struct {
		category database.MenuCategory
		name     string
		desc     string
		price    string
		prep     int32
	}{
		{database.MenuCategoryNyama, "Nyama Choma", "Grilled goat with kachumbari", "1200", 35},
		{database.MenuCategoryNyama, "Chicken Biryani", "Coastal spiced rice with chicken", "950", 30},
		{database.MenuCategoryWok, "Beef Stir Fry", "With sukuma and peppers", "850", 20},
		{database.MenuCategoryVegetarian, "Ugali na Sukuma", "", "350", 15},
		{database.MenuCategorySeafood, "Whole Tilapia", "Fried, served with ugali", "1100", 30},
		{database.MenuCategorySweets, "Mandazi", "Four pieces", "150", 10},
		{database.MenuCategoryDrinks, "Chai", "Spiced Kenyan tea", "120", 5},
		{database.MenuCategoryDrinks, "Passion Juice", "", "200", 5},
	}

	created := 0
	for _, it := range items {
		if have[it.name] {
			continue
		}
		_, err := q.CreateMenuItem(ctx, database.CreateMenuItemParams{
			Category:        it.category,
			Name:            it.name,
			Description:     pgtype.Text{String: it.desc, Valid: it.desc != ""},
			Price:           kes(it.price),
			PreparationTime: it.prep,
			IsAvailable:     true,
		})
		if err != nil {
			return fmt.Errorf("menu item %s: %w", it.name, err)
		}
		created++
	}
	log.Info("SEED", fmt.Sprintf("created %d menu items, %d already present", created, len(items)-created))
	return nil
}

func kes(s string) pgtype.Numeric {
	return billing.ToNumeric(decimal.RequireFromString(s))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
