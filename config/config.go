package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the database, runs migrations and seeds the admin account.
// Postgres is the production target; set DB_DRIVER=sqlite (DB_DSN is then a
// file path, defaulting to bodyshop.db) for local development.
func Connect() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	dsn := os.Getenv("DB_DSN")
	switch os.Getenv("DB_DRIVER") {
	case "sqlite":
		if dsn == "" {
			dsn = "bodyshop.db"
		}
		DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	default:
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := Migrations(DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	SeedAdminUser(DB)
}
