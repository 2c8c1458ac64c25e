package config

import (
	"log"
	"os"

	"mindboost/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the device-local cache database. It backs the key-value cache store
// only; canonical data lives on the remote gateway.
var DB *gorm.DB

func InitDB() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	path := os.Getenv("CACHE_DB_PATH")
	if path == "" {
		path = "mindboost-cache.db"
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to open cache database: %v", err)
	}

	if err := DB.AutoMigrate(&models.CacheEntry{}); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
}

// GatewayURL is the base URL of the remote row-storage API.
func GatewayURL() string { return os.Getenv("GATEWAY_URL") }

// GatewayKey is the API key sent with every gateway request.
func GatewayKey() string { return os.Getenv("GATEWAY_KEY") }
