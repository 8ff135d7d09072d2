package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yourusername/invoicely/models"
)

type Config struct {
	Env               string
	Port              string
	DatabaseURL       string
	JWTSecret         string
	JWTExpiry         time.Duration
	OverdueCronSpec   string
	OverdueAfterDays  int
	AdminEmail        string
	AdminPassword     string
	DBConnectRetries  int
	DBConnectInterval time.Duration
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	jwtExpiry, err := time.ParseDuration(getEnvOrDefault("JWT_EXPIRES_IN", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}

	return &Config{
		Env:               getEnvOrDefault("APP_ENV", "production"),
		Port:              getEnvOrDefault("PORT", "8000"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTExpiry:         jwtExpiry,
		OverdueCronSpec:   getEnvOrDefault("OVERDUE_CRON", "* * * * *"),
		OverdueAfterDays:  getEnvIntOrDefault("OVERDUE_AFTER_DAYS", 30),
		AdminEmail:        getEnvOrDefault("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		DBConnectRetries:  getEnvIntOrDefault("DB_CONNECT_RETRIES", 5),
		DBConnectInterval: time.Duration(getEnvIntOrDefault("DB_CONNECT_INTERVAL_MS", 2000)) * time.Millisecond,
	}, nil
}

// InitDB opens the Postgres connection with bounded retries, then runs
// migrations. Exhausting the retries is fatal to startup.
func InitDB(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for attempt := 1; attempt <= cfg.DBConnectRetries; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err == nil {
			break
		}
		log.Error("database connection failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", cfg.DBConnectRetries),
			zap.Error(err))
		if attempt < cfg.DBConnectRetries {
			time.Sleep(cfg.DBConnectInterval)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.DBConnectRetries, err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Invoice{}, &models.InvoiceItem{})
}

// SeedAdmin creates the bootstrap admin user if it does not exist yet.
// Safe to run on every startup.
func SeedAdmin(db *gorm.DB, cfg *Config) error {
	if cfg.AdminPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Create(&models.User{
		Name:     "Admin",
		Email:    cfg.AdminEmail,
		Password: string(hash),
		Role:     models.RoleAdmin,
	}).Error
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
