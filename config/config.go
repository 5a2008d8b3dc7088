package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every setting the storefront reads from the environment.
type Config struct {
	Env      string
	Port     string
	SiteName string
	BaseURL  string

	MongoURI string
	DBName   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionSecret string

	AdminUsername    string
	AdminPassword    string
	SeoAdminUsername string
	SeoAdminPassword string

	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string

	UploadDir string

	DeliveryFee           float64
	FreeDeliveryThreshold float64
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	return &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnv("PORT", "3000"),
		SiteName: getEnv("SITE_NAME", "E-Commerce Store"),
		BaseURL:  strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),

		// MONGO_URI wins over MONGODB_URI, same as the old deployment scripts
		MongoURI: getEnv("MONGO_URI", getEnv("MONGODB_URI", "mongodb://localhost:27017/ecommerce")),
		DBName:   getEnv("DB_NAME", "ecommerce"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SessionSecret: getEnv("SESSION_SECRET", ""),

		AdminUsername:    getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
		SeoAdminUsername: getEnv("SEO_ADMIN_USERNAME", "seoadmin"),
		SeoAdminPassword: getEnv("SEO_ADMIN_PASSWORD", "seo123"),

		SMTPHost:  getEnv("SMTP_HOST", "mail.smtp2go.com"),
		SMTPPort:  getEnvInt("SMTP_PORT", 2525),
		SMTPUser:  getEnv("SMTP_USER", ""),
		SMTPPass:  getEnv("SMTP_PASS", ""),
		FromEmail: getEnv("FROM_EMAIL", ""),

		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		DeliveryFee:           getEnvFloat("DELIVERY_FEE", 250),
		FreeDeliveryThreshold: getEnvFloat("FREE_DELIVERY_THRESHOLD", 5000),
	}
}

// IsDevelopment reports whether the app runs in a dev environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
