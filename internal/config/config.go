package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	Port          string
	DBDSN         string
	JWTSecret     string
	MediaDir      string
	MediaBaseURL  string
	LogFile       string
	AdminEmail    string
	AdminPassword string
	AMQPURL       string // optional; activity events are DB-only when empty
	MLServiceURL  string
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPass      string
	SMTPFrom      string
	AppURL        string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Env:           getenv("APP_ENV", "development"),
		Port:          getenv("PORT", "8080"),
		DBDSN:         getenv("DB_DSN", "agrimarket.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		MediaDir:      getenv("MEDIA_DIR", "./media"),
		MediaBaseURL:  getenv("MEDIA_BASE_URL", "/media"),
		LogFile:       getenv("LOG_FILE", "./agrimarket.log"),
		AdminEmail:    getenv("ADMIN_EMAIL", "admin@agrimarket.test"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AMQPURL:       os.Getenv("AMQP_URL"),
		MLServiceURL:  getenv("ML_SERVICE_URL", "http://localhost:8000"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getenv("SMTP_PORT", "587"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		SMTPFrom:      os.Getenv("SMTP_FROM"),
		AppURL:        getenv("APP_URL", "http://localhost:8080"),
	}
	if cfg.JWTSecret == "" {
		log.Fatal("[config] JWT_SECRET is required")
	}
	log.Printf("[config] ENV=%s PORT=%s DB_DSN=%s MEDIA_DIR=%s", cfg.Env, cfg.Port, cfg.DBDSN, cfg.MediaDir)
	return cfg
}

func (c Config) Production() bool { return c.Env == "production" }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
