package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	CORSOrigins []string

	Database Database

	JWTSecret string
	JWTTTL    time.Duration

	// VoteTimeout bounds a single vote round-trip made by the client.
	VoteTimeout time.Duration
	// NewWindow is how far back the "new" listing reaches.
	NewWindow time.Duration
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the connection string understood by pgx.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Load reads configuration from the environment, after merging a .env file
// from the working directory if there is one.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded .env file")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required but not set")
	}

	jwtTTL, err := getEnvDuration("JWT_TTL", 72*time.Hour)
	if err != nil {
		return nil, err
	}
	voteTimeout, err := getEnvDuration("VOTE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	newWindow, err := getEnvDuration("NEW_WINDOW", 72*time.Hour)
	if err != nil {
		return nil, err
	}

	port := getEnv("PORT", "8080")

	var origins []string
	for _, o := range strings.Split(getEnv("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &Config{
		Port:        port,
		CORSOrigins: origins,
		Database: Database{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "dealdrop"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWTSecret:   secret,
		JWTTTL:      jwtTTL,
		VoteTimeout: voteTimeout,
		NewWindow:   newWindow,
	}, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return d, nil
}
