package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates runtime configuration for the Wallgrid services.
type Config struct {
	Environment    string
	HTTPPort       int
	LogLevel       string
	AllowedOrigins []string
	FrontendURL    string

	// Remote backend-as-a-service connection.
	BackendEndpoint  string
	BackendProjectID string
	BackendAPIKey    string
	BackendBucketID  string

	// Document database identifiers used by the remote metadata store.
	BackendDatabaseID    string
	WallpapersCollection string
	LikesCollection      string
	FavoritesCollection  string

	// DataStore selects the metadata store implementation: remote, postgres or memory.
	DataStore   string
	DatabaseURL string

	// SnapshotStore selects the identity snapshot store: memory or redis.
	SnapshotStore string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GoogleIssuerURL string
	OAuthSuccessURL string
	OAuthFailureURL string
}

// Load reads configuration from environment variables with sensible defaults for local development.
func Load() (Config, error) {
	apiKey, err := getEnvOrFile("BACKEND_API_KEY", "/run/secrets/wallgrid_backend_api_key")
	if err != nil {
		return Config{}, err
	}

	databaseURL, err := getEnvOrFile("DATABASE_URL", "/run/secrets/wallgrid_database_url")
	if err != nil {
		return Config{}, err
	}

	frontendURL := strings.TrimSuffix(getEnv("FRONTEND_URL", "http://localhost:3000"), "/")

	cfg := Config{
		Environment:    getEnv("APP_ENV", "development"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AllowedOrigins: parseCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		FrontendURL:    frontendURL,

		BackendEndpoint:  strings.TrimSuffix(getEnv("BACKEND_ENDPOINT", "http://localhost:9080/v1"), "/"),
		BackendProjectID: getEnv("BACKEND_PROJECT_ID", "wallgrid"),
		BackendAPIKey:    strings.TrimSpace(apiKey),
		BackendBucketID:  getEnv("BACKEND_BUCKET_ID", "wallpapers"),

		BackendDatabaseID:    getEnv("BACKEND_DATABASE_ID", "wallgrid"),
		WallpapersCollection: getEnv("WALLPAPERS_COLLECTION_ID", "wallpapers"),
		LikesCollection:      getEnv("LIKES_COLLECTION_ID", "likes"),
		FavoritesCollection:  getEnv("FAVORITES_COLLECTION_ID", "favorites"),

		DataStore:   strings.ToLower(getEnv("DATA_STORE", "remote")),
		DatabaseURL: databaseURL,

		SnapshotStore: strings.ToLower(getEnv("SNAPSHOT_STORE", "memory")),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		GoogleIssuerURL: getEnv("GOOGLE_ISSUER_URL", "https://accounts.google.com"),
		OAuthSuccessURL: getEnv("OAUTH_SUCCESS_URL", frontendURL+"/auth/google/callback"),
		OAuthFailureURL: getEnv("OAUTH_FAILURE_URL", frontendURL+"/auth/login"),
	}

	portValue := getEnv("PORT", getEnv("HTTP_PORT", "8080"))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return Config{}, fmt.Errorf("invalid port %q: %w", portValue, err)
	}
	cfg.HTTPPort = port

	if dbValue := os.Getenv("REDIS_DB"); dbValue != "" {
		db, err := strconv.Atoi(dbValue)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REDIS_DB %q: %w", dbValue, err)
		}
		cfg.RedisDB = db
	}

	switch cfg.DataStore {
	case "remote", "postgres", "memory":
	default:
		return Config{}, fmt.Errorf("invalid DATA_STORE %q (expected remote, postgres or memory)", cfg.DataStore)
	}

	switch cfg.SnapshotStore {
	case "memory", "redis":
	default:
		return Config{}, fmt.Errorf("invalid SNAPSHOT_STORE %q (expected memory or redis)", cfg.SnapshotStore)
	}

	if cfg.DataStore == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATA_STORE is postgres but DATABASE_URL is not set")
	}

	return cfg, nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// UsePostgresStore returns true if the Postgres metadata store should be used.
func (c Config) UsePostgresStore() bool {
	return c.DataStore == "postgres"
}

// UseInMemoryStore returns true if the in-memory metadata store should be used.
func (c Config) UseInMemoryStore() bool {
	return c.DataStore == "memory"
}

// UseRedisSnapshots returns true if identity snapshots should live in Redis.
func (c Config) UseRedisSnapshots() bool {
	return c.SnapshotStore == "redis"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrFile(key, defaultPath string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	fileKey := key + "_FILE"
	if path := os.Getenv(fileKey); path != "" {
		return readSecret(path, fileKey)
	}

	if defaultPath != "" {
		return readSecret(defaultPath, key)
	}

	return "", nil
}

func readSecret(path, name string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: reading %s (%s): %w", name, path, err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return "", fmt.Errorf("config: %s (%s) is empty", name, path)
	}
	return value, nil
}
