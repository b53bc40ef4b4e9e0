package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// AppConfig holds everything read from the environment at startup.
type AppConfig struct {
	// DatabaseURL is the Postgres (with Apache AGE) connection string.
	DatabaseURL string

	// GraphName addresses the property graph inside the database.
	GraphName string

	// UserAgent identifies this client to Nominatim and the NWS API,
	// both of which require it.
	UserAgent string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	NominatimBaseURL string
	NWSBaseURL       string

	// GoogleAPIKey switches geocoding to the Google provider when set.
	GoogleAPIKey string

	// NearThresholdKM bounds the NEAR relationship between locations.
	NearThresholdKM float64

	// IngestLocations are re-ingested on every scheduler run.
	IngestLocations []string

	// IngestInterval controls how often the scheduler re-ingests.
	IngestInterval time.Duration

	// SeedSampleData populates the sample topology at startup.
	SeedSampleData bool

	Port  string
	Debug bool
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using system environment variables")
	}

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		host := getenvDefault("POSTGRES_HOST", "postgres")
		port := getenvDefault("POSTGRES_PORT", "5432")
		db := getenvDefault("POSTGRES_DB", "weather")
		user := getenvDefault("POSTGRES_USER", "postgres")
		password := getenvDefault("POSTGRES_PASSWORD", "postgres")
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, db)
	}

	cfg.GraphName = getenvDefault("GRAPH_NAME", "weather_graph")
	cfg.UserAgent = getenvDefault("USER_AGENT", "weather-graph (github.com/austindatascientist/weather-graph)")

	timeoutStr := getenvDefault("API_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.NominatimBaseURL = os.Getenv("NOMINATIM_BASE_URL")
	cfg.NWSBaseURL = os.Getenv("NWS_BASE_URL")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")

	cfg.NearThresholdKM = getenvFloat("NEAR_THRESHOLD_KM", 300)
	if cfg.NearThresholdKM <= 0 {
		return nil, fmt.Errorf("NEAR_THRESHOLD_KM must be positive")
	}

	cfg.IngestLocations = splitList(os.Getenv("INGEST_LOCATIONS"))

	intervalStr := getenvDefault("INGEST_INTERVAL", "24h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_INTERVAL: %w", err)
	}
	cfg.IngestInterval = interval

	cfg.SeedSampleData = getenvBool("SEED_SAMPLE_DATA", false)
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.Debug = getenvBool("DEBUG", false)

	return cfg, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
