package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// FactorWeights holds the aggregation weights for the six location factors.
// Weights need not sum to 1; the score engine normalizes over present factors.
type FactorWeights struct {
	Proximity      float64
	Schools        float64
	Transit        float64
	Crime          float64
	Development    float64
	PropertyValues float64
}

// LeadScoreWeights holds the aggregation weights for the four lead components.
type LeadScoreWeights struct {
	ContactQuality     float64
	PropertyQuality    float64
	VerificationStatus float64
	OwnershipVerified  float64
}

type Config struct {
	Env      string
	HTTPAddr string

	// DatabaseURL is only required by commands that read leads from Postgres.
	DatabaseURL string
	RedisURL    string

	CORSAllowAll bool
	CORSOrigins  []string

	RateLimitRPS   float64
	RateLimitBurst int

	// Provider credentials. An empty key means the public fallback provider
	// is selected instead.
	GoogleMapsAPIKey string
	WalkScoreAPIKey  string

	// Provider endpoints, overridable for tests and self-hosted mirrors.
	OverpassBaseURL  string
	NominatimBaseURL string
	CivicDataBaseURL string

	CacheTTL        time.Duration
	AnalyzerTimeout time.Duration

	DefaultRadiusMiles float64
	MaxRadiusMiles     float64

	FactorWeights    FactorWeights
	LeadScoreWeights LeadScoreWeights

	// IdealMaxDistanceOverrides remaps amenity types to a custom falloff
	// distance in meters, parsed from "school=1500,grocery=1200" form.
	IdealMaxDistanceOverrides map[string]float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:         getEnv("APP_ENV", "development"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		CORSAllowAll: strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200")),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),

		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		WalkScoreAPIKey:  getEnv("WALKSCORE_API_KEY", ""),

		OverpassBaseURL:  getEnv("OVERPASS_BASE_URL", "https://overpass-api.de/api/interpreter"),
		NominatimBaseURL: getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		CivicDataBaseURL: getEnv("CIVIC_DATA_BASE_URL", ""),

		CacheTTL:        time.Duration(getEnvInt("CACHE_TTL_SECONDS", 86400)) * time.Second,
		AnalyzerTimeout: mustDuration(getEnv("ANALYZER_TIMEOUT", "10s")),

		DefaultRadiusMiles: getEnvFloat("DEFAULT_RADIUS_MILES", 1),
		MaxRadiusMiles:     getEnvFloat("MAX_RADIUS_MILES", 5),

		FactorWeights: FactorWeights{
			Proximity:      getEnvFloat("FACTOR_WEIGHT_PROXIMITY", 0.15),
			Schools:        getEnvFloat("FACTOR_WEIGHT_SCHOOLS", 0.15),
			Transit:        getEnvFloat("FACTOR_WEIGHT_TRANSIT", 0.10),
			Crime:          getEnvFloat("FACTOR_WEIGHT_CRIME", 0.20),
			Development:    getEnvFloat("FACTOR_WEIGHT_DEVELOPMENT", 0.20),
			PropertyValues: getEnvFloat("FACTOR_WEIGHT_PROPERTY_VALUES", 0.20),
		},
		LeadScoreWeights: LeadScoreWeights{
			ContactQuality:     getEnvFloat("LEAD_WEIGHT_CONTACT_QUALITY", 0.35),
			PropertyQuality:    getEnvFloat("LEAD_WEIGHT_PROPERTY_QUALITY", 0.25),
			VerificationStatus: getEnvFloat("LEAD_WEIGHT_VERIFICATION_STATUS", 0.25),
			OwnershipVerified:  getEnvFloat("LEAD_WEIGHT_OWNERSHIP_VERIFIED", 0.15),
		},

		IdealMaxDistanceOverrides: parseDistanceOverrides(getEnv("IDEAL_MAX_DISTANCES", "")),
	}

	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL_SECONDS must be positive")
	}
	if cfg.AnalyzerTimeout <= 0 {
		return nil, fmt.Errorf("ANALYZER_TIMEOUT must be a positive duration")
	}
	if cfg.DefaultRadiusMiles <= 0 || cfg.MaxRadiusMiles < cfg.DefaultRadiusMiles {
		return nil, fmt.Errorf("radius bounds are invalid: default %.2f, max %.2f", cfg.DefaultRadiusMiles, cfg.MaxRadiusMiles)
	}
	if err := validateWeights(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateWeights(cfg *Config) error {
	named := map[string]float64{
		"FACTOR_WEIGHT_PROXIMITY":         cfg.FactorWeights.Proximity,
		"FACTOR_WEIGHT_SCHOOLS":           cfg.FactorWeights.Schools,
		"FACTOR_WEIGHT_TRANSIT":           cfg.FactorWeights.Transit,
		"FACTOR_WEIGHT_CRIME":             cfg.FactorWeights.Crime,
		"FACTOR_WEIGHT_DEVELOPMENT":       cfg.FactorWeights.Development,
		"FACTOR_WEIGHT_PROPERTY_VALUES":   cfg.FactorWeights.PropertyValues,
		"LEAD_WEIGHT_CONTACT_QUALITY":     cfg.LeadScoreWeights.ContactQuality,
		"LEAD_WEIGHT_PROPERTY_QUALITY":    cfg.LeadScoreWeights.PropertyQuality,
		"LEAD_WEIGHT_VERIFICATION_STATUS": cfg.LeadScoreWeights.VerificationStatus,
		"LEAD_WEIGHT_OWNERSHIP_VERIFIED":  cfg.LeadScoreWeights.OwnershipVerified,
	}
	for name, value := range named {
		if value < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvFloat(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func parseDistanceOverrides(value string) map[string]float64 {
	overrides := make(map[string]float64)
	for _, entry := range splitCSV(value) {
		key, raw, found := strings.Cut(entry, "=")
		if !found {
			continue
		}
		distance, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || distance <= 0 {
			continue
		}
		overrides[strings.TrimSpace(key)] = distance
	}
	return overrides
}
