package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Env struct {
	AppAddr string
	GinMode string

	DBDriver   string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	ORSAPIKey        string
	ORSBaseURL       string
	ORSTimeout       time.Duration
	ORSRatePerMinute int

	WeatherAPIKey  string
	WeatherBaseURL string
	WeatherTimeout time.Duration

	RouteFreshness time.Duration

	OpenAIAPIKey string
	LLMModel     string
	LLMBaseURL   string
	LLMTimeout   time.Duration

	JWTSecret         string
	AdminPasswordHash string

	CORSAllowedOrigins []string
	CatalogPath        string
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))

	return Env{
		AppAddr: appAddr,
		GinMode: ginMode,

		DBDriver:   strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBHost:     getenv("DB_HOST", "127.0.0.1:3306"),
		DBUser:     getenv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getenv("DB_NAME", "trip_planner"),
		SQLitePath: getenv("SQLITE_PATH", "data/tripplanner.db"),

		ORSAPIKey:        strings.TrimSpace(os.Getenv("ORS_API_KEY")),
		ORSBaseURL:       getenv("ORS_BASE_URL", "https://api.openrouteservice.org"),
		ORSTimeout:       getDuration("ORS_TIMEOUT", 8*time.Second),
		ORSRatePerMinute: getInt("ORS_RATE_PER_MINUTE", 40),

		WeatherAPIKey:  strings.TrimSpace(os.Getenv("WEATHER_API_KEY")),
		WeatherBaseURL: getenv("WEATHER_BASE_URL", "https://api.openweathermap.org"),
		WeatherTimeout: getDuration("WEATHER_TIMEOUT", 5*time.Second),

		RouteFreshness: getDuration("ROUTE_FRESHNESS", 30*24*time.Hour),

		OpenAIAPIKey: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		LLMModel:     getenv("LLM_MODEL", "gpt-4o-mini"),
		LLMBaseURL:   strings.TrimSpace(os.Getenv("LLM_BASE_URL")),
		LLMTimeout:   getDuration("LLM_TIMEOUT", 30*time.Second),

		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		AdminPasswordHash: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		CatalogPath:        strings.TrimSpace(os.Getenv("CATALOG_PATH")),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getDuration accepts Go durations ("8s", "720h") or plain seconds.
func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
