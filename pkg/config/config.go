package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// Config holds the configuration for the safeascent-predictor service.
type Config struct {
	// Redis configuration (L2 cache tier)
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// PostgreSQL configuration (accident store)
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	PostgresMaxConnections     int
	PostgresMaxIdleConnections int
	PostgresConnMaxLifetime    time.Duration

	// Local in-process cache (L1 tier)
	LocalCacheSize int

	// Service configuration
	ServiceName string
	HealthPort  int
	APIPort     int
	LogLevel    string

	// Weather provider (C1)
	WeatherProviderURL    string
	WeatherProviderAPIKey string
	WeatherTimeout        time.Duration
	WeatherRetryAttempts  int
	WeatherRetryBaseDelay time.Duration
	WeatherRetryMaxDelay  time.Duration
	WeatherBreakerEnabled bool

	// Elevation provider
	ElevationProviderURL string
	ElevationTimeout     time.Duration

	// Cache TTL contracts (spec §4.6)
	ForecastTTL   time.Duration
	StatsTTL      time.Duration
	PredictionTTL time.Duration

	// Request budget
	RequestDeadline time.Duration

	// Scoring constants (enumerated configuration)
	NormalizationK           float64
	LocalRadiusKM            float64
	StrictRouteTypeThreshold float64
	SimilarityExclusionThres float64
	WeatherPower             float64

	// Route-type matrix asset path
	RouteTypeMatrixPath string

	// Aggregator implementation selection (vectorized vs scalar)
	VectorizedAggregator bool
	VerifyAggregator     bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		RedisHost:     "localhost",
		RedisPort:     6379,
		RedisPassword: "",
		RedisDB:       0,

		PostgresHost:               "localhost",
		PostgresPort:               5432,
		PostgresUser:               "postgres",
		PostgresPassword:           "",
		PostgresDB:                 "safeascent",
		PostgresSSLMode:            "disable",
		PostgresMaxConnections:     20,
		PostgresMaxIdleConnections: 5,
		PostgresConnMaxLifetime:    5 * time.Minute,

		LocalCacheSize: 4096,

		ServiceName: "safeascent-predictor",
		HealthPort:  8080,
		APIPort:     8090,
		LogLevel:    "info",

		WeatherProviderURL:    "https://weather.example.invalid",
		WeatherProviderAPIKey: "",
		WeatherTimeout:        3 * time.Second,
		WeatherRetryAttempts:  3,
		WeatherRetryBaseDelay: 250 * time.Millisecond,
		WeatherRetryMaxDelay:  2 * time.Second,
		WeatherBreakerEnabled: true,

		ElevationProviderURL: "https://elevation.example.invalid",
		ElevationTimeout:     2 * time.Second,

		ForecastTTL:   6 * time.Hour,
		StatsTTL:      24 * time.Hour,
		PredictionTTL: time.Hour,

		RequestDeadline: 8 * time.Second,

		NormalizationK:           10.0,
		LocalRadiusKM:            50.0,
		StrictRouteTypeThreshold: 0.85,
		SimilarityExclusionThres: 0.25,
		WeatherPower:             2.0,

		RouteTypeMatrixPath: "internal/core/kernel/data/route_type_matrix.yaml",

		VectorizedAggregator: true,
		VerifyAggregator:     false,
	}
}

// LoadFromEnv loads configuration from environment variables with a
// SAFEASCENT_ prefix.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("SAFEASCENT_REDIS_HOST"); v != "" {
		c.RedisHost = v
	}
	if v := os.Getenv("SAFEASCENT_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.RedisPort = port
		}
	}
	if v := os.Getenv("SAFEASCENT_REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("SAFEASCENT_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}

	if v := os.Getenv("SAFEASCENT_POSTGRES_HOST"); v != "" {
		c.PostgresHost = v
	}
	if v := os.Getenv("SAFEASCENT_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.PostgresPort = port
		}
	}
	if v := os.Getenv("SAFEASCENT_POSTGRES_USER"); v != "" {
		c.PostgresUser = v
	}
	if v := os.Getenv("SAFEASCENT_POSTGRES_PASSWORD"); v != "" {
		c.PostgresPassword = v
	}
	if v := os.Getenv("SAFEASCENT_POSTGRES_DB"); v != "" {
		c.PostgresDB = v
	}
	if v := os.Getenv("SAFEASCENT_POSTGRES_SSLMODE"); v != "" {
		c.PostgresSSLMode = v
	}
	if v := os.Getenv("SAFEASCENT_POSTGRES_MAX_OPEN_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PostgresMaxConnections = n
		}
	}
	if v := os.Getenv("SAFEASCENT_POSTGRES_MAX_IDLE_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PostgresMaxIdleConnections = n
		}
	}
	if v := os.Getenv("SAFEASCENT_POSTGRES_CONN_MAX_LIFE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PostgresConnMaxLifetime = d
		}
	}

	if v := os.Getenv("SAFEASCENT_LOCAL_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LocalCacheSize = n
		}
	}

	if v := os.Getenv("SAFEASCENT_SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("SAFEASCENT_HEALTH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HealthPort = port
		}
	}
	if v := os.Getenv("SAFEASCENT_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.APIPort = port
		}
	}
	if v := os.Getenv("SAFEASCENT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	if v := os.Getenv("SAFEASCENT_WEATHER_PROVIDER_URL"); v != "" {
		c.WeatherProviderURL = v
	}
	if v := os.Getenv("SAFEASCENT_WEATHER_PROVIDER_API_KEY"); v != "" {
		c.WeatherProviderAPIKey = v
	}
	if v := os.Getenv("SAFEASCENT_WEATHER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.WeatherTimeout = d
		}
	}
	if v := os.Getenv("SAFEASCENT_WEATHER_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.WeatherRetryAttempts = n
		}
	}
	if v := os.Getenv("SAFEASCENT_WEATHER_RETRY_BASE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.WeatherRetryBaseDelay = d
		}
	}
	if v := os.Getenv("SAFEASCENT_WEATHER_RETRY_MAX_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.WeatherRetryMaxDelay = d
		}
	}
	if v := os.Getenv("SAFEASCENT_WEATHER_BREAKER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.WeatherBreakerEnabled = b
		}
	}

	if v := os.Getenv("SAFEASCENT_ELEVATION_PROVIDER_URL"); v != "" {
		c.ElevationProviderURL = v
	}
	if v := os.Getenv("SAFEASCENT_ELEVATION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ElevationTimeout = d
		}
	}

	if v := os.Getenv("SAFEASCENT_FORECAST_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ForecastTTL = d
		}
	}
	if v := os.Getenv("SAFEASCENT_STATS_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.StatsTTL = d
		}
	}
	if v := os.Getenv("SAFEASCENT_PREDICTION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PredictionTTL = d
		}
	}
	if v := os.Getenv("SAFEASCENT_REQUEST_DEADLINE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RequestDeadline = d
		}
	}

	if v := os.Getenv("SAFEASCENT_NORMALIZATION_K"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.NormalizationK = f
		}
	}
	if v := os.Getenv("SAFEASCENT_LOCAL_RADIUS_KM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.LocalRadiusKM = f
		}
	}
	if v := os.Getenv("SAFEASCENT_STRICT_ROUTE_TYPE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.StrictRouteTypeThreshold = f
		}
	}
	if v := os.Getenv("SAFEASCENT_SIMILARITY_EXCLUSION_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.SimilarityExclusionThres = f
		}
	}
	if v := os.Getenv("SAFEASCENT_WEATHER_POWER"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.WeatherPower = f
		}
	}
	if v := os.Getenv("SAFEASCENT_ROUTE_TYPE_MATRIX_PATH"); v != "" {
		c.RouteTypeMatrixPath = v
	}
	if v := os.Getenv("SAFEASCENT_VECTORIZED_AGGREGATOR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.VectorizedAggregator = b
		}
	}
	if v := os.Getenv("SAFEASCENT_VERIFY_AGGREGATOR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.VerifyAggregator = b
		}
	}
}

// LoadFromFlags parses command-line flags and overrides config values.
func (c *Config) LoadFromFlags() {
	pflag.StringVar(&c.RedisHost, "redis-host", c.RedisHost, "Redis hostname")
	pflag.IntVar(&c.RedisPort, "redis-port", c.RedisPort, "Redis port")
	pflag.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	pflag.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")

	pflag.StringVar(&c.PostgresHost, "postgres-host", c.PostgresHost, "PostgreSQL hostname")
	pflag.IntVar(&c.PostgresPort, "postgres-port", c.PostgresPort, "PostgreSQL port")
	pflag.StringVar(&c.PostgresUser, "postgres-user", c.PostgresUser, "PostgreSQL username")
	pflag.StringVar(&c.PostgresPassword, "postgres-password", c.PostgresPassword, "PostgreSQL password")
	pflag.StringVar(&c.PostgresDB, "postgres-db", c.PostgresDB, "PostgreSQL database name")
	pflag.StringVar(&c.PostgresSSLMode, "postgres-sslmode", c.PostgresSSLMode, "PostgreSQL SSL mode")
	pflag.IntVar(&c.PostgresMaxConnections, "postgres-max-conns", c.PostgresMaxConnections, "PostgreSQL max connections")
	pflag.IntVar(&c.PostgresMaxIdleConnections, "postgres-max-idle-conns", c.PostgresMaxIdleConnections, "PostgreSQL max idle connections")
	pflag.DurationVar(&c.PostgresConnMaxLifetime, "postgres-conn-max-life", c.PostgresConnMaxLifetime, "PostgreSQL connection max lifetime")

	pflag.IntVar(&c.LocalCacheSize, "local-cache-size", c.LocalCacheSize, "In-process LRU cache entry capacity")

	pflag.StringVar(&c.ServiceName, "service-name", c.ServiceName, "Service name")
	pflag.IntVar(&c.HealthPort, "health-port", c.HealthPort, "Health/metrics HTTP port")
	pflag.IntVar(&c.APIPort, "api-port", c.APIPort, "Prediction API HTTP port")
	pflag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")

	pflag.StringVar(&c.WeatherProviderURL, "weather-provider-url", c.WeatherProviderURL, "Weather provider base URL")
	pflag.StringVar(&c.WeatherProviderAPIKey, "weather-provider-api-key", c.WeatherProviderAPIKey, "Weather provider API key")
	pflag.DurationVar(&c.WeatherTimeout, "weather-timeout", c.WeatherTimeout, "Weather provider per-call timeout")
	pflag.IntVar(&c.WeatherRetryAttempts, "weather-retry-attempts", c.WeatherRetryAttempts, "Weather provider retry attempts")
	pflag.DurationVar(&c.WeatherRetryBaseDelay, "weather-retry-base-delay", c.WeatherRetryBaseDelay, "Weather provider retry base delay")
	pflag.DurationVar(&c.WeatherRetryMaxDelay, "weather-retry-max-delay", c.WeatherRetryMaxDelay, "Weather provider retry max delay")
	pflag.BoolVar(&c.WeatherBreakerEnabled, "weather-breaker-enabled", c.WeatherBreakerEnabled, "Enable circuit breaker around the weather provider")

	pflag.StringVar(&c.ElevationProviderURL, "elevation-provider-url", c.ElevationProviderURL, "Elevation provider base URL")
	pflag.DurationVar(&c.ElevationTimeout, "elevation-timeout", c.ElevationTimeout, "Elevation provider timeout")

	pflag.DurationVar(&c.ForecastTTL, "forecast-ttl", c.ForecastTTL, "Forecast cache TTL")
	pflag.DurationVar(&c.StatsTTL, "stats-ttl", c.StatsTTL, "Climatological stats cache TTL")
	pflag.DurationVar(&c.PredictionTTL, "prediction-ttl", c.PredictionTTL, "Prediction result cache TTL")
	pflag.DurationVar(&c.RequestDeadline, "request-deadline", c.RequestDeadline, "Per-request deadline")

	pflag.Float64Var(&c.NormalizationK, "normalization-k", c.NormalizationK, "Risk score normalization constant K")
	pflag.Float64Var(&c.LocalRadiusKM, "local-radius-km", c.LocalRadiusKM, "Candidate filter local radius in km")
	pflag.Float64Var(&c.StrictRouteTypeThreshold, "strict-route-type-threshold", c.StrictRouteTypeThreshold, "Candidate filter route-type threshold")
	pflag.Float64Var(&c.SimilarityExclusionThres, "similarity-exclusion-threshold", c.SimilarityExclusionThres, "Weather similarity exclusion threshold")
	pflag.Float64Var(&c.WeatherPower, "weather-power", c.WeatherPower, "Weather similarity amplifier exponent")
	pflag.StringVar(&c.RouteTypeMatrixPath, "route-type-matrix-path", c.RouteTypeMatrixPath, "Path to the route-type matrix YAML asset")
	pflag.BoolVar(&c.VectorizedAggregator, "vectorized-aggregator", c.VectorizedAggregator, "Use the vectorized aggregator implementation")
	pflag.BoolVar(&c.VerifyAggregator, "verify-aggregator", c.VerifyAggregator, "Cross-check the scalar and vectorized aggregators on every request")

	pflag.Parse()
}

// Validate checks that required configuration values are set and sane.
func (c *Config) Validate() error {
	if c.RedisHost == "" {
		return fmt.Errorf("Redis host is required")
	}
	if c.RedisPort <= 0 || c.RedisPort > 65535 {
		return fmt.Errorf("Redis port must be between 1 and 65535")
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("Postgres host is required")
	}
	if c.PostgresPort <= 0 || c.PostgresPort > 65535 {
		return fmt.Errorf("Postgres port must be between 1 and 65535")
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("Health port must be between 1 and 65535")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("API port must be between 1 and 65535")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("Service name is required")
	}
	if c.NormalizationK <= 0 {
		return fmt.Errorf("normalization K must be positive")
	}
	if c.LocalRadiusKM <= 0 {
		return fmt.Errorf("local radius must be positive")
	}
	if c.SimilarityExclusionThres < 0 || c.SimilarityExclusionThres > 1 {
		return fmt.Errorf("similarity exclusion threshold must be in [0,1]")
	}
	if c.StrictRouteTypeThreshold < 0 || c.StrictRouteTypeThreshold > 1 {
		return fmt.Errorf("strict route-type threshold must be in [0,1]")
	}
	if c.WeatherRetryAttempts < 0 {
		return fmt.Errorf("weather retry attempts must not be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// RedisAddress returns the full Redis address.
func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// PostgresConnectionString returns a PostgreSQL connection string.
func (c *Config) PostgresConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode)
}
