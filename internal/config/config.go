package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/livescore-tracker/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"

	DefaultConfigFile = "config.json"
	DefaultAPIBaseURL = "https://livescore-api.com/api-client"
)

// Config stores runtime configuration for the tracker.
type Config struct {
	AppEnv         string `validate:"oneof=dev stage prod"`
	ServiceName    string `validate:"required"`
	ServiceVersion string
	LogLevel       logging.Level
	LogFormat      string `validate:"oneof=json console"`
	DebugMode      bool

	APIBaseURL            string        `validate:"required,url"`
	APIKey                string        `validate:"required"`
	APISecret             string        `validate:"required"`
	APITimeout            time.Duration `validate:"gt=0"`
	APIRequestsPerMinute  int           `validate:"gte=0"`
	MaxRetries            int           `validate:"gte=1"`
	RetryDelay            time.Duration `validate:"gte=0"`
	APICircuitEnabled     bool
	APICircuitFailures    int           `validate:"gte=1"`
	APICircuitOpenTimeout time.Duration `validate:"gt=0"`
	APICircuitHalfOpenMax int           `validate:"gte=1"`

	NotificationThreshold int           `validate:"gte=1"`
	PollingInterval       time.Duration `validate:"gt=0"`
	MaxConcurrentRequests int           `validate:"gte=1"`
	CacheExpiry           time.Duration `validate:"gt=0"`
	ShutdownTimeout       time.Duration `validate:"gt=0"`

	// Sports is nil when every sport is tracked.
	Sports          []string
	TrackedTeams    []string
	TrackedLeagues  []string
	TrackedMatchIDs []string
	ExcludeTeams    []string
	ExcludeLeagues  []string
	TrackAllMatches bool

	WebhookURL     string        `validate:"omitempty,url"`
	WebhookTimeout time.Duration `validate:"gt=0"`

	HTTPAddr           string
	ReadTimeout        time.Duration `validate:"gt=0"`
	WriteTimeout       time.Duration `validate:"gt=0"`
	CORSAllowedOrigins []string

	UptraceEnabled         bool
	UptraceDSN             string `validate:"required_if=UptraceEnabled true"`
	PyroscopeEnabled       bool
	PyroscopeServerAddress string `validate:"required_if=PyroscopeEnabled true"`
	PyroscopeAppName       string
	PyroscopeUploadRate    time.Duration `validate:"gt=0"`
}

// fileConfig mirrors the keys accepted in the JSON config file. Pointers tell
// "absent" apart from zero values.
type fileConfig struct {
	APIKey                *string   `json:"api_key"`
	APISecret             *string   `json:"api_secret"`
	NotificationThreshold *int      `json:"notification_threshold"`
	PollingInterval       *float64  `json:"polling_interval"`
	Sports                *[]string `json:"sports"`
	TrackedTeams          *[]string `json:"tracked_teams"`
	TrackedLeagues        *[]string `json:"tracked_leagues"`
	TrackedMatchIDs       *[]string `json:"tracked_match_ids"`
	ExcludeTeams          *[]string `json:"exclude_teams"`
	ExcludeLeagues        *[]string `json:"exclude_leagues"`
	TrackAllMatches       *bool     `json:"track_all_matches"`
	MaxConcurrentRequests *int      `json:"max_concurrent_requests"`
	MaxRetries            *int      `json:"max_retries"`
	RetryDelay            *float64  `json:"retry_delay"`
	CacheExpiry           *float64  `json:"cache_expiry"`
	DebugMode             *bool     `json:"debug_mode"`
	WebhookURL            *string   `json:"webhook_url"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Defaults() Config {
	return Config{
		AppEnv:                EnvDev,
		ServiceName:           "livescore-tracker",
		ServiceVersion:        "dev",
		LogLevel:              logging.LevelInfo,
		LogFormat:             logging.FormatJSON,
		APIBaseURL:            DefaultAPIBaseURL,
		APITimeout:            30 * time.Second,
		MaxRetries:            3,
		RetryDelay:            2 * time.Second,
		APICircuitEnabled:     true,
		APICircuitFailures:    5,
		APICircuitOpenTimeout: 15 * time.Second,
		APICircuitHalfOpenMax: 2,
		NotificationThreshold: 2,
		PollingInterval:       10 * time.Second,
		MaxConcurrentRequests: 5,
		CacheExpiry:           60 * time.Second,
		ShutdownTimeout:       5 * time.Second,
		TrackAllMatches:       true,
		WebhookTimeout:        10 * time.Second,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          15 * time.Second,
		PyroscopeAppName:      "livescore-tracker",
		PyroscopeUploadRate:   15 * time.Second,
	}
}

// LoadEnvFile loads a dotenv file into the process environment. A missing file
// is not an error.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load builds the config from defaults, then the JSON config file, then
// environment variables, and validates the result.
func Load() (Config, error) {
	cfg := Defaults()

	path := strings.TrimSpace(getEnv("CONFIG_FILE", DefaultConfigFile))
	fileCfg, found, err := readFileConfig(path)
	if err != nil {
		return Config{}, err
	}
	if found {
		fileCfg.apply(&cfg)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.DebugMode {
		cfg.LogLevel = logging.LevelDebug
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("invalid config: %s", describeFieldError(fieldErrs[0]))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", cfg.AppEnv))
	if err != nil {
		return err
	}
	cfg.AppEnv = appEnv
	cfg.ServiceName = getEnv("APP_SERVICE_NAME", cfg.ServiceName)
	cfg.ServiceVersion = getEnv("APP_SERVICE_VERSION", cfg.ServiceVersion)
	cfg.LogLevel = logging.ParseLevel(getEnv("APP_LOG_LEVEL", cfg.LogLevel.String()))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_FORMAT", cfg.LogFormat)))
	cfg.HTTPAddr = strings.TrimSpace(getEnv("APP_HTTP_ADDR", cfg.HTTPAddr))

	cfg.APIBaseURL = strings.TrimSpace(getEnv("LIVE_SCORE_BASE_URL", cfg.APIBaseURL))
	cfg.APIKey = strings.TrimSpace(getEnv("LIVE_SCORE_API_KEY", cfg.APIKey))
	cfg.APISecret = strings.TrimSpace(getEnv("LIVE_SCORE_API_SECRET", cfg.APISecret))
	cfg.WebhookURL = strings.TrimSpace(getEnv("NOTIFY_WEBHOOK_URL", cfg.WebhookURL))
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", cfg.UptraceDSN))
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", cfg.PyroscopeServerAddress))
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.PyroscopeAppName))

	ints := []struct {
		key string
		dst *int
	}{
		{key: "NOTIFICATION_THRESHOLD", dst: &cfg.NotificationThreshold},
		{key: "MAX_CONCURRENT_REQUESTS", dst: &cfg.MaxConcurrentRequests},
		{key: "MAX_RETRIES", dst: &cfg.MaxRetries},
		{key: "API_REQUESTS_PER_MINUTE", dst: &cfg.APIRequestsPerMinute},
		{key: "API_CIRCUIT_FAILURE_COUNT", dst: &cfg.APICircuitFailures},
		{key: "API_CIRCUIT_HALF_OPEN_MAX_REQ", dst: &cfg.APICircuitHalfOpenMax},
	}
	for _, item := range ints {
		value, err := getEnvAsInt(item.key, *item.dst)
		if err != nil {
			return fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.dst = value
	}

	// Seconds may be given as a plain number ("10.0") or a Go duration ("10s").
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{key: "POLLING_INTERVAL", dst: &cfg.PollingInterval},
		{key: "RETRY_DELAY", dst: &cfg.RetryDelay},
		{key: "CACHE_EXPIRY", dst: &cfg.CacheExpiry},
		{key: "API_TIMEOUT", dst: &cfg.APITimeout},
		{key: "API_CIRCUIT_OPEN_TIMEOUT", dst: &cfg.APICircuitOpenTimeout},
		{key: "SHUTDOWN_TIMEOUT", dst: &cfg.ShutdownTimeout},
		{key: "NOTIFY_WEBHOOK_TIMEOUT", dst: &cfg.WebhookTimeout},
		{key: "APP_READ_TIMEOUT", dst: &cfg.ReadTimeout},
		{key: "APP_WRITE_TIMEOUT", dst: &cfg.WriteTimeout},
		{key: "PYROSCOPE_UPLOAD_RATE", dst: &cfg.PyroscopeUploadRate},
	}
	for _, item := range durations {
		value, err := getEnvAsSeconds(item.key, *item.dst)
		if err != nil {
			return fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.dst = value
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{key: "TRACK_ALL_MATCHES", dst: &cfg.TrackAllMatches},
		{key: "DEBUG_MODE", dst: &cfg.DebugMode},
		{key: "API_CIRCUIT_ENABLED", dst: &cfg.APICircuitEnabled},
		{key: "UPTRACE_ENABLED", dst: &cfg.UptraceEnabled},
		{key: "PYROSCOPE_ENABLED", dst: &cfg.PyroscopeEnabled},
	}
	for _, item := range bools {
		value, err := getEnvAsBool(item.key, *item.dst)
		if err != nil {
			return fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.dst = value
	}

	if raw, ok := lookupEnv("SPORTS"); ok {
		cfg.Sports = parseSports(splitCSV(raw))
	}
	lists := []struct {
		key string
		dst *[]string
	}{
		{key: "TRACKED_TEAMS", dst: &cfg.TrackedTeams},
		{key: "TRACKED_LEAGUES", dst: &cfg.TrackedLeagues},
		{key: "TRACKED_MATCH_IDS", dst: &cfg.TrackedMatchIDs},
		{key: "EXCLUDE_TEAMS", dst: &cfg.ExcludeTeams},
		{key: "EXCLUDE_LEAGUES", dst: &cfg.ExcludeLeagues},
		{key: "APP_CORS_ALLOWED_ORIGINS", dst: &cfg.CORSAllowedOrigins},
	}
	for _, item := range lists {
		if raw, ok := lookupEnv(item.key); ok {
			*item.dst = splitCSV(raw)
		}
	}

	return nil
}

func readFileConfig(path string) (fileConfig, bool, error) {
	if path == "" {
		return fileConfig{}, false, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileConfig{}, false, nil
		}
		return fileConfig{}, false, fmt.Errorf("read config file %s: %w", path, err)
	}

	var out fileConfig
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return fileConfig{}, false, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return out, true, nil
}

func (f fileConfig) apply(cfg *Config) {
	setIfPresent(&cfg.APIKey, f.APIKey)
	setIfPresent(&cfg.APISecret, f.APISecret)
	setIfPresent(&cfg.NotificationThreshold, f.NotificationThreshold)
	setIfPresent(&cfg.TrackedTeams, f.TrackedTeams)
	setIfPresent(&cfg.TrackedLeagues, f.TrackedLeagues)
	setIfPresent(&cfg.TrackedMatchIDs, f.TrackedMatchIDs)
	setIfPresent(&cfg.ExcludeTeams, f.ExcludeTeams)
	setIfPresent(&cfg.ExcludeLeagues, f.ExcludeLeagues)
	setIfPresent(&cfg.TrackAllMatches, f.TrackAllMatches)
	setIfPresent(&cfg.MaxConcurrentRequests, f.MaxConcurrentRequests)
	setIfPresent(&cfg.MaxRetries, f.MaxRetries)
	setIfPresent(&cfg.DebugMode, f.DebugMode)
	setIfPresent(&cfg.WebhookURL, f.WebhookURL)

	if f.Sports != nil {
		cfg.Sports = parseSports(*f.Sports)
	}
	if f.PollingInterval != nil {
		cfg.PollingInterval = secondsToDuration(*f.PollingInterval)
	}
	if f.RetryDelay != nil {
		cfg.RetryDelay = secondsToDuration(*f.RetryDelay)
	}
	if f.CacheExpiry != nil {
		cfg.CacheExpiry = secondsToDuration(*f.CacheExpiry)
	}
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// parseSports returns nil, meaning all sports, for an empty list or "all".
func parseSports(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		item := strings.TrimSpace(value)
		if item == "" {
			continue
		}
		if strings.EqualFold(item, "all") {
			return nil
		}
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "required_if":
		return fe.Field() + " is required when " + strings.ReplaceAll(fe.Param(), " ", "=")
	case "gt":
		return fe.Field() + " must be > " + fe.Param()
	case "gte":
		return fe.Field() + " must be >= " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "url":
		return fe.Field() + " must be a valid URL"
	default:
		return fe.Field() + " failed " + fe.Tag() + " validation"
	}
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

func getEnv(key, fallback string) string {
	if value, ok := lookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback, nil
	}
	return strconv.Atoi(strings.TrimSpace(value))
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback, nil
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y", "on":
		return true, nil
	case "false", "0", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", value)
	}
}

func getEnvAsSeconds(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback, nil
	}
	value = strings.TrimSpace(value)
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return secondsToDuration(seconds), nil
	}
	return time.ParseDuration(value)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
