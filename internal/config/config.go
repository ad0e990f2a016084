package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/riskibarqy/komiti/internal/platform/resilience"
	"github.com/robfig/cron/v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

const (
	StateNone   = "none"
	StateFile   = "file"
	StateSQLite = "sqlite"
)

const (
	AuthJWT    = "jwt"
	AuthAnubis = "anubis"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv          string
	ServiceName     string
	ServiceVersion  string
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	LogLevel        logging.Level
	LogFormat       logging.Format

	CORSAllowedOrigins []string
	MetricsEnabled     bool

	StorageDriver     string
	DBURL             string
	DBApplicationName string
	DBMaxOpenConns    int
	StateDriver       string
	StatePath         string
	CacheEnabled      bool
	CacheTTL          time.Duration
	DrawSeed          uint64

	AuthMode             string
	JWTSecret            string
	JWTTTL               time.Duration
	JWTIssuer            string
	AnubisBaseURL        string
	AnubisIntrospectPath string
	AnubisAdminKey       string
	AnubisTimeout        time.Duration
	AnubisCacheTTL       time.Duration
	AnubisCircuit        resilience.CircuitBreakerConfig

	TextGenEnabled bool
	TextGenBaseURL string
	TextGenAPIKey  string
	TextGenModel   string
	TextGenTimeout time.Duration
	TextGenCircuit resilience.CircuitBreakerConfig

	ReminderEnabled  bool
	ReminderCron     string
	ReminderLanguage string
	ReminderTimeout  time.Duration
	ReminderPath     string

	QStashEnabled       bool
	QStashBaseURL       string
	QStashToken         string
	QStashTargetBaseURL string
	QStashForwardToken  string
	QStashRetries       int
	QStashTimeout       time.Duration
	QStashCircuit       resilience.CircuitBreakerConfig

	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// Load reads the environment. A .env file (or ENV_FILE) is applied first
// without overriding variables that are already set.
func Load() (Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "komiti"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:                   logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DBApplicationName:          getEnv("DB_APPLICATION_NAME", "komiti"),
		JWTIssuer:                  getEnv("JWT_ISSUER", "komiti"),
		AnubisBaseURL:              strings.TrimSpace(getEnv("ANUBIS_BASE_URL", "")),
		AnubisIntrospectPath:       getEnv("ANUBIS_INTROSPECT_PATH", "/v1/auth/introspect"),
		AnubisAdminKey:             strings.TrimSpace(getEnv("ANUBIS_ADMIN_KEY", "")),
		TextGenBaseURL:             getEnv("TEXTGEN_BASE_URL", "https://generativelanguage.googleapis.com"),
		TextGenAPIKey:              strings.TrimSpace(getEnv("TEXTGEN_API_KEY", "")),
		TextGenModel:               getEnv("TEXTGEN_MODEL", "gemini-2.0-flash"),
		ReminderCron:               strings.TrimSpace(getEnv("REMINDER_CRON", "0 9 * * *")),
		ReminderLanguage:           strings.ToLower(strings.TrimSpace(getEnv("REMINDER_LANGUAGE", "en"))),
		ReminderPath:               getEnv("REMINDER_PATH", "/v1/internal/reminders"),
		QStashBaseURL:              getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io"),
		QStashToken:                strings.TrimSpace(getEnv("QSTASH_TOKEN", "")),
		QStashTargetBaseURL:        strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", "")),
		QStashForwardToken:         strings.TrimSpace(getEnv("QSTASH_FORWARD_TOKEN", "")),
		PprofAddr:                  strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		UptraceDSN:                 strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", "komiti"),
		PyroscopeAuthToken:         getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser:     getEnv("PYROSCOPE_BASIC_AUTH_USER", ""),
		PyroscopeBasicAuthPassword: getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
	}

	logFormatDefault := string(logging.FormatJSON)
	if appEnv == EnvDev {
		logFormatDefault = string(logging.FormatConsole)
	}
	cfg.LogFormat, err = parseLogFormat(getEnv("APP_LOG_FORMAT", logFormatDefault))
	if err != nil {
		return Config{}, err
	}

	if cfg.ReadTimeout, err = parsePositiveDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = parsePositiveDuration("APP_WRITE_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = parsePositiveDuration("APP_SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.MetricsEnabled, err = parseBool("METRICS_ENABLED", "true"); err != nil {
		return Config{}, err
	}

	if err := loadStorage(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadAuth(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadTextGen(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadReminders(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadStorage(cfg *Config) error {
	var err error

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", StorageMemory)))
	switch cfg.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
		if cfg.DBURL == "" {
			return fmt.Errorf("DB_URL is required when STORAGE_DRIVER=%s", StoragePostgres)
		}
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: valid values are %s, %s", cfg.StorageDriver, StorageMemory, StoragePostgres)
	}

	if cfg.DBMaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.DBMaxOpenConns < 1 {
		return errors.New("DB_MAX_OPEN_CONNS must be >= 1")
	}

	cfg.StateDriver = strings.ToLower(strings.TrimSpace(getEnv("STATE_DRIVER", StateFile)))
	cfg.StatePath = strings.TrimSpace(getEnv("STATE_PATH", "./data/komiti.json"))
	switch cfg.StateDriver {
	case StateNone:
	case StateFile, StateSQLite:
		if cfg.StatePath == "" {
			return fmt.Errorf("STATE_PATH is required when STATE_DRIVER=%s", cfg.StateDriver)
		}
	default:
		return fmt.Errorf("invalid STATE_DRIVER %q: valid values are %s, %s, %s", cfg.StateDriver, StateNone, StateFile, StateSQLite)
	}

	if cfg.CacheEnabled, err = parseBool("CACHE_ENABLED", "true"); err != nil {
		return err
	}
	if cfg.CacheTTL, err = parsePositiveDuration("CACHE_TTL", "30s"); err != nil {
		return err
	}

	rawSeed := strings.TrimSpace(getEnv("DRAW_SEED", ""))
	if rawSeed != "" {
		cfg.DrawSeed, err = strconv.ParseUint(rawSeed, 10, 64)
		if err != nil {
			return fmt.Errorf("parse DRAW_SEED: %w", err)
		}
	}

	return nil
}

func loadAuth(cfg *Config) error {
	var err error

	cfg.AuthMode = strings.ToLower(strings.TrimSpace(getEnv("AUTH_MODE", AuthJWT)))
	switch cfg.AuthMode {
	case AuthJWT:
		cfg.JWTSecret = getEnv("JWT_SECRET", "")
		if cfg.JWTSecret == "" && cfg.AppEnv == EnvDev {
			cfg.JWTSecret = "komiti-dev-secret-change-me"
		}
		if len(cfg.JWTSecret) < 16 {
			return errors.New("JWT_SECRET must be at least 16 characters")
		}
		if cfg.JWTTTL, err = parsePositiveDuration("JWT_TTL", "24h"); err != nil {
			return err
		}
	case AuthAnubis:
		if cfg.AnubisBaseURL == "" {
			return fmt.Errorf("ANUBIS_BASE_URL is required when AUTH_MODE=%s", AuthAnubis)
		}
		if cfg.AnubisTimeout, err = parsePositiveDuration("ANUBIS_TIMEOUT", "3s"); err != nil {
			return err
		}
		if cfg.AnubisCacheTTL, err = parsePositiveDuration("ANUBIS_CACHE_TTL", "30s"); err != nil {
			return err
		}
		if cfg.AnubisCircuit, err = parseCircuit("ANUBIS"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid AUTH_MODE %q: valid values are %s, %s", cfg.AuthMode, AuthJWT, AuthAnubis)
	}

	return nil
}

func loadTextGen(cfg *Config) error {
	var err error

	if cfg.TextGenEnabled, err = parseBool("TEXTGEN_ENABLED", "false"); err != nil {
		return err
	}
	if cfg.TextGenEnabled && cfg.TextGenAPIKey == "" {
		return errors.New("TEXTGEN_API_KEY is required when TEXTGEN_ENABLED=true")
	}
	if cfg.TextGenTimeout, err = parsePositiveDuration("TEXTGEN_TIMEOUT", "8s"); err != nil {
		return err
	}
	if cfg.TextGenCircuit, err = parseCircuit("TEXTGEN"); err != nil {
		return err
	}

	return nil
}

func loadReminders(cfg *Config) error {
	var err error

	if cfg.ReminderEnabled, err = parseBool("REMINDER_ENABLED", "false"); err != nil {
		return err
	}
	if cfg.ReminderEnabled {
		if _, err := cron.ParseStandard(cfg.ReminderCron); err != nil {
			return fmt.Errorf("parse REMINDER_CRON: %w", err)
		}
	}
	if cfg.ReminderLanguage != "en" && cfg.ReminderLanguage != "ur" {
		return fmt.Errorf("invalid REMINDER_LANGUAGE %q: valid values are en, ur", cfg.ReminderLanguage)
	}
	if cfg.ReminderTimeout, err = parsePositiveDuration("REMINDER_TIMEOUT", "2m"); err != nil {
		return err
	}

	if cfg.QStashEnabled, err = parseBool("QSTASH_ENABLED", "false"); err != nil {
		return err
	}
	if cfg.QStashEnabled {
		if cfg.QStashToken == "" {
			return errors.New("QSTASH_TOKEN is required when QSTASH_ENABLED=true")
		}
		if cfg.QStashTargetBaseURL == "" {
			return errors.New("QSTASH_TARGET_BASE_URL is required when QSTASH_ENABLED=true")
		}
	}
	if cfg.QStashRetries, err = getEnvAsInt("QSTASH_RETRIES", 3); err != nil {
		return fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	if cfg.QStashRetries < 0 {
		return errors.New("QSTASH_RETRIES must be >= 0")
	}
	if cfg.QStashTimeout, err = parsePositiveDuration("QSTASH_TIMEOUT", "5s"); err != nil {
		return err
	}
	if cfg.QStashCircuit, err = parseCircuit("QSTASH"); err != nil {
		return err
	}

	return nil
}

func loadObservability(cfg *Config) error {
	var err error

	if cfg.PprofEnabled, err = parseBool("PPROF_ENABLED", "false"); err != nil {
		return err
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return errors.New("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.UptraceEnabled, err = parseBool("UPTRACE_ENABLED", "false"); err != nil {
		return err
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return errors.New("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = parseBool("PYROSCOPE_ENABLED", "false"); err != nil {
		return err
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return errors.New("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = parsePositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}

	return nil
}

func parseCircuit(prefix string) (resilience.CircuitBreakerConfig, error) {
	var (
		out resilience.CircuitBreakerConfig
		err error
	)

	if out.Enabled, err = parseBool(prefix+"_CIRCUIT_ENABLED", "true"); err != nil {
		return out, err
	}
	if out.FailureThreshold, err = getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return out, fmt.Errorf("parse %s_CIRCUIT_FAILURE_COUNT: %w", prefix, err)
	}
	if out.FailureThreshold < 1 {
		return out, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}
	if out.OpenTimeout, err = parsePositiveDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", "15s"); err != nil {
		return out, err
	}
	if out.HalfOpenMaxReq, err = getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", 2); err != nil {
		return out, fmt.Errorf("parse %s_CIRCUIT_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if out.HalfOpenMaxReq < 1 {
		return out, fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}

	return out, nil
}

func loadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseBool(key, fallback string) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, fallback))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func parseLogFormat(v string) (logging.Format, error) {
	switch logging.Format(strings.ToLower(strings.TrimSpace(v))) {
	case logging.FormatJSON:
		return logging.FormatJSON, nil
	case logging.FormatConsole:
		return logging.FormatConsole, nil
	default:
		return "", fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are json, console", v)
	}
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

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
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
