package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/fpl-collector/internal/platform/logging"
)

const (
	HistorySelectionTotalPoints = "total_points"
	HistorySelectionOwnership   = "ownership"
)

// Config stores runtime configuration for the collector.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level
	LogFormat      string `validate:"oneof=json console"`

	FPLBaseURL               string        `validate:"required,url"`
	FPLUserAgent             string        `validate:"required"`
	FPLTimeout               time.Duration `validate:"gt=0"`
	FPLMaxAttempts           int           `validate:"gte=1,lte=10"`
	FPLHistoryMaxAttempts    int           `validate:"gte=1,lte=10"`
	FPLBackoffInitial        time.Duration `validate:"gte=0"`
	FPLBackoffMax            time.Duration `validate:"gte=0"`
	FPLRequestDelay          time.Duration `validate:"gte=0"`
	FPLCircuitEnabled        bool
	FPLCircuitFailureCount   int           `validate:"gte=1"`
	FPLCircuitOpenTimeout    time.Duration `validate:"gt=0"`
	FPLCircuitHalfOpenMaxReq int           `validate:"gte=1"`
	// FPLHistoryCircuitFailureCount counts consecutive players, not attempts.
	FPLHistoryCircuitFailureCount int `validate:"gte=1"`

	HistoryCount     int    `validate:"gte=0"`
	HistorySelection string `validate:"oneof=total_points ownership"`
	OutputDir        string `validate:"required"`

	Validation ValidationConfig

	ArchiveEnabled          bool
	DBURL                   string `validate:"required_if=ArchiveEnabled true"`
	DBDisablePreparedBinary bool

	Mirror MirrorConfig

	MetricsTextfile string

	UptraceEnabled bool
	UptraceDSN     string `validate:"required_if=UptraceEnabled true"`
}

type ValidationConfig struct {
	PlayersMin      int     `validate:"gte=0"`
	PlayersMax      int     `validate:"gte=0"`
	Teams           int     `validate:"gte=0"`
	FixturesMin     int     `validate:"gte=0"`
	FixturesMax     int     `validate:"gte=0"`
	Gameweeks       int     `validate:"gte=0"`
	HistoryCoverage float64 `validate:"gte=0,lte=1"`
}

type MirrorConfig struct {
	Enabled         bool
	Bucket          string `validate:"required_if=Enabled true"`
	Prefix          string
	Endpoint        string `validate:"omitempty,url"`
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

func Load() (Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:           appEnv,
		ServiceName:      getEnv("APP_SERVICE_NAME", "fpl-collector"),
		ServiceVersion:   getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:         logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", logging.FormatJSON))),
		FPLBaseURL:       strings.TrimRight(strings.TrimSpace(getEnv("FPL_BASE_URL", "https://fantasy.premierleague.com/api")), "/"),
		FPLUserAgent:     strings.TrimSpace(getEnv("FPL_USER_AGENT", "fpl-collector/1.0")),
		HistorySelection: strings.ToLower(strings.TrimSpace(getEnv("HISTORY_SELECTION", HistorySelectionTotalPoints))),
		OutputDir:        strings.TrimSpace(getEnv("OUTPUT_DIR", "data")),
		DBURL:            strings.TrimSpace(getEnv("DB_URL", "")),
		MetricsTextfile:  strings.TrimSpace(getEnv("METRICS_TEXTFILE", "")),
		UptraceDSN:       strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		Mirror: MirrorConfig{
			Bucket:          strings.TrimSpace(getEnv("MIRROR_BUCKET", "")),
			Prefix:          strings.Trim(strings.TrimSpace(getEnv("MIRROR_PREFIX", "fpl")), "/"),
			Endpoint:        strings.TrimSpace(getEnv("MIRROR_ENDPOINT", "")),
			Region:          strings.TrimSpace(getEnv("MIRROR_REGION", "auto")),
			AccessKeyID:     strings.TrimSpace(getEnv("MIRROR_ACCESS_KEY_ID", "")),
			SecretAccessKey: strings.TrimSpace(getEnv("MIRROR_SECRET_ACCESS_KEY", "")),
		},
	}

	if cfg.FPLTimeout, err = getEnvAsDuration("FPL_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}
	if cfg.FPLMaxAttempts, err = getEnvAsInt("FPL_MAX_ATTEMPTS", 3); err != nil {
		return Config{}, fmt.Errorf("parse FPL_MAX_ATTEMPTS: %w", err)
	}
	if cfg.FPLHistoryMaxAttempts, err = getEnvAsInt("FPL_HISTORY_MAX_ATTEMPTS", 3); err != nil {
		return Config{}, fmt.Errorf("parse FPL_HISTORY_MAX_ATTEMPTS: %w", err)
	}
	if cfg.FPLBackoffInitial, err = getEnvAsDuration("FPL_BACKOFF_INITIAL", "1s"); err != nil {
		return Config{}, err
	}
	if cfg.FPLBackoffMax, err = getEnvAsDuration("FPL_BACKOFF_MAX", "8s"); err != nil {
		return Config{}, err
	}
	if cfg.FPLRequestDelay, err = getEnvAsDuration("FPL_REQUEST_DELAY", "0s"); err != nil {
		return Config{}, err
	}
	if cfg.FPLCircuitEnabled, err = getEnvAsBool("FPL_CIRCUIT_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.FPLCircuitFailureCount, err = getEnvAsInt("FPL_CIRCUIT_FAILURE_COUNT", 10); err != nil {
		return Config{}, fmt.Errorf("parse FPL_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.FPLCircuitOpenTimeout, err = getEnvAsDuration("FPL_CIRCUIT_OPEN_TIMEOUT", "30s"); err != nil {
		return Config{}, err
	}
	if cfg.FPLCircuitHalfOpenMaxReq, err = getEnvAsInt("FPL_CIRCUIT_HALF_OPEN_MAX_REQ", 1); err != nil {
		return Config{}, fmt.Errorf("parse FPL_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.FPLHistoryCircuitFailureCount, err = getEnvAsInt("FPL_HISTORY_CIRCUIT_FAILURE_COUNT", 25); err != nil {
		return Config{}, fmt.Errorf("parse FPL_HISTORY_CIRCUIT_FAILURE_COUNT: %w", err)
	}

	if cfg.HistoryCount, err = getEnvAsInt("HISTORY_COUNT", 100); err != nil {
		return Config{}, fmt.Errorf("parse HISTORY_COUNT: %w", err)
	}

	if cfg.Validation, err = loadValidationConfig(); err != nil {
		return Config{}, err
	}

	if cfg.ArchiveEnabled, err = getEnvAsBool("ARCHIVE_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.DBDisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", true); err != nil {
		return Config{}, err
	}
	if cfg.Mirror.Enabled, err = getEnvAsBool("MIRROR_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks field constraints. Callers re-run it after applying CLI overrides.
func (c Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("invalid config %s: failed %q (value=%v)", first.Namespace(), first.Tag(), first.Value())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	if c.FPLBackoffMax > 0 && c.FPLBackoffMax < c.FPLBackoffInitial {
		return fmt.Errorf("FPL_BACKOFF_MAX must be >= FPL_BACKOFF_INITIAL")
	}
	if c.Validation.PlayersMax > 0 && c.Validation.PlayersMax < c.Validation.PlayersMin {
		return fmt.Errorf("VALIDATION_PLAYERS_MAX must be >= VALIDATION_PLAYERS_MIN")
	}
	if c.Validation.FixturesMax > 0 && c.Validation.FixturesMax < c.Validation.FixturesMin {
		return fmt.Errorf("VALIDATION_FIXTURES_MAX must be >= VALIDATION_FIXTURES_MIN")
	}
	return nil
}

func loadValidationConfig() (ValidationConfig, error) {
	var (
		out ValidationConfig
		err error
	)
	if out.PlayersMin, err = getEnvAsInt("VALIDATION_PLAYERS_MIN", 685); err != nil {
		return ValidationConfig{}, fmt.Errorf("parse VALIDATION_PLAYERS_MIN: %w", err)
	}
	if out.PlayersMax, err = getEnvAsInt("VALIDATION_PLAYERS_MAX", 900); err != nil {
		return ValidationConfig{}, fmt.Errorf("parse VALIDATION_PLAYERS_MAX: %w", err)
	}
	if out.Teams, err = getEnvAsInt("VALIDATION_TEAMS", 20); err != nil {
		return ValidationConfig{}, fmt.Errorf("parse VALIDATION_TEAMS: %w", err)
	}
	if out.FixturesMin, err = getEnvAsInt("VALIDATION_FIXTURES_MIN", 380); err != nil {
		return ValidationConfig{}, fmt.Errorf("parse VALIDATION_FIXTURES_MIN: %w", err)
	}
	if out.FixturesMax, err = getEnvAsInt("VALIDATION_FIXTURES_MAX", 380); err != nil {
		return ValidationConfig{}, fmt.Errorf("parse VALIDATION_FIXTURES_MAX: %w", err)
	}
	if out.Gameweeks, err = getEnvAsInt("VALIDATION_GAMEWEEKS", 38); err != nil {
		return ValidationConfig{}, fmt.Errorf("parse VALIDATION_GAMEWEEKS: %w", err)
	}
	raw := strings.TrimSpace(getEnv("VALIDATION_HISTORY_COVERAGE", "0.95"))
	if out.HistoryCoverage, err = strconv.ParseFloat(raw, 64); err != nil {
		return ValidationConfig{}, fmt.Errorf("parse VALIDATION_HISTORY_COVERAGE: %w", err)
	}
	return out, nil
}

func loadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
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

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
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

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
