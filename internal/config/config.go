package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/qchockey/lheqstats/internal/platform/logging"
)

// Config stores runtime configuration for the stats pipeline.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	GamesDir            string
	DivisionChartPath   string
	StartingGoaliesPath string
	OutputDir           string

	LoaderMaxWorkers int

	DivisionMatchThreshold float64

	FormationMaxForwardLines   int
	FormationMaxDefensePairs   int
	FormationMaxPowerplayUnits int
	FormationMinPairWeight     int

	LogoFetchEnabled        bool
	LogoTimeout             time.Duration
	LogoMaxRetries          int
	LogoMaxParallel         int
	LogoCircuitEnabled      bool
	LogoCircuitFailureCount int
	LogoCircuitOpenTimeout  time.Duration
	LogoCircuitHalfOpenMax  int

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled     bool
	UptraceDSN         string
	UptraceLogsEnabled bool

	BetterStackEnabled  bool
	BetterStackEndpoint string
	BetterStackToken    string
	BetterStackTimeout  time.Duration
	BetterStackMinLevel logging.Level

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	loaderMaxWorkers, err := getEnvAsInt("LOADER_MAX_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse LOADER_MAX_WORKERS: %w", err)
	}
	if loaderMaxWorkers < 1 {
		return Config{}, fmt.Errorf("LOADER_MAX_WORKERS must be >= 1")
	}

	divisionMatchThreshold, err := getEnvAsFloat("DIVISION_MATCH_THRESHOLD", 0.7)
	if err != nil {
		return Config{}, fmt.Errorf("parse DIVISION_MATCH_THRESHOLD: %w", err)
	}
	if divisionMatchThreshold <= 0 || divisionMatchThreshold > 1 {
		return Config{}, fmt.Errorf("DIVISION_MATCH_THRESHOLD must be in (0,1]")
	}

	formationMaxForwardLines, err := getEnvAsInt("FORMATION_MAX_FORWARD_LINES", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse FORMATION_MAX_FORWARD_LINES: %w", err)
	}
	if formationMaxForwardLines < 1 {
		return Config{}, fmt.Errorf("FORMATION_MAX_FORWARD_LINES must be >= 1")
	}
	formationMaxDefensePairs, err := getEnvAsInt("FORMATION_MAX_DEFENSE_PAIRS", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse FORMATION_MAX_DEFENSE_PAIRS: %w", err)
	}
	if formationMaxDefensePairs < 1 {
		return Config{}, fmt.Errorf("FORMATION_MAX_DEFENSE_PAIRS must be >= 1")
	}
	formationMaxPowerplayUnits, err := getEnvAsInt("FORMATION_MAX_POWERPLAY_UNITS", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse FORMATION_MAX_POWERPLAY_UNITS: %w", err)
	}
	if formationMaxPowerplayUnits < 1 {
		return Config{}, fmt.Errorf("FORMATION_MAX_POWERPLAY_UNITS must be >= 1")
	}
	formationMinPairWeight, err := getEnvAsInt("FORMATION_MIN_PAIR_WEIGHT", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FORMATION_MIN_PAIR_WEIGHT: %w", err)
	}
	if formationMinPairWeight < 1 {
		return Config{}, fmt.Errorf("FORMATION_MIN_PAIR_WEIGHT must be >= 1")
	}

	logoFetchEnabled, err := strconv.ParseBool(getEnv("LOGO_FETCH_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LOGO_FETCH_ENABLED: %w", err)
	}
	logoTimeout, err := time.ParseDuration(getEnv("LOGO_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LOGO_TIMEOUT: %w", err)
	}
	if logoTimeout <= 0 {
		return Config{}, fmt.Errorf("LOGO_TIMEOUT must be > 0")
	}
	logoMaxRetries, err := getEnvAsInt("LOGO_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse LOGO_MAX_RETRIES: %w", err)
	}
	if logoMaxRetries < 0 {
		return Config{}, fmt.Errorf("LOGO_MAX_RETRIES must be >= 0")
	}
	logoMaxParallel, err := getEnvAsInt("LOGO_MAX_PARALLEL", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse LOGO_MAX_PARALLEL: %w", err)
	}
	if logoMaxParallel < 1 {
		return Config{}, fmt.Errorf("LOGO_MAX_PARALLEL must be >= 1")
	}
	logoCircuitEnabled, err := strconv.ParseBool(getEnv("LOGO_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LOGO_CIRCUIT_ENABLED: %w", err)
	}
	logoCircuitFailureCount, err := getEnvAsInt("LOGO_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse LOGO_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if logoCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("LOGO_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	logoCircuitOpenTimeout, err := time.ParseDuration(getEnv("LOGO_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LOGO_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if logoCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("LOGO_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	logoCircuitHalfOpenMax, err := getEnvAsInt("LOGO_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse LOGO_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if logoCircuitHalfOpenMax < 1 {
		return Config{}, fmt.Errorf("LOGO_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	betterStackEndpoint := strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if betterStackEnabled && betterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	betterStackTimeout, err := time.ParseDuration(getEnv("BETTERSTACK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_TIMEOUT: %w", err)
	}
	if betterStackTimeout <= 0 {
		return Config{}, fmt.Errorf("BETTERSTACK_TIMEOUT must be > 0")
	}
	betterStackMinLevel := parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error"))

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	logLevel := parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "lheqstats"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:                   logLevel,
		GamesDir:                   strings.TrimSpace(getEnv("GAMES_DIR", "data/games")),
		DivisionChartPath:          strings.TrimSpace(getEnv("DIVISION_CHART_PATH", "data/divisions.json")),
		StartingGoaliesPath:        strings.TrimSpace(getEnv("STARTING_GOALIES_PATH", "data/starting_goalies.json")),
		OutputDir:                  strings.TrimSpace(getEnv("OUTPUT_DIR", "out")),
		LoaderMaxWorkers:           loaderMaxWorkers,
		DivisionMatchThreshold:     divisionMatchThreshold,
		FormationMaxForwardLines:   formationMaxForwardLines,
		FormationMaxDefensePairs:   formationMaxDefensePairs,
		FormationMaxPowerplayUnits: formationMaxPowerplayUnits,
		FormationMinPairWeight:     formationMinPairWeight,
		LogoFetchEnabled:           logoFetchEnabled,
		LogoTimeout:                logoTimeout,
		LogoMaxRetries:             logoMaxRetries,
		LogoMaxParallel:            logoMaxParallel,
		LogoCircuitEnabled:         logoCircuitEnabled,
		LogoCircuitFailureCount:    logoCircuitFailureCount,
		LogoCircuitOpenTimeout:     logoCircuitOpenTimeout,
		LogoCircuitHalfOpenMax:     logoCircuitHalfOpenMax,
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		BetterStackEnabled:         betterStackEnabled,
		BetterStackEndpoint:        betterStackEndpoint,
		BetterStackToken:           strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackTimeout:         betterStackTimeout,
		BetterStackMinLevel:        betterStackMinLevel,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if cfg.GamesDir == "" {
		return Config{}, fmt.Errorf("GAMES_DIR cannot be empty")
	}
	if cfg.DivisionChartPath == "" {
		return Config{}, fmt.Errorf("DIVISION_CHART_PATH cannot be empty")
	}
	if cfg.StartingGoaliesPath == "" {
		return Config{}, fmt.Errorf("STARTING_GOALIES_PATH cannot be empty")
	}
	if cfg.OutputDir == "" {
		return Config{}, fmt.Errorf("OUTPUT_DIR cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
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

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
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
