// Package config defines the configuration contract and will handle loading and validating environment configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// Canonical environment variable keys.
	KeyTelegramToken    = "TELEGRAM_TOKEN"
	KeyCommerceClientID = "EP_CLIENT_ID"
	KeyCommerceSecret   = "EP_CLIENT_SECRET"
	KeyCommerceBaseURL  = "EP_API_BASE"
	KeyDatabaseHost     = "DATABASE_HOST"
	KeyDatabasePort     = "DATABASE_PORT"
	KeyDatabasePassword = "DATABASE_PASSWORD"
	KeyAppEnv           = "APP_ENV"
	KeyLogLevel         = "LOG_LEVEL"
	KeyHTTPPort         = "HTTP_PORT"

	// Allowed environment values.
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// Defaults for optional settings.
	DefaultAppEnv          = EnvProduction
	DefaultLogLevel        = "info"
	DefaultHTTPPort        = 8080
	DefaultDatabasePort    = 6379
	DefaultCommerceBaseURL = "https://useast.api.elasticpath.com"
)

// VarSpec describes a single configuration key.
type VarSpec struct {
	Key         string // environment variable name
	Example     string // human-friendly sample value
	Required    bool   // whether the bot must refuse to start without this value
	Default     string // default when unset (empty when required)
	Description string // what the variable controls
	Notes       string // extra guidance or policies
}

// Contract enumerates the authoritative configuration keys for the bot.
// .env loading is only permitted when APP_ENV=development; production must rely
// on environment variables supplied by the runtime.
var Contract = []VarSpec{
	{
		Key:         KeyTelegramToken,
		Example:     "123:ABC",
		Required:    true,
		Description: "Telegram Bot Token issued by BotFather.",
	},
	{
		Key:         KeyCommerceClientID,
		Example:     "j6hSikCx...",
		Required:    true,
		Description: "Commerce API client id for the client_credentials grant.",
	},
	{
		Key:         KeyCommerceSecret,
		Example:     "Qp0vL2ae...",
		Required:    true,
		Description: "Commerce API client secret for the client_credentials grant.",
	},
	{
		Key:         KeyCommerceBaseURL,
		Example:     DefaultCommerceBaseURL,
		Default:     DefaultCommerceBaseURL,
		Description: "Base URL of the commerce backend.",
	},
	{
		Key:         KeyDatabaseHost,
		Example:     "localhost",
		Required:    true,
		Description: "Session store (Redis) host.",
	},
	{
		Key:         KeyDatabasePort,
		Example:     strconv.Itoa(DefaultDatabasePort),
		Default:     strconv.Itoa(DefaultDatabasePort),
		Description: "Session store (Redis) port.",
	},
	{
		Key:         KeyDatabasePassword,
		Example:     "s3cret",
		Description: "Session store (Redis) password; empty for unauthenticated stores.",
	},
	{
		Key:         KeyAppEnv,
		Example:     EnvDevelopment + " / " + EnvProduction,
		Default:     DefaultAppEnv,
		Description: "Runtime environment; controls log format and dotenv usage.",
		Notes:       "Load .env files only when APP_ENV=" + EnvDevelopment + ".",
	},
	{
		Key:         KeyLogLevel,
		Example:     DefaultLogLevel,
		Default:     DefaultLogLevel,
		Description: "Overrides default log level.",
	},
	{
		Key:         KeyHTTPPort,
		Example:     strconv.Itoa(DefaultHTTPPort),
		Default:     strconv.Itoa(DefaultHTTPPort),
		Description: "HTTP health/diagnostics port.",
	},
}

// Config mirrors resolved configuration values after loading.
type Config struct {
	TelegramToken    string
	CommerceClientID string
	CommerceSecret   string
	CommerceBaseURL  string
	DatabaseHost     string
	DatabasePort     int
	DatabasePassword string
	AppEnv           string
	LogLevel         string
	HTTPPort         int
}

// Load resolves configuration from the environment (with optional dotenv in development).
func Load() (Config, error) {
	appEnv, err := resolveAppEnv()
	if err != nil {
		return Config{}, err
	}

	if err := loadDotEnv(appEnv); err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:           firstNonEmpty(normalizeEnv(os.Getenv(KeyAppEnv)), appEnv),
		TelegramToken:    strings.TrimSpace(os.Getenv(KeyTelegramToken)),
		CommerceClientID: strings.TrimSpace(os.Getenv(KeyCommerceClientID)),
		CommerceSecret:   strings.TrimSpace(os.Getenv(KeyCommerceSecret)),
		CommerceBaseURL:  firstNonEmpty(strings.TrimSpace(os.Getenv(KeyCommerceBaseURL)), DefaultCommerceBaseURL),
		DatabaseHost:     strings.TrimSpace(os.Getenv(KeyDatabaseHost)),
		DatabasePassword: os.Getenv(KeyDatabasePassword),
		DatabasePort:     DefaultDatabasePort,
		LogLevel:         firstNonEmpty(strings.TrimSpace(os.Getenv(KeyLogLevel)), DefaultLogLevel),
		HTTPPort:         DefaultHTTPPort,
	}

	if err := validateAppEnv(cfg.AppEnv); err != nil {
		return Config{}, err
	}

	missing := make([]string, 0)

	if cfg.TelegramToken == "" {
		missing = append(missing, KeyTelegramToken)
	}

	if cfg.CommerceClientID == "" {
		missing = append(missing, KeyCommerceClientID)
	}

	if cfg.CommerceSecret == "" {
		missing = append(missing, KeyCommerceSecret)
	}

	if cfg.DatabaseHost == "" {
		missing = append(missing, KeyDatabaseHost)
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variable(s): %s", strings.Join(missing, ", "))
	}

	cfg.CommerceBaseURL = strings.TrimRight(cfg.CommerceBaseURL, "/")
	if !strings.HasPrefix(cfg.CommerceBaseURL, "http://") && !strings.HasPrefix(cfg.CommerceBaseURL, "https://") {
		return Config{}, fmt.Errorf("invalid %s: must start with http:// or https://", KeyCommerceBaseURL)
	}

	databasePortRaw := strings.TrimSpace(os.Getenv(KeyDatabasePort))
	if databasePortRaw != "" {
		port, parseErr := strconv.Atoi(databasePortRaw)
		if parseErr != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", KeyDatabasePort, parseErr)
		}
		if port <= 0 {
			return Config{}, fmt.Errorf("%s must be greater than 0", KeyDatabasePort)
		}
		cfg.DatabasePort = port
	}

	httpPortRaw := strings.TrimSpace(os.Getenv(KeyHTTPPort))
	if httpPortRaw != "" {
		port, parseErr := strconv.Atoi(httpPortRaw)
		if parseErr != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", KeyHTTPPort, parseErr)
		}
		if port <= 0 {
			return Config{}, fmt.Errorf("%s must be greater than 0", KeyHTTPPort)
		}
		cfg.HTTPPort = port
	}

	return cfg, nil
}

// DatabaseAddr returns the host:port address of the session store.
func (c Config) DatabaseAddr() string {
	return fmt.Sprintf("%s:%d", c.DatabaseHost, c.DatabasePort)
}

// IsDevelopment reports if APP_ENV is development.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// FormatRedacted renders a multi-line summary of the configuration with
// credentials masked, suitable for startup diagnostics.
func FormatRedacted(cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "telegram_token: %s\n", maskSecret(cfg.TelegramToken))
	fmt.Fprintf(&b, "ep_client_id: %s\n", maskSecret(cfg.CommerceClientID))
	fmt.Fprintf(&b, "ep_client_secret: %s\n", maskSecret(cfg.CommerceSecret))
	fmt.Fprintf(&b, "ep_api_base: %s\n", cfg.CommerceBaseURL)
	fmt.Fprintf(&b, "database_addr: %s\n", cfg.DatabaseAddr())
	fmt.Fprintf(&b, "database_password: %s\n", maskSecret(cfg.DatabasePassword))
	fmt.Fprintf(&b, "app_env: %s\n", cfg.AppEnv)
	fmt.Fprintf(&b, "log_level: %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "http_port: %d", cfg.HTTPPort)

	return b.String()
}

func maskSecret(value string) string {
	if value == "" {
		return "(unset)"
	}
	if len(value) <= 4 {
		return "...redacted"
	}
	return value[:4] + "...redacted"
}

func resolveAppEnv() (string, error) {
	if explicit := normalizeEnv(os.Getenv(KeyAppEnv)); explicit != "" {
		return explicit, nil
	}

	dotEnvValues, err := godotenv.Read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultAppEnv, nil
		}
		return "", fmt.Errorf("read .env: %w", err)
	}

	if envFromFile := normalizeEnv(dotEnvValues[KeyAppEnv]); envFromFile != "" {
		return envFromFile, nil
	}

	return DefaultAppEnv, nil
}

func loadDotEnv(appEnv string) error {
	if appEnv != EnvDevelopment {
		return nil
	}

	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}

func validateAppEnv(appEnv string) error {
	if appEnv == EnvDevelopment || appEnv == EnvProduction {
		return nil
	}

	return fmt.Errorf("invalid %s: must be %q or %q", KeyAppEnv, EnvDevelopment, EnvProduction)
}

func normalizeEnv(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val)
		}
	}
	return ""
}
