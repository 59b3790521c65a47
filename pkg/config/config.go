package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config groups the application configuration (read via Viper from env vars
// and optionally from a file).
type Config struct {
	App   AppConfig
	HTTP  HTTPConfig
	JWT   JWTConfig
	Auth  AuthConfig
	Store StoreConfig
	Blob  BlobConfig
	DB    DBConfig
}

// AppConfig general application settings.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
	Timezone string // IANA zone used for day bucketing, e.g. "Africa/Gaborone"; empty = UTC
}

// HTTPConfig HTTP server settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig session token settings.
type JWTConfig struct {
	Secret     string
	Expiration int // minutes
	Issuer     string
}

// AuthConfig operator credentials. PasswordHash (bcrypt) takes precedence;
// Password is hashed at startup and is intended for development only.
type AuthConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

// StoreConfig selects and parameterizes the customer collection backend.
// Driver "memory" keeps documents in process, persisted as JSON under DataDir
// when DataDir is non-empty. Driver "postgres" uses DBConfig.
type StoreConfig struct {
	Driver  string
	DataDir string
}

// BlobConfig filesystem blob store settings. BaseURL is the public prefix
// attachment URLs are built from.
type BlobConfig struct {
	Dir     string
	BaseURL string
}

// DBConfig PostgreSQL settings. If DatabaseURL is non-empty it is used as the
// full connection string.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString returns the DSN to use: DatabaseURL when set, otherwise
// one built from the individual fields.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN builds the PostgreSQL connection string, URL-encoding credentials.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// Load reads configuration from environment variables (and optionally from a
// .env/config file). Env vars win. Expected names: APP_ENV, HTTP_PORT,
// JWT_SECRET, ADMIN_USERNAME, STORE_DRIVER, BLOB_DIR, DATABASE_URL, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Optional config file (.env or config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // missing file is fine

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "letshego-analytics"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
			Timezone: getString(v, "APP_TIMEZONE", ""),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 480),
			Issuer:     getString(v, "JWT_ISSUER", "letshego-analytics"),
		},
		Auth: AuthConfig{
			Username:     getString(v, "ADMIN_USERNAME", "admin"),
			Password:     getString(v, "ADMIN_PASSWORD", ""),
			PasswordHash: getString(v, "ADMIN_PASSWORD_HASH", ""),
		},
		Store: StoreConfig{
			Driver:  getString(v, "STORE_DRIVER", "memory"),
			DataDir: getString(v, "STORE_DATA_DIR", "./data/customers"),
		},
		Blob: BlobConfig{
			Dir:     getString(v, "BLOB_DIR", "./data/blobs"),
			BaseURL: getString(v, "BLOB_BASE_URL", "/files"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "letshego_kyc"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
