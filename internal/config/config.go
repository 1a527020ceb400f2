package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store drivers accepted in DB_DRIVER. "memory" keeps products in process.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds runtime configuration.
type Config struct {
	AppPort         string
	DBDriver        string
	DatabaseDSN     string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnLifetime  time.Duration
	RabbitMQURL     string
	AllowedOrigins  []string
	LogLevel        string
	LogJSON         bool
	ShutdownTimeout time.Duration
	Clear           bool
}

// Load reads configuration from defaults, environment variables and the
// given command-line arguments, in increasing order of precedence.
func Load(args []string) (Config, error) {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=stockroom port=5432 sslmode=disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("CLIENT_URL", "http://localhost:5173")
	v.SetDefault("SERVER_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.AutomaticEnv()

	flags := pflag.NewFlagSet("stockroom", pflag.ContinueOnError)
	flags.Bool("clear", false, "drop and recreate the products table, then exit")
	flags.String("port", "", "listen address, overrides APP_PORT")
	flags.String("db-driver", "", "store driver: postgres, sqlite or memory")
	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse flags: %w", err)
	}
	if port, _ := flags.GetString("port"); port != "" {
		v.Set("APP_PORT", port)
	}
	if driver, _ := flags.GetString("db-driver"); driver != "" {
		v.Set("DB_DRIVER", driver)
	}

	// --clear is destructive, so only the command line can enable it.
	clearTable, _ := flags.GetBool("clear")

	lifetime, err := cast.ToDurationE(v.Get("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}
	shutdown, err := cast.ToDurationE(v.Get("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppPort:         v.GetString("APP_PORT"),
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		DBMaxOpenConns:  v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:  v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnLifetime:  lifetime,
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		AllowedOrigins:  origins(v.GetString("CLIENT_URL"), v.GetString("SERVER_URL")),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogJSON:         v.GetBool("LOG_JSON"),
		ShutdownTimeout: shutdown,
		Clear:           clearTable,
	}

	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

func origins(urls ...string) []string {
	var out []string
	for _, u := range urls {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			out = append(out, u)
		}
	}
	return out
}
