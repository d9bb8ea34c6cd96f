package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"coopfin-loan-engine/pkg/logger"

	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	DBDriver string
	DBLogSQL bool

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PGHost    string
	PGPort    string
	PGDB      string
	PGUser    string
	PGPass    string
	PGSSLMode string

	SQLitePath string

	RedisAddr string
	RedisPass string
	RedisDB   int

	IdempTTLSecs    int
	WalletLockTTLMs int

	KafkaBrokers []string
	KafkaTopic   string

	DefaultCurrency string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	// .env is optional; real deployments inject the environment directly
	if err := godotenv.Load(); err != nil {
		logger.Debugf("config: no .env file loaded: %v", err)
	}

	c := &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		AppEnv:   getenv("APP_ENV", "development"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBDriver: strings.ToLower(getenv("DB_DRIVER", DriverMySQL)),
		DBLogSQL: getenv("DB_LOG_SQL", "false") == "true",

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "coopfin"),
		MySQLUser: getenv("MYSQL_USER", "coopfin"),
		MySQLPass: getenv("MYSQL_PASS", "coopfin"),

		PGHost:    getenv("PG_HOST", "postgres"),
		PGPort:    getenv("PG_PORT", "5432"),
		PGDB:      getenv("PG_DB", "coopfin"),
		PGUser:    getenv("PG_USER", "coopfin"),
		PGPass:    getenv("PG_PASS", "coopfin"),
		PGSSLMode: getenv("PG_SSL_MODE", "disable"),

		SQLitePath: getenv("SQLITE_PATH", "coopfin.db"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisPass: os.Getenv("REDIS_PASSWORD"),
		RedisDB:   getenvInt("REDIS_DB", 0),

		IdempTTLSecs:    getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),
		WalletLockTTLMs: getenvInt("WALLET_LOCK_TTL_MS", 5000),

		KafkaTopic: getenv("KAFKA_TOPIC", "coopfin.loan-events"),

		DefaultCurrency: strings.ToUpper(getenv("DEFAULT_CURRENCY", "IDR")),
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.KafkaBrokers = append(c.KafkaBrokers, b)
			}
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("invalid DEFAULT_CURRENCY %q", c.DefaultCurrency)
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverPostgres:
		if c.PGHost == "" || c.PGPort == "" || c.PGDB == "" || c.PGUser == "" {
			return errors.New("missing Postgres config (PG_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.PGPort); err != nil {
			return fmt.Errorf("invalid PG_PORT %q: %w", c.PGPort, err)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.WalletLockTTLMs <= 0 {
		return fmt.Errorf("invalid WALLET_LOCK_TTL_MS %d", c.WalletLockTTLMs)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.PGHost, c.PGPort, c.PGUser, c.PGPass, c.PGDB, c.PGSSLMode)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		return c.PostgresDSN()
	case DriverSQLite:
		return c.SQLitePath
	default:
		return c.MySQLDSN()
	}
}
