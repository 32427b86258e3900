package database

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// DriverSQLite selects the embedded SQLite engine.
	DriverSQLite = "sqlite"
	// DriverPostgres selects PostgreSQL via lib/pq.
	DriverPostgres = "postgres"

	// DefaultSQLitePath is used when no DB_PATH is configured.
	DefaultSQLitePath = "data/database.sqlite3"
	// DefaultTimeout bounds a single storage operation.
	DefaultTimeout = 5 * time.Second
)

// Config holds database connection settings shared across bots.
type Config struct {
	Driver string `yaml:"driver" envconfig:"DB_DRIVER"`
	// Path is the SQLite database file.
	Path string `yaml:"path" envconfig:"DB_PATH"`

	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`

	Timeout time.Duration `yaml:"timeout" envconfig:"DB_TIMEOUT"`
}

// Normalize fills defaults and validates the driver choice.
func (c *Config) Normalize() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case "", "sqlite3", DriverSQLite:
		c.Driver = DriverSQLite
		if strings.TrimSpace(c.Path) == "" {
			c.Path = DefaultSQLitePath
		}
		// SQLite allows one writer; a single connection serializes inserts at the pool.
		c.MaxConnections = 1
	case "postgresql", DriverPostgres:
		c.Driver = DriverPostgres
		if c.Host == "" {
			return fmt.Errorf("database: host is required for postgres")
		}
		if c.SSLMode == "" {
			c.SSLMode = "disable"
		}
		if c.MaxConnections <= 0 {
			c.MaxConnections = 5
		}
	default:
		return fmt.Errorf("database: unsupported driver %q; allowed: sqlite, postgres", c.Driver)
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}

// DSN returns the connection string for sqlx.
func (c Config) DSN() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf(
			"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
		)
	}
	return "file:" + c.Path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// MigrateURL returns the golang-migrate database URL.
func (c Config) MigrateURL() string {
	if c.Driver == DriverPostgres {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Host + ":" + c.Port,
			Path:     "/" + c.Name,
			RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
		}
		return u.String()
	}
	return "sqlite://" + c.Path
}
