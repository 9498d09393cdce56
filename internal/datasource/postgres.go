package datasource

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/oakenode/provisor/internal/provider"
)

// PostgresConfig holds connection and pool parameters for a PostgreSQL
// server.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	ApplicationName string `mapstructure:"application_name"`

	PoolSize       int `mapstructure:"pool_size"`
	MaxOverflow    int `mapstructure:"max_overflow"`
	PoolRecycle    int `mapstructure:"pool_recycle"`
	ConnectTimeout int `mapstructure:"connect_timeout"`
}

func newPostgresConfig() provider.Config {
	return &PostgresConfig{
		Port:            5432,
		SSLMode:         "require",
		ApplicationName: "provisor",
		PoolSize:        5,
		MaxOverflow:     10,
		PoolRecycle:     3600,
		ConnectTimeout:  10,
	}
}

func (c *PostgresConfig) Validate() error {
	verr := &provider.ValidationError{}
	if c.Host == "" {
		verr.Add("host", "is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		verr.Add("port", "must be between 1 and 65535")
	}
	if c.Database == "" {
		verr.Add("database", "is required")
	}
	if c.Username == "" {
		verr.Add("username", "is required")
	}
	if c.SSLMode == "" {
		verr.Add("sslmode", "is required")
	}
	if c.PoolSize <= 0 {
		verr.Add("pool_size", "must be positive")
	}
	if c.MaxOverflow < 0 {
		verr.Add("max_overflow", "must not be negative")
	}
	if c.PoolRecycle <= 0 {
		verr.Add("pool_recycle", "must be positive")
	}
	if c.ConnectTimeout <= 0 {
		verr.Add("connect_timeout", "must be positive")
	}
	return verr.OrNil()
}

// DSN renders the keyword-value connection string pgx accepts. Pure: the same
// record always renders the same string.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s connect_timeout=%d",
		c.Host, c.Port, c.Username, c.Password, c.Database,
		c.SSLMode, c.ApplicationName, c.ConnectTimeout,
	)
}

func newPostgresClient(config provider.Config) (*gorm.DB, error) {
	cfg, ok := config.(*PostgresConfig)
	if !ok {
		return nil, errors.New("invalid config type for PostgreSQL")
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return applyPool(db, cfg.PoolSize, cfg.MaxOverflow, cfg.PoolRecycle)
}
