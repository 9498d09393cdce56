package datasource

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oakenode/provisor/internal/provider"
)

// SQLiteConfig holds file and pool parameters for a SQLite database.
type SQLiteConfig struct {
	Path        string `mapstructure:"path"`
	BusyTimeout int    `mapstructure:"busy_timeout"`

	PoolSize    int `mapstructure:"pool_size"`
	MaxOverflow int `mapstructure:"max_overflow"`
	PoolRecycle int `mapstructure:"pool_recycle"`
}

func newSQLiteConfig() provider.Config {
	return &SQLiteConfig{
		BusyTimeout: 20,
		PoolSize:    5,
		MaxOverflow: 10,
		PoolRecycle: 3600,
	}
}

func (c *SQLiteConfig) Validate() error {
	verr := &provider.ValidationError{}
	if c.Path == "" {
		verr.Add("path", "is required")
	}
	if c.BusyTimeout <= 0 {
		verr.Add("busy_timeout", "must be positive")
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
	return verr.OrNil()
}

// DSN renders the database path with the busy-timeout option appended. Pure:
// the same record always renders the same string.
func (c *SQLiteConfig) DSN() string {
	sep := "?"
	if strings.Contains(c.Path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_busy_timeout=%d", c.Path, sep, c.BusyTimeout*1000)
}

func newSQLiteClient(config provider.Config) (*gorm.DB, error) {
	cfg, ok := config.(*SQLiteConfig)
	if !ok {
		return nil, errors.New("invalid config type for SQLite")
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN()), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return applyPool(db, cfg.PoolSize, cfg.MaxOverflow, cfg.PoolRecycle)
}
