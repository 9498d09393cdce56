package datasource

import (
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/oakenode/provisor/internal/provider"
)

// MySQLConfig holds connection and pool parameters for a MySQL server.
type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Charset  string `mapstructure:"charset"`

	PoolSize       int `mapstructure:"pool_size"`
	MaxOverflow    int `mapstructure:"max_overflow"`
	PoolRecycle    int `mapstructure:"pool_recycle"`
	ConnectTimeout int `mapstructure:"connect_timeout"`
}

func newMySQLConfig() provider.Config {
	return &MySQLConfig{
		Port:           3306,
		Charset:        "utf8mb4",
		PoolSize:       5,
		MaxOverflow:    10,
		PoolRecycle:    3600,
		ConnectTimeout: 10,
	}
}

func (c *MySQLConfig) Validate() error {
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

// DSN renders the go-sql-driver connection string. Pure: the same record
// always renders the same string.
func (c *MySQLConfig) DSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&timeout=%ds",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset, c.ConnectTimeout,
	)
}

func newMySQLClient(config provider.Config) (*gorm.DB, error) {
	cfg, ok := config.(*MySQLConfig)
	if !ok {
		return nil, errors.New("invalid config type for MySQL")
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return applyPool(db, cfg.PoolSize, cfg.MaxOverflow, cfg.PoolRecycle)
}
