// Package datasource wires the database domain into the provider engine:
// logical datasource kinds, per-provider connection records and gorm-backed
// constructors for MySQL, PostgreSQL and SQLite.
package datasource

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oakenode/provisor/internal/config"
	"github.com/oakenode/provisor/internal/provider"
)

// Namespace is the top-level configuration key for the datasource domain.
const Namespace = "datasources"

// Provider ids registered by default.
const (
	ProviderMySQL      = "mysql"
	ProviderPostgreSQL = "postgresql"
	ProviderSQLite     = "sqlite"
)

// Logical datasource kinds. These route requests to a configured database and
// carry no meaning beyond that.
const (
	KindPrimary   = "primary"
	KindAnalytics = "analytics"
	KindCache     = "cache"
	KindLogging   = "logging"
	KindBackup    = "backup"
)

// Kinds returns the closed logical-kind enumeration for the datasource
// domain.
func Kinds() []string {
	return []string{KindPrimary, KindAnalytics, KindCache, KindLogging, KindBackup}
}

// NewRegistry returns a registry with every built-in datasource provider
// wired in.
func NewRegistry() *provider.Registry[*gorm.DB] {
	r := provider.NewRegistry[*gorm.DB]()

	r.MustRegister(ProviderMySQL, provider.Entry[*gorm.DB]{
		NewConfig: newMySQLConfig,
		Overrides: []provider.EnvOverride{
			{Var: "MYSQL_HOST", Field: "host"},
			{Var: "MYSQL_PORT", Field: "port"},
			{Var: "MYSQL_DATABASE", Field: "database"},
			{Var: "MYSQL_USERNAME", Field: "username"},
			{Var: "MYSQL_PASSWORD", Field: "password"},
		},
		Construct:  newMySQLClient,
		Dependency: "gorm.io/driver/mysql",
	})

	r.MustRegister(ProviderPostgreSQL, provider.Entry[*gorm.DB]{
		NewConfig: newPostgresConfig,
		Overrides: []provider.EnvOverride{
			{Var: "POSTGRES_HOST", Field: "host"},
			{Var: "POSTGRES_PORT", Field: "port"},
			{Var: "POSTGRES_DB", Field: "database"},
			{Var: "POSTGRES_USER", Field: "username"},
			{Var: "POSTGRES_PASSWORD", Field: "password"},
		},
		Construct:  newPostgresClient,
		Dependency: "gorm.io/driver/postgres",
	})

	r.MustRegister(ProviderSQLite, provider.Entry[*gorm.DB]{
		NewConfig: newSQLiteConfig,
		Overrides: []provider.EnvOverride{
			{Var: "SQLITE_PATH", Field: "path"},
		},
		Construct:  newSQLiteClient,
		Dependency: "gorm.io/driver/sqlite",
	})

	return r
}

// NewResolver builds a settings resolver for the datasources namespace over
// the default registry.
func NewResolver(store *config.Store) *provider.Resolver[*gorm.DB] {
	return provider.NewResolver(store, Namespace, Kinds(), NewRegistry())
}

// Factory hands out cached database handles.
type Factory struct {
	*provider.Factory[*gorm.DB]
}

func NewFactory(store *config.Store) *Factory {
	return &Factory{Factory: provider.NewFactory(NewResolver(store))}
}

// DB returns the database handle for kind, constructing and caching it on
// first use.
func (f *Factory) DB(kind, explicitProvider string) (*gorm.DB, error) {
	return f.Client(kind, explicitProvider)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
}

// applyPool passes the record's pool knobs through to database/sql. The pool
// itself lives there; nothing is implemented here.
func applyPool(db *gorm.DB, size, overflow, recycle int) (*gorm.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(size)
	sqlDB.SetMaxOpenConns(size + overflow)
	sqlDB.SetConnMaxLifetime(time.Duration(recycle) * time.Second)
	return db, nil
}
