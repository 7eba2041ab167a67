package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-record-api/pkg/config"
)

// Open returns the record store handle selected by cfg.Driver.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case "", config.DriverPostgres:
		return NewPostgres(cfg)
	case config.DriverSQLite:
		return NewSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
