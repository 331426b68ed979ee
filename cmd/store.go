package cmd

import (
	"fmt"

	"github.com/satriadp/hadirku/internal/config"
	"github.com/satriadp/hadirku/internal/store"
	"github.com/satriadp/hadirku/internal/store/mysql"
	"github.com/satriadp/hadirku/internal/store/postgres"
	"github.com/satriadp/hadirku/internal/store/sqlite"
)

// closableStore is a store with a connection to release on exit.
type closableStore interface {
	store.Store
	Close() error
}

// openStore connects to the configured database backend.
func openStore(cfg *config.Config) (closableStore, error) {
	switch cfg.Database.Driver {
	case "sqlite3", "sqlite", "":
		return sqlite.Open(&cfg.Database)
	case "postgres":
		return postgres.Open(&cfg.Database, cfg.Recognition.Dim)
	case "mysql":
		return mysql.Open(&cfg.Database)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
