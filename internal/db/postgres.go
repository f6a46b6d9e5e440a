package db

import (
	"fmt"
	"time"

	"travelbook/airports/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

// Connect opens the sqlx pool used by health checks. On postgres it dials
// its own lib/pq pool with a short retry loop; on sqlite it shares GORM's handle.
func Connect(cfg config.DatabaseConfig, orm *gorm.DB) (*sqlx.DB, error) {
	if cfg.Driver == "sqlite" {
		sqlDB, err := orm.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to unwrap sqlite handle: %w", err)
		}
		return sqlx.NewDb(sqlDB, "sqlite3"), nil
	}

	var (
		conn *sqlx.DB
		err  error
	)
	for i := 0; i < 10; i++ {
		conn, err = sqlx.Connect("postgres", cfg.DSN())
		if err == nil {
			return conn, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect to postgres (sqlx): %w", err)
}
