// internal/db/db.go
package db

import (
	"database/sql"
	"log"

	_ "github.com/lib/pq"

	"github.com/truesoulcoder/crm-admin-sub000/internal/config"
)

// Connect opens the Postgres pool and verifies it with a ping.
func Connect(cfg config.DB) (*sql.DB, error) {
	conn, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Println("✅ Connected to database", cfg.Name, "on", cfg.Host)
	return conn, nil
}
