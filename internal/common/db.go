package common

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// NewDB opens a pooled connection to the content database and verifies
// it with a ping. The postgres driver is registered by the service
// packages importing lib/pq.
func NewDB(host, port, user, password, name string, maxOpenConns, maxIdleConns int, maxIdleTime time.Duration) (*sql.DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
	return connectDB(dsn, maxOpenConns, maxIdleConns, maxIdleTime)
}

func connectDB(dsn string, maxOpenConns int, maxIdleConns int, maxIdleTime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// CloseDB closes the database connection pool.
func CloseDB(db *sql.DB) error {
	return db.Close()
}
