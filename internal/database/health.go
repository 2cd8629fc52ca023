package database

import (
	"context"
	"database/sql"
	"time"
)

type Health struct {
	Status          string `json:"status"`
	Driver          string `json:"driver"`
	LatencyMs       int64  `json:"latency_ms"`
	OpenConnections int    `json:"open_connections"`
	Error           string `json:"error,omitempty"`
}

// Check pings the database with a short timeout.
func Check(ctx context.Context, db *sql.DB, driver string) Health {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := db.PingContext(ctx)
	h := Health{
		Status:          "connected",
		Driver:          driver,
		LatencyMs:       time.Since(start).Milliseconds(),
		OpenConnections: db.Stats().OpenConnections,
	}
	if err != nil {
		h.Status = "disconnected"
		h.Error = err.Error()
	}
	return h
}
