package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// Tables lists everything RunMigrations creates
var Tables = []string{
	"users",
	"user_roles",
	"events",
	"airlines",
	"airports",
	"flights",
	"bookings",
	"private_slot_requests",
}

const (
	HealthOK            = "ok"
	HealthDown          = "down"
	HealthSchemaMissing = "schema_missing"
)

// Health is the database section of /health
type Health struct {
	Status        string   `json:"status"`
	LatencyMs     int64    `json:"latency_ms"`
	MissingTables []string `json:"missing_tables,omitempty"`
	OpenConns     int      `json:"open_connections"`
	InUse         int      `json:"in_use"`
	WaitCount     int64    `json:"wait_count"`
	Error         string   `json:"error,omitempty"`
}

// Healthy reports whether the API can serve requests from this database
func (h Health) Healthy() bool {
	return h.Status == HealthOK
}

// Health запрашивает information_schema: один запрос заменяет ping
// и заодно показывает, прошли ли миграции.
func (db *DB) Health(ctx context.Context) Health {
	stats := db.Stats()
	h := Health{
		OpenConns: stats.OpenConnections,
		InUse:     stats.InUse,
		WaitCount: stats.WaitCount,
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	present, err := db.presentTables(ctx)
	h.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		h.Status = HealthDown
		h.Error = err.Error()
		slog.Error("Database health check failed", "error", err)
		return h
	}

	h.MissingTables = missingTables(present)
	if len(h.MissingTables) > 0 {
		h.Status = HealthSchemaMissing
		slog.Warn("Database schema incomplete", "missing", h.MissingTables)
		return h
	}

	h.Status = HealthOK
	return h
}

func (db *DB) presentTables(ctx context.Context) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name = ANY($1)`,
		pq.Array(Tables))
	if err != nil {
		return nil, fmt.Errorf("failed to query schema: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool, len(Tables))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		present[name] = true
	}
	return present, rows.Err()
}

func missingTables(present map[string]bool) []string {
	var missing []string
	for _, t := range Tables {
		if !present[t] {
			missing = append(missing, t)
		}
	}
	return missing
}
