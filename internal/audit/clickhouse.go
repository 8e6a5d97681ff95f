package audit

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"ismigrate/pkg/errx"
)

const eventsSchema = `
CREATE TABLE IF NOT EXISTS migration_events (
	at         DateTime64(3),
	source     String,
	target     String,
	status     String,
	reason     String,
	elapsed_ms Int64
) ENGINE = MergeTree ORDER BY at`

// ClickHouseRecorder writes migration events to a ClickHouse table. One row
// is inserted per event; the table is created on connect if it is missing.
type ClickHouseRecorder struct {
	conn   driver.Conn
	logger *zap.Logger
}

// NewClickHouseRecorder connects to the DSN, verifies the connection, and
// ensures the events table exists.
func NewClickHouseRecorder(ctx context.Context, dsn string, logger *zap.Logger) (*ClickHouseRecorder, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, errx.WrapAudit("invalid events DSN", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, errx.WrapAudit("failed to open events connection", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, errx.WrapAudit("events sink is unreachable", err)
	}
	if err := conn.Exec(ctx, eventsSchema); err != nil {
		_ = conn.Close()
		return nil, errx.WrapAudit("failed to create events table", err)
	}
	logger.Debug("Connected to events sink", zap.String("database", opts.Auth.Database))
	return &ClickHouseRecorder{conn: conn, logger: logger}, nil
}

// Record inserts one event row.
func (r *ClickHouseRecorder) Record(ctx context.Context, event Event) error {
	err := r.conn.Exec(ctx,
		"INSERT INTO migration_events (at, source, target, status, reason, elapsed_ms) VALUES (?, ?, ?, ?, ?, ?)",
		event.At, event.Src, event.Dst, event.Status, event.Reason, event.Elapsed.Milliseconds())
	if err != nil {
		return errx.WrapAudit("failed to record migration event", err)
	}
	return nil
}

// Close releases the underlying connection.
func (r *ClickHouseRecorder) Close() error {
	return r.conn.Close()
}
