package recorder

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Alien67x6/mt5-monitoring-API/internal/logger"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLRecorder persists the audit log to SQLite or PostgreSQL.
type SQLRecorder struct {
	db     *sql.DB
	driver string
	mu     sync.Mutex
}

// NewSQLRecorder opens (or creates) the database and runs migrations.
func NewSQLRecorder(driver, dsn string) (*SQLRecorder, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// WAL lets dashboards read while the monitor writes.
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	} else if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &SQLRecorder{db: db, driver: driver}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("%s recorder opened", driver)
	return r, nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (r *SQLRecorder) rebind(query string) string {
	if r.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *SQLRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS crossover_events (
			id          TEXT PRIMARY KEY,
			timestamp   BIGINT NOT NULL,
			instrument  TEXT NOT NULL,
			kind        TEXT NOT NULL,
			direction   TEXT,
			close       DOUBLE PRECISION,
			trigger_type TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_crossover_instrument_ts ON crossover_events(instrument, timestamp)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id              TEXT PRIMARY KEY,
			timestamp       BIGINT NOT NULL,
			instrument      TEXT NOT NULL,
			direction       TEXT,
			close           DOUBLE PRECISION,
			elapsed_seconds DOUBLE PRECISION,
			message         TEXT,
			trigger_type    TEXT,
			delivered       BOOLEAN NOT NULL,
			delivery_error  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_instrument_ts ON alerts(instrument, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLRecorder) RecordCrossover(evt *CrossoverEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.DetectedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(r.rebind(`INSERT INTO crossover_events
		(id, timestamp, instrument, kind, direction, close, trigger_type)
		VALUES (?,?,?,?,?,?,?)`),
		uuid.NewString(), at.UnixMilli(), evt.Instrument, evt.Kind,
		evt.Direction, evt.Close, evt.Trigger,
	)
	return err
}

func (r *SQLRecorder) RecordAlert(rec *AlertRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	at := rec.FiredAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(r.rebind(`INSERT INTO alerts
		(id, timestamp, instrument, direction, close, elapsed_seconds, message, trigger_type, delivered, delivery_error)
		VALUES (?,?,?,?,?,?,?,?,?,?)`),
		id, at.UnixMilli(), rec.Instrument, rec.Direction, rec.Close,
		rec.ElapsedSeconds, rec.Message, rec.Trigger, rec.Delivered, rec.DeliveryError,
	)
	return err
}

// RecentAlerts returns up to limit alerts for instrument, newest first.
func (r *SQLRecorder) RecentAlerts(instrument string, limit int) ([]AlertRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(r.rebind(`SELECT id, timestamp, instrument, direction, close,
		elapsed_seconds, message, trigger_type, delivered, delivery_error
		FROM alerts WHERE instrument = ? ORDER BY timestamp DESC LIMIT ?`), instrument, limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []AlertRecord
	for rows.Next() {
		var rec AlertRecord
		var ts int64
		if err := rows.Scan(&rec.ID, &ts, &rec.Instrument, &rec.Direction, &rec.Close,
			&rec.ElapsedSeconds, &rec.Message, &rec.Trigger, &rec.Delivered, &rec.DeliveryError); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		rec.FiredAt = time.UnixMilli(ts).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLRecorder) Close() error {
	logger.Info("closing %s recorder", r.driver)
	return r.db.Close()
}
