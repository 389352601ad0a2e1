package retry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS failed_requests (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id INTEGER NOT NULL UNIQUE,
    status TEXT NOT NULL,
    failed_attempts INTEGER NOT NULL DEFAULT 0,
    last_attempt_date TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_failed_requests_eligible
    ON failed_requests(status, failed_attempts, last_attempt_date);
`

// SQLiteStore is the durable Store implementation backed by SQLite.
type SQLiteStore struct {
	db       *sql.DB
	cooldown time.Duration
	now      func() time.Time
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithCooldown overrides the retry cooldown window.
func WithCooldown(d time.Duration) SQLiteOption {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.cooldown = d
		}
	}
}

// WithClock replaces the clock, for tests.
func WithClock(now func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSQLiteStore opens (creating if needed) the failed-request database at
// dbPath and applies the schema.
func NewSQLiteStore(dbPath string, opts ...SQLiteOption) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &SQLiteStore{
		db:       db,
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// FindOneToRetry returns the oldest eligible entry, or nil when drained.
func (s *SQLiteStore) FindOneToRetry(ctx context.Context) (*FailedRequest, error) {
	// Times are normalized to UTC so stored text timestamps compare correctly.
	cutoff := s.now().UTC().Add(-s.cooldown)
	query := `
		SELECT id, order_id, status, failed_attempts, last_attempt_date
		FROM failed_requests
		WHERE status = ? AND failed_attempts < ? AND last_attempt_date <= ?
		ORDER BY last_attempt_date ASC, id ASC
		LIMIT 1
	`

	var fr FailedRequest
	err := s.db.QueryRowContext(ctx, query, StatusFailed, MaxAttempts, cutoff).Scan(
		&fr.ID, &fr.OrderID, &fr.Status, &fr.FailedAttempts, &fr.LastAttemptDate,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find one to retry", err)
	}
	return &fr, nil
}

// Create upserts the entry for orderID. An existing entry for the same order
// is replaced, preserving the one-entry-per-order invariant.
func (s *SQLiteStore) Create(ctx context.Context, orderID int64, status Status, failedAttempts int) (*FailedRequest, error) {
	now := s.now().UTC()
	query := `
		INSERT INTO failed_requests (order_id, status, failed_attempts, last_attempt_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(order_id) DO UPDATE SET
			status = excluded.status,
			failed_attempts = excluded.failed_attempts,
			last_attempt_date = excluded.last_attempt_date
	`
	if _, err := s.db.ExecContext(ctx, query, orderID, status, failedAttempts, now); err != nil {
		return nil, storageErr("create", err)
	}

	// The upsert path does not report LastInsertId reliably, so read back.
	fr := FailedRequest{OrderID: orderID, Status: status, FailedAttempts: failedAttempts, LastAttemptDate: now}
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM failed_requests WHERE order_id = ?`, orderID).Scan(&fr.ID)
	if err != nil {
		return nil, storageErr("create readback", err)
	}
	return &fr, nil
}

// FindByOrderID returns the entry for orderID, or nil if none exists.
func (s *SQLiteStore) FindByOrderID(ctx context.Context, orderID int64) (*FailedRequest, error) {
	var fr FailedRequest
	err := s.db.QueryRowContext(ctx, `
		SELECT id, order_id, status, failed_attempts, last_attempt_date
		FROM failed_requests WHERE order_id = ?`, orderID).Scan(
		&fr.ID, &fr.OrderID, &fr.Status, &fr.FailedAttempts, &fr.LastAttemptDate,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find by order id", err)
	}
	return &fr, nil
}

// Update persists the full current state of the entity.
func (s *SQLiteStore) Update(ctx context.Context, fr *FailedRequest) error {
	query := `
		UPDATE failed_requests
		SET order_id = ?, status = ?, failed_attempts = ?, last_attempt_date = ?
		WHERE id = ?
	`
	if _, err := s.db.ExecContext(ctx, query,
		fr.OrderID, fr.Status, fr.FailedAttempts, fr.LastAttemptDate.UTC(), fr.ID); err != nil {
		return storageErr("update", err)
	}
	return nil
}

// DeleteWhereStale removes terminally resolved entries.
func (s *SQLiteStore) DeleteWhereStale(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM failed_requests WHERE status = ? OR failed_attempts >= ?`,
		StatusSuccess, MaxAttempts)
	if err != nil {
		return 0, storageErr("delete where stale", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, storageErr("delete where stale", err)
	}
	return removed, nil
}

// Enqueue records a fresh failed submission for orderID, replacing any
// pending entry. Satisfies fulfillment.FailureQueue.
func (s *SQLiteStore) Enqueue(ctx context.Context, orderID int64) error {
	_, err := s.Create(ctx, orderID, StatusFailed, 1)
	return err
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)
