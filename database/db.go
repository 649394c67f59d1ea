package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// ─── Models ──────────────────────────────────────────────────────────────────

const (
	SearchFlight = "flight"
	SearchHotel  = "hotel"
)

// SearchRecord is one successful search kept for the user's history.
type SearchRecord struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"userId"`
	Kind          string    `db:"kind" json:"kind"`
	Origin        string    `db:"origin" json:"origin"`
	Destination   string    `db:"destination" json:"destination"`
	DepartureDate string    `db:"departure_date" json:"departureDate"`
	ReturnDate    string    `db:"return_date" json:"returnDate"`
	Passengers    int       `db:"passengers" json:"passengers"`
	ResultCount   int       `db:"result_count" json:"resultCount"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// SearchHistory persists searches in PostgreSQL.
type SearchHistory struct {
	db *sqlx.DB
}

// ─── Init ────────────────────────────────────────────────────────────────────

// OpenSearchHistory connects with retries, then applies migrations.
func OpenSearchHistory(ctx context.Context, dsn string, log *zap.Logger) (*SearchHistory, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		log.Warn("⏳ Waiting for postgres", zap.Int("attempt", i+1), zap.Error(err))
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres unreachable after retries: %w", err)
	}

	h := &SearchHistory{db: db}
	if err := h.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("✅ Postgres connected and migrated")
	return h, nil
}

// ─── Migrations ──────────────────────────────────────────────────────────────

var historyMigrations = []string{
	`CREATE TABLE IF NOT EXISTS search_history (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		kind           TEXT NOT NULL,
		origin         TEXT NOT NULL DEFAULT '',
		destination    TEXT NOT NULL,
		departure_date TEXT NOT NULL DEFAULT '',
		return_date    TEXT NOT NULL DEFAULT '',
		passengers     INTEGER DEFAULT 1,
		result_count   INTEGER DEFAULT 0,
		created_at     TIMESTAMPTZ DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_search_history_user_created
		ON search_history(user_id, created_at DESC)`,
}

func (h *SearchHistory) migrate(ctx context.Context) error {
	for _, m := range historyMigrations {
		if _, err := h.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── CRUD ────────────────────────────────────────────────────────────────────

func (h *SearchHistory) Record(ctx context.Context, r *SearchRecord) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	const q = `
		INSERT INTO search_history (id, user_id, kind, origin, destination, departure_date, return_date, passengers, result_count)
		VALUES (:id, :user_id, :kind, :origin, :destination, :departure_date, :return_date, :passengers, :result_count)`
	if _, err := h.db.NamedExecContext(ctx, q, r); err != nil {
		return fmt.Errorf("SearchHistory.Record: %w", err)
	}
	return nil
}

// Recent returns the user's latest searches, newest first.
func (h *SearchHistory) Recent(ctx context.Context, userID string, limit int) ([]SearchRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	const q = `
		SELECT id, user_id, kind, origin, destination, departure_date, return_date, passengers, result_count, created_at
		FROM search_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	out := []SearchRecord{}
	if err := h.db.SelectContext(ctx, &out, q, userID, limit); err != nil {
		return nil, fmt.Errorf("SearchHistory.Recent: %w", err)
	}
	return out, nil
}

func (h *SearchHistory) Ping(ctx context.Context) error {
	return h.db.PingContext(ctx)
}

func (h *SearchHistory) Close() error {
	return h.db.Close()
}
