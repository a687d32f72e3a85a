// Package sqlite implements the persistence ports on a local SQLite file,
// for self-hosted deployments that have no Supabase project.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyodorvi/gem-guru/internal/domain"
)

var tracer = otel.Tracer("sqlite")

const schema = `
CREATE TABLE IF NOT EXISTS user_data (
	user_id    TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// Store implements port.UserStore on a SQLite database. Like the Supabase
// adapter, each user's state is one JSON payload written atomically.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (and if needed creates) the database at path and applies the
// schema. Use ":memory:" for tests.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	// A single writer keeps payload read-modify-write cycles serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	logger.Info("sqlite: store ready", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// LoadUserData fetches a user's stored state. Users with no row yet yield
// (nil, nil).
func (s *Store) LoadUserData(ctx context.Context, userID string) (*domain.UserData, error) {
	ctx, span := tracer.Start(ctx, "SQLite.LoadUserData")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM user_data WHERE user_id = ?`, userID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load user data: %w", err)
	}

	var data domain.UserData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, fmt.Errorf("sqlite: decode user data: %w", err)
	}
	return &data, nil
}

// SaveUserData upserts a user's full state in one write.
func (s *Store) SaveUserData(ctx context.Context, userID string, data *domain.UserData) error {
	ctx, span := tracer.Start(ctx, "SQLite.SaveUserData")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sqlite: encode user data: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_data (user_id, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		userID, string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save user data: %w", err)
	}
	return nil
}
