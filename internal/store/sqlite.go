package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// deleteChunk bounds the number of bind parameters per DELETE statement.
const deleteChunk = 500

var _ KV = (*SQLite)(nil)

// SQLite stores records in a single kv_records table.
type SQLite struct {
	conn *sqlx.DB
}

type sqliteRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// OpenSQLite opens or creates the database at path and applies pending migrations.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	conn, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.Up(conn.DB, "migrations"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	return &SQLite{conn: conn}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value string
	err := s.conn.GetContext(ctx, &value, "SELECT value FROM kv_records WHERE key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting %q: %w", key, err)
	}
	return json.RawMessage(value), nil
}

func (s *SQLite) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := validJSON(value); err != nil {
		return err
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO kv_records (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, keys []string) (int, error) {
	total := 0
	for start := 0; start < len(keys); start += deleteChunk {
		end := min(start+deleteChunk, len(keys))
		query, args, err := sqlx.In("DELETE FROM kv_records WHERE key IN (?)", keys[start:end])
		if err != nil {
			return total, fmt.Errorf("building delete: %w", err)
		}
		result, err := s.conn.ExecContext(ctx, s.conn.Rebind(query), args...)
		if err != nil {
			return total, fmt.Errorf("deleting keys: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("counting deleted keys: %w", err)
		}
		total += int(n)
	}
	return total, nil
}

func (s *SQLite) Scan(ctx context.Context, prefix string) ([]Record, error) {
	var rows []sqliteRow
	err := s.conn.SelectContext(ctx, &rows,
		"SELECT key, value FROM kv_records WHERE substr(key, 1, length(?)) = ? ORDER BY key",
		prefix, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning %q: %w", prefix, err)
	}
	records := make([]Record, len(rows))
	for i, r := range rows {
		records[i] = Record{Key: r.Key, Value: json.RawMessage(r.Value)}
	}
	return records, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}
