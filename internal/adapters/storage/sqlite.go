// Package storage loads and saves raw-record datasets outside the
// service's memory: a SQLite database for durable datasets and a JSON
// file form for fixtures and hand-edited snapshots.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/okian/metaboard/internal/domain/model"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a sql.DB for the record store.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the schema.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// LoadRecords reads every record, ordered by name.
func (db *DB) LoadRecords(ctx context.Context) ([]model.RawRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT name, count, wins, losses, ties FROM records ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []model.RawRecord
	for rows.Next() {
		var r model.RawRecord
		if err := rows.Scan(&r.Name, &r.Count, &r.Wins, &r.Losses, &r.Ties); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// SaveRecords upserts the batch in one transaction.
func (db *DB) SaveRecords(ctx context.Context, records []model.RawRecord) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (name, count, wins, losses, ties) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   count = excluded.count, wins = excluded.wins,
		   losses = excluded.losses, ties = excluded.ties`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Name, r.Count, r.Wins, r.Losses, r.Ties); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert %q: %w", r.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
