package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists interval records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS interval_logs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT,
        block INTEGER,
        ts INTEGER,
        record TEXT
    );`,
	`CREATE INDEX IF NOT EXISTS interval_logs_block ON interval_logs (run_id, block);`,
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			if cerr := db.Close(); cerr != nil {
				return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
			}
			return nil, err
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec IntervalRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interval_logs (run_id, block, ts, record) VALUES (?, ?, ?, ?)`,
		rec.RunID, rec.Block, rec.Timestamp.UnixNano(), string(b))
	return err
}

// Query returns records matching q. Run and block filters are pushed down
// to SQL, the unit filter is applied on the decoded record.
func (s *SQLiteStore) Query(ctx context.Context, q LogQuery) ([]IntervalRecord, error) {
	var args []any
	query := `SELECT record FROM interval_logs WHERE block >= ?`
	args = append(args, q.FromBlock)
	if q.HasTo {
		query += ` AND block <= ?`
		args = append(args, q.ToBlock)
	}
	if q.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, q.RunID)
	}
	query += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []IntervalRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r IntervalRecord
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		if q.Match(r) {
			res = append(res, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
