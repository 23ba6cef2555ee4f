// Package store keeps a local history of analysis runs in SQLite.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/suykerbuyk/proofline/internal/report"
)

// ErrNotFound is returned when no run has the requested id.
var ErrNotFound = errors.New("run not found")

// Run is one stored analysis run, without its report body.
type Run struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	Client    string       `json:"client"`
	Scope     string       `json:"scope"`
	Query     string       `json:"query,omitempty"`
	Stats     report.Stats `json:"stats"`
}

// SQLiteStore stores runs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		created_at  TEXT NOT NULL,
		client      TEXT NOT NULL,
		scope       TEXT NOT NULL,
		query       TEXT,
		stats       TEXT NOT NULL,
		report      BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_client ON runs(client);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores rep under a new ULID and returns the stored run.
func (s *SQLiteStore) SaveRun(ctx context.Context, rep *report.Report) (*Run, error) {
	now := time.Now().UTC()
	run := &Run{
		ID:        s.newID(now),
		CreatedAt: now.Truncate(time.Second),
		Client:    rep.Client,
		Scope:     rep.Scope.Label(),
		Query:     rep.Query,
		Stats:     rep.Stats(),
	}

	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return nil, fmt.Errorf("marshal stats: %w", err)
	}
	body, err := compressReport(rep)
	if err != nil {
		return nil, err
	}

	var query any
	if run.Query != "" {
		query = run.Query
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, client, scope, query, stats, report) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, now.Format(time.RFC3339), run.Client, run.Scope, query, string(stats), body)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first, relying on ULID order.
// A non-empty client filters by client. A zero limit means 20, a negative
// one returns every run.
func (s *SQLiteStore) ListRuns(ctx context.Context, client string, limit int) ([]Run, error) {
	switch {
	case limit == 0:
		limit = 20
	case limit < 0:
		limit = -1
	}
	query := `SELECT id, created_at, client, scope, query, stats FROM runs`
	var args []any
	if client != "" {
		query += ` WHERE client = ?`
		args = append(args, client)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r         Run
			createdAt string
			q         sql.NullString
			stats     string
		)
		if err := rows.Scan(&r.ID, &createdAt, &r.Client, &r.Scope, &q, &stats); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		r.Query = q.String
		if err := json.Unmarshal([]byte(stats), &r.Stats); err != nil {
			return nil, fmt.Errorf("decode stats of %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun loads the full report of run id.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*report.Report, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT report FROM runs WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return decompressReport(body)
}

// DeleteRun removes run id.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrNotFound)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func compressReport(rep *report.Report) ([]byte, error) {
	var buf bytes.Buffer
	encoder, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	if err := report.Encode(encoder, rep); err != nil {
		encoder.Close()
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressReport(body []byte) (*report.Report, error) {
	decoder, err := zstd.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()
	return report.Decode(decoder)
}
