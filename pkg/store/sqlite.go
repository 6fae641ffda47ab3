package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"vpn-client/pkg/model"
)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath, enables WAL mode
// and runs pending migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", "file:"+dbPath+"?_pragma=busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}
	if tableCount > 0 {
		if err := s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}
	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", m.version); err != nil {
			return fmt.Errorf("recording migration v%d: %w", m.version, err)
		}
	}
	return nil
}

type speedTestRow struct {
	ID           string  `db:"id"`
	ServerName   string  `db:"server_name"`
	DownloadMbps float64 `db:"download_mbps"`
	UploadMbps   float64 `db:"upload_mbps"`
	PingMs       float64 `db:"ping_ms"`
	JitterMs     float64 `db:"jitter_ms"`
	VPNActive    bool    `db:"vpn_active"`
	TestedAt     string  `db:"tested_at"`
}

const timeLayout = "2006-01-02 15:04:05.999999999Z07:00"

func parseStoredTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func (s *SQLiteStore) AppendSpeedTest(ctx context.Context, r model.SpeedTestResult) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO speed_tests (id, server_name, download_mbps, upload_mbps, ping_ms, jitter_ms, vpn_active, tested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ServerName, r.DownloadMbps, r.UploadMbps, r.PingMs, r.JitterMs, r.VPNActive,
		r.TestedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting speed test: %w", err)
	}
	// Prune oldest rows beyond the cap.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM speed_tests WHERE rowid NOT IN (
			SELECT rowid FROM speed_tests ORDER BY rowid DESC LIMIT ?
		)`, historyCap)
	if err != nil {
		return fmt.Errorf("pruning speed tests: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListSpeedTests(ctx context.Context, limit int) ([]model.SpeedTestResult, error) {
	if limit <= 0 || limit > historyCap {
		limit = historyCap
	}
	var rows []speedTestRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, server_name, download_mbps, upload_mbps, ping_ms, jitter_ms, vpn_active, tested_at
		FROM speed_tests
		ORDER BY rowid ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing speed tests: %w", err)
	}
	out := make([]model.SpeedTestResult, 0, len(rows))
	for _, row := range rows {
		r, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (row speedTestRow) toModel() (model.SpeedTestResult, error) {
	t, err := parseStoredTime(row.TestedAt)
	if err != nil {
		return model.SpeedTestResult{}, fmt.Errorf("parsing tested_at: %w", err)
	}
	return model.SpeedTestResult{
		ID:           row.ID,
		ServerName:   row.ServerName,
		DownloadMbps: row.DownloadMbps,
		UploadMbps:   row.UploadMbps,
		PingMs:       row.PingMs,
		JitterMs:     row.JitterMs,
		VPNActive:    row.VPNActive,
		TestedAt:     t,
	}, nil
}

func (s *SQLiteStore) CachedPlans(ctx context.Context) ([]model.Plan, error) {
	var rows []struct {
		Data string `db:"data"`
	}
	err := s.db.SelectContext(ctx, &rows, "SELECT data FROM plan_cache ORDER BY position ASC")
	if err != nil {
		return nil, fmt.Errorf("reading plan cache: %w", err)
	}
	plans := make([]model.Plan, 0, len(rows))
	for _, row := range rows {
		var p model.Plan
		if err := json.Unmarshal([]byte(row.Data), &p); err != nil {
			return nil, fmt.Errorf("decoding cached plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (s *SQLiteStore) StorePlans(ctx context.Context, plans []model.Plan) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM plan_cache"); err != nil {
		return fmt.Errorf("clearing plan cache: %w", err)
	}
	for i, p := range plans {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding plan %s: %w", p.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO plan_cache (plan_id, data, position) VALUES (?, ?, ?)",
			p.ID, string(data), i)
		if err != nil {
			return fmt.Errorf("caching plan %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}
