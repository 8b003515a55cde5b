package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	qerrors "github.com/ogre-kun/outliers-calculator/internal/errors"
	"github.com/ogre-kun/outliers-calculator/internal/paths"
)

// DBFileName is the database file inside the history directory.
const DBFileName = "history.db"

const schemaVersion = 1

// Store provides persistence for analysis runs.
type Store struct {
	conn   *sql.DB
	codec  *codec
	logger *slog.Logger
	dbPath string
}

// Open opens or creates the history database in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if _, err := paths.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFileName)
	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	c, err := newCodec()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	store := &Store{
		conn:   conn,
		codec:  c,
		logger: logger,
		dbPath: dbPath,
	}

	if !dbExists {
		logger.Info("Creating history database", "path", dbPath)
	}
	if err := store.initializeSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return store, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			recorded_at INTEGER NOT NULL,
			table_name TEXT NOT NULL,
			sample_size INTEGER NOT NULL,
			outliers INTEGER NOT NULL,
			rounds INTEGER NOT NULL,
			mean TEXT NOT NULL,
			stop_reason TEXT NOT NULL,
			report BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON runs(recorded_at DESC);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return err
	}
	_, err := s.conn.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion)
	return err
}

// Path returns the database file path.
func (s *Store) Path() string { return s.dbPath }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.codec != nil {
		s.codec.close()
		s.codec = nil
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Record inserts run. An empty ID gets a new UUID and a zero RecordedAt
// gets the current time; both are written back to run.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.RecordedAt.IsZero() {
		run.RecordedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO runs (id, recorded_at, table_name, sample_size, outliers, rounds, mean, stop_reason, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	payload := s.codec.compress(run.Report)
	_, err := s.conn.ExecContext(ctx, query,
		run.ID,
		run.RecordedAt.UnixNano(),
		run.Table,
		run.SampleSize,
		run.Outliers,
		run.Rounds,
		run.Mean,
		run.StopReason,
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	s.logger.Debug("Recorded run",
		"runId", run.ID,
		"reportBytes", len(run.Report),
		"storedBytes", len(payload),
	)
	return nil
}

// Get returns the run with the given id, including its report.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	query := `
		SELECT id, recorded_at, table_name, sample_size, outliers, rounds, mean, stop_reason, report
		FROM runs WHERE id = ?
	`

	var (
		run     Run
		nanos   int64
		payload []byte
	)
	err := s.conn.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &nanos, &run.Table, &run.SampleSize, &run.Outliers,
		&run.Rounds, &run.Mean, &run.StopReason, &payload,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	report, err := s.codec.decompress(payload)
	if err != nil {
		return nil, qerrors.New(qerrors.InternalError, fmt.Sprintf("run %s has an unreadable report", id), err)
	}

	run.RecordedAt = time.Unix(0, nanos).UTC()
	run.Report = report
	return &run, nil
}

// List returns up to limit runs, newest first. limit <= 0 means no limit.
// Reports are not loaded.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, recorded_at, table_name, sample_size, outliers, rounds, mean, stop_reason
		FROM runs ORDER BY recorded_at DESC, id
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			run   Run
			nanos int64
		)
		if err := rows.Scan(&run.ID, &nanos, &run.Table, &run.SampleSize, &run.Outliers,
			&run.Rounds, &run.Mean, &run.StopReason); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.RecordedAt = time.Unix(0, nanos).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

// Delete removes the run with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	if err := requireAffected(result, id); err != nil {
		return err
	}

	s.logger.Debug("Deleted run", "runId", id)
	return nil
}

// requireAffected maps zero affected rows to HISTORY_NOT_FOUND.
func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if rows == 0 {
		return notFound(id)
	}
	return nil
}

func notFound(id string) error {
	return qerrors.Newf(qerrors.HistoryNotFound, "no recorded run with id %s", id).
		WithDetails(map[string]string{"id": id})
}
