package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists alignment records in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create results directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Insert stores rec, assigning ID and CreatedAt when unset.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("insert record: nil record")
	}
	if strings.TrimSpace(rec.InputPath) == "" || strings.TrimSpace(rec.TargetPath) == "" {
		return errors.New("insert record: input and target paths are required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = StatusFailed
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alignments (
            id, run_id, input_path, target_path, mode, status, ratio, ratio_strategy,
            cuts_json, accuracy, tracks_written, error_message, sidecar_path, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.RunID,
		rec.InputPath,
		rec.TargetPath,
		rec.Mode,
		string(rec.Status),
		nullableString(rec.Ratio),
		nullableString(rec.RatioStrategy),
		nullableString(rec.CutsJSON),
		rec.Accuracy,
		rec.TracksWritten,
		nullableString(rec.ErrorMessage),
		nullableString(rec.SidecarPath),
		rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

const recordColumns = `id, run_id, input_path, target_path, mode, status, ratio, ratio_strategy,
    cuts_json, accuracy, tracks_written, error_message, sidecar_path, created_at`

// Get fetches a record by id. It returns nil when no record matches.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM alignments WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// List returns records matching filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]*Record, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.RunID != "" {
		clauses = append(clauses, "run_id = ?")
		args = append(args, filter.RunID)
	}
	query := `SELECT ` + recordColumns + ` FROM alignments`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// Stats counts records per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM alignments GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan counts: %w", err)
		}
		counts[Status(status)] = count
	}
	return counts, rows.Err()
}

// Prune deletes records created before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM alignments WHERE created_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune records: %w", err)
	}
	return res.RowsAffected()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		rec           Record
		status        string
		ratio         sql.NullString
		ratioStrategy sql.NullString
		cutsJSON      sql.NullString
		errorMessage  sql.NullString
		sidecarPath   sql.NullString
		createdAt     string
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.InputPath,
		&rec.TargetPath,
		&rec.Mode,
		&status,
		&ratio,
		&ratioStrategy,
		&cutsJSON,
		&rec.Accuracy,
		&rec.TracksWritten,
		&errorMessage,
		&sidecarPath,
		&createdAt,
	); err != nil {
		return nil, err
	}
	rec.Status = Status(status)
	rec.Ratio = ratio.String
	rec.RatioStrategy = ratioStrategy.String
	rec.CutsJSON = cutsJSON.String
	rec.ErrorMessage = errorMessage.String
	rec.SidecarPath = sidecarPath.String
	if ts, err := time.Parse(timeLayout, createdAt); err == nil {
		rec.CreatedAt = ts
	}
	return &rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
