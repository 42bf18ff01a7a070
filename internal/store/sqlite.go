package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/toothdex/internal/pattern"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on submissions.timestamp
const currentSchemaVersion = 1

// SQLiteBackend stores the state in normalised SQLite tables.
// Uses WAL mode so reads from other connections never see a half-applied
// save; each Save is a single transaction.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// OpenSQLite creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - FULL synchronous mode (every committed save survives power loss)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteBackend{db: db, path: path}, nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Load rebuilds the State from the tables. The rows are re-encoded and
// run through Decode, so SQLite data is held to the same schema and
// invariants as a JSON document.
func (b *SQLiteBackend) Load(ctx context.Context) (*State, error) {
	s, err := b.readState(ctx)
	if err != nil {
		return nil, b.fail("load", err)
	}

	data, err := Encode(s)
	if err != nil {
		return nil, b.fail("load", err)
	}
	out, err := Decode(data)
	if err != nil {
		return nil, b.fail("load", err)
	}
	return out, nil
}

func (b *SQLiteBackend) readState(ctx context.Context) (*State, error) {
	s := NewState()

	rows, err := b.db.QueryContext(ctx, `
		SELECT pattern_key, count, missing_count
		FROM patterns
		ORDER BY pattern_key ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query patterns: %w", err)
	}
	for rows.Next() {
		var (
			key string
			rec PatternRecord
		)
		if err := rows.Scan(&key, &rec.Count, &rec.MissingCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		p, err := pattern.Decode(pattern.Key(key))
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("pattern row: %w", err)
		}
		rec.Pattern = p
		rec.Submissions = []Submission{}
		s.Patterns[pattern.Key(key)] = &rec
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate patterns: %w", err)
	}
	rows.Close()

	rows, err = b.db.QueryContext(ctx, `
		SELECT pattern_key, id, name, age, timestamp
		FROM submissions
		ORDER BY pattern_key ASC, ordinal ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	for rows.Next() {
		var (
			key string
			sub Submission
			age sql.NullFloat64
		)
		if err := rows.Scan(&key, &sub.ID, &sub.Name, &age, &sub.Timestamp); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if age.Valid {
			v := age.Float64
			sub.Age = &v
		}
		rec := s.Patterns[pattern.Key(key)]
		if rec == nil {
			rows.Close()
			return nil, fmt.Errorf("submission for unknown pattern %s", key)
		}
		rec.Submissions = append(rec.Submissions, sub)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	rows.Close()

	rows, err = b.db.QueryContext(ctx, `
		SELECT pattern_key, rarity_score, discovered_by, timestamp
		FROM rare_patterns
		ORDER BY rank ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query rare patterns: %w", err)
	}
	for rows.Next() {
		var e RareEntry
		var key string
		if err := rows.Scan(&key, &e.RarityScore, &e.DiscoveredBy, &e.Timestamp); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan rare pattern: %w", err)
		}
		e.PatternKey = pattern.Key(key)
		s.RarePatterns = append(s.RarePatterns, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate rare patterns: %w", err)
	}
	rows.Close()

	var total sql.NullInt64
	err = b.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'total_submissions'`).Scan(&total)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("query total: %w", err)
	}
	s.TotalSubmissions = int(total.Int64)

	return s, nil
}

// Save replaces every row with the contents of s in one transaction.
func (b *SQLiteBackend) Save(ctx context.Context, s *State) error {
	if err := b.writeState(ctx, s); err != nil {
		return b.fail("save", err)
	}
	return nil
}

func (b *SQLiteBackend) writeState(ctx context.Context, s *State) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, stmt := range []string{
		"DELETE FROM rare_patterns",
		"DELETE FROM submissions",
		"DELETE FROM patterns",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}

	insPattern, err := tx.PrepareContext(ctx, `
		INSERT INTO patterns (pattern_key, count, missing_count) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare pattern insert: %w", err)
	}
	defer insPattern.Close()

	insSub, err := tx.PrepareContext(ctx, `
		INSERT INTO submissions (pattern_key, ordinal, id, name, age, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare submission insert: %w", err)
	}
	defer insSub.Close()

	for key, rec := range s.Patterns {
		if _, err := insPattern.ExecContext(ctx, string(key), rec.Count, rec.MissingCount); err != nil {
			return fmt.Errorf("insert pattern %s: %w", key, err)
		}
		for i, sub := range rec.Submissions {
			var age sql.NullFloat64
			if sub.Age != nil {
				age = sql.NullFloat64{Float64: *sub.Age, Valid: true}
			}
			if _, err := insSub.ExecContext(ctx, string(key), i, sub.ID, sub.Name, age, sub.Timestamp); err != nil {
				return fmt.Errorf("insert submission %s/%d: %w", key, i, err)
			}
		}
	}

	for i, e := range s.RarePatterns {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rare_patterns (rank, pattern_key, rarity_score, discovered_by, timestamp)
			VALUES (?, ?, ?, ?, ?)
		`, i+1, string(e.PatternKey), e.RarityScore, e.DiscoveredBy, e.Timestamp)
		if err != nil {
			return fmt.Errorf("insert rare pattern %s: %w", e.PatternKey, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES ('total_submissions', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, s.TotalSubmissions)
	if err != nil {
		return fmt.Errorf("update total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) fail(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Backend: "sqlite", Path: b.path, Err: err}
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 indexes submissions by timestamp for chronological audits.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_submissions_timestamp
		ON submissions(timestamp)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (b *SQLiteBackend) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := b.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
