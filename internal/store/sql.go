package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"  // registers the "postgres" driver
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/ahrav/go-gaucho/internal/domain"
)

// Dialect selects SQL placeholder syntax and locking for a database.
type Dialect string

// Supported dialects. Each matches the database/sql driver name it uses.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const createAnalysesTable = `
CREATE TABLE IF NOT EXISTS analyses (
	category         TEXT    NOT NULL,
	seq              INTEGER NOT NULL,
	consensus_output TEXT    NOT NULL,
	caller_address   TEXT    NOT NULL,
	defense          TEXT    NOT NULL DEFAULT '',
	url              TEXT    NOT NULL DEFAULT '',
	created_at       TIMESTAMP NOT NULL,
	PRIMARY KEY (category, seq)
)`

// SQLStore keeps all logs in one analyses table keyed by (category, seq).
// seq is the record's index in its category log. Appends and reads each run
// in a single transaction; on PostgreSQL an advisory lock per category
// serializes concurrent appenders, on SQLite the database write lock does.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
	now     func() time.Time
}

var _ CategoryStore = (*SQLStore)(nil)

// OpenSQL opens dsn with the driver for dialect, applies the schema and
// returns a ready store. The caller owns the returned *sql.DB.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string, logger *slog.Logger) (*SQLStore, *sql.DB, error) {
	switch dialect {
	case DialectSQLite, DialectPostgres:
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDriver, dialect)
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// A single connection keeps in-memory databases shared and
		// avoids SQLITE_BUSY between concurrent writers.
		db.SetMaxOpenConns(1)
	}
	s := NewSQLStore(db, dialect, logger)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return s, db, nil
}

// NewSQLStore wraps an open database. Call Migrate before first use.
func NewSQLStore(db *sql.DB, dialect Dialect, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{db: db, dialect: dialect, logger: logger.With("component", "sql_store"), now: time.Now}
}

// Migrate creates the analyses table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createAnalysesTable); err != nil {
		return fmt.Errorf("migrate analyses table: %w", err)
	}
	return nil
}

// Append implements CategoryStore.
func (s *SQLStore) Append(ctx context.Context, category domain.Category, rec domain.AnalysisRecord) (idx int, err error) {
	if err := checkCategory(category); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if s.dialect == DialectPostgres {
		if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, string(category)); err != nil {
			return 0, fmt.Errorf("lock %s: %w", category, err)
		}
	}

	var seq int
	if err = tx.QueryRowContext(ctx, s.rebind(`SELECT COALESCE(MAX(seq) + 1, 0) FROM analyses WHERE category = ?`), string(category)).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next index for %s: %w", category, err)
	}

	_, err = tx.ExecContext(ctx,
		s.rebind(`INSERT INTO analyses (category, seq, consensus_output, caller_address, defense, url, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		string(category), seq, rec.ConsensusOutput, rec.CallerAddress.Hex(), rec.Defense, rec.URL, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", category, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}
	return seq, nil
}

// Read implements CategoryStore.
func (s *SQLStore) Read(ctx context.Context, category domain.Category, start, count int) (domain.Page, error) {
	if err := checkCategory(category); err != nil {
		return domain.Page{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Page{}, fmt.Errorf("begin read: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int
	if err := tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM analyses WHERE category = ?`), string(category)).Scan(&total); err != nil {
		return domain.Page{}, fmt.Errorf("count %s: %w", category, err)
	}

	start, end := domain.Window(total, start, count)
	if start >= end {
		return domain.NewPage(nil, total, start, end), nil
	}

	rows, err := tx.QueryContext(ctx,
		s.rebind(`SELECT consensus_output, caller_address, defense, url FROM analyses WHERE category = ? AND seq >= ? AND seq < ? ORDER BY seq`),
		string(category), start, end)
	if err != nil {
		return domain.Page{}, fmt.Errorf("select %s: %w", category, err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]domain.AnalysisRecord, 0, end-start)
	for rows.Next() {
		var (
			rec    domain.AnalysisRecord
			caller string
		)
		if err := rows.Scan(&rec.ConsensusOutput, &caller, &rec.Defense, &rec.URL); err != nil {
			return domain.Page{}, fmt.Errorf("scan %s: %w", category, err)
		}
		addr, err := domain.ParseAddress(caller)
		if err != nil {
			s.logger.ErrorContext(ctx, "undecodable caller address", "category", category, "error", err)
			return domain.Page{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
		}
		rec.CallerAddress = addr
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return domain.Page{}, fmt.Errorf("iterate %s: %w", category, err)
	}
	if len(records) != end-start {
		return domain.Page{}, fmt.Errorf("%w: %s has gaps in [%d, %d)", ErrCorruptRecord, category, start, end)
	}
	return domain.NewPage(records, total, start, end), nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
