// Package index keeps a SQLite side table of star magnitudes so a frame can
// skip reading stars that are fainter than its limit.
//
// The index never replaces the catalog. It only names candidate indices; the
// renderer still reads and filters every candidate from the data file.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/litescript/deepskies/internal/catalog"
	_ "modernc.org/sqlite"
)

// schemaVersion is stored in PRAGMA user_version. An index written by an
// older layout is dropped and must be rebuilt.
const schemaVersion = 2

const schema = `
CREATE TABLE IF NOT EXISTS stars (
	idx   INTEGER PRIMARY KEY,
	mag   REAL NOT NULL,
	label TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS stars_mag ON stars(mag);
CREATE TABLE IF NOT EXISTS meta (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	star_count  INTEGER NOT NULL,
	fingerprint TEXT NOT NULL
);
`

const dropSchema = `
DROP TABLE IF EXISTS stars;
DROP TABLE IF EXISTS meta;
`

// Source is the catalog the index is built from. The fingerprint identifies
// the exact file contents the index describes.
type Source interface {
	Count() int
	Read(index int) (catalog.Star, error)
	Fingerprint() (string, error)
}

// Store is a magnitude index backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the index database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("index path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping index db: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("read index schema version: %w", err)
	}
	if version != schemaVersion {
		if _, err := db.Exec(dropSchema); err != nil {
			return fmt.Errorf("drop old index schema: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create index schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		return fmt.Errorf("write index schema version: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Build replaces the index contents with the stars of src. Stars that cannot
// be read are left out. It returns how many stars were indexed.
func (s *Store) Build(ctx context.Context, src Source) (int, error) {
	fingerprint, err := src.Fingerprint()
	if err != nil {
		return 0, fmt.Errorf("fingerprint catalog: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin build: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stars`); err != nil {
		return 0, fmt.Errorf("clear stars: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM meta`); err != nil {
		return 0, fmt.Errorf("clear meta: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO stars (idx, mag, label) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	indexed := 0
	for i := 1; i <= src.Count(); i++ {
		star, err := src.Read(i)
		if err != nil {
			continue
		}
		if _, err := stmt.ExecContext(ctx, i, star.Mag, star.Label); err != nil {
			return 0, fmt.Errorf("insert star %d: %w", i, err)
		}
		indexed++
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (id, star_count, fingerprint) VALUES (1, ?, ?)`,
		src.Count(), fingerprint,
	); err != nil {
		return 0, fmt.Errorf("write meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit build: %w", err)
	}
	return indexed, nil
}

// Meta returns the catalog the index was built for. ok is false when the
// index has never been built.
func (s *Store) Meta(ctx context.Context) (count int, fingerprint string, ok bool, err error) {
	return readMeta(ctx, s.db)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readMeta(ctx context.Context, q queryer) (count int, fingerprint string, ok bool, err error) {
	row := q.QueryRowContext(ctx, `SELECT star_count, fingerprint FROM meta WHERE id = 1`)
	if err := row.Scan(&count, &fingerprint); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", false, nil
		}
		return 0, "", false, fmt.Errorf("read meta: %w", err)
	}
	return count, fingerprint, true, nil
}

// Fresh reports whether the index was built from a catalog with this
// fingerprint.
func (s *Store) Fresh(ctx context.Context, fingerprint string) (bool, error) {
	_, built, ok, err := s.Meta(ctx)
	if err != nil || !ok {
		return false, err
	}
	return built == fingerprint, nil
}

// Select returns, in ascending order, the indices of stars at or brighter
// than limit. ok is false when the index was not built from the catalog with
// this fingerprint. The check and the query share one read transaction, so a
// concurrent Build cannot slip in between.
func (s *Store) Select(ctx context.Context, limit float64, fingerprint string) ([]int, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin select: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, built, ok, err := readMeta(ctx, tx)
	if err != nil {
		return nil, false, err
	}
	if !ok || built != fingerprint {
		return nil, false, nil
	}

	rows, err := tx.QueryContext(ctx, `SELECT idx FROM stars WHERE mag <= ? ORDER BY idx`, limit)
	if err != nil {
		return nil, false, fmt.Errorf("select stars: %w", err)
	}
	defer rows.Close()

	var indices []int
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, false, fmt.Errorf("scan star: %w", err)
		}
		indices = append(indices, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate stars: %w", err)
	}
	return indices, true, nil
}

// Lookup returns the indices of stars whose label starts with prefix,
// ignoring case.
func (s *Store) Lookup(ctx context.Context, prefix string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx FROM stars WHERE label LIKE ? ESCAPE '\' ORDER BY idx`,
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", prefix, err)
	}
	defer rows.Close()

	var indices []int
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, fmt.Errorf("scan star: %w", err)
		}
		indices = append(indices, idx)
	}
	return indices, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
