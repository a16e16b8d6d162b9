package store

import (
	"context"
	"errors"
	"fmt"

	_ "github.com/glebarez/go-sqlite" // registers the "sqlite" driver
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the SQLite-backed supporter and donation repository.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// Open connects to the database file at path and applies pending migrations.
func Open(ctx context.Context, path string, log zerolog.Logger) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database %s: %w", path, err)
	}

	s := &Store{db: db, log: log}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type migration struct {
	version     int
	description string
	up          []string
}

var migrations = []migration{
	{
		version:     1,
		description: "Create initial tables",
		up: []string{
			`CREATE TABLE IF NOT EXISTS supporters (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				address TEXT,
				notes TEXT,
				created_at TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at TEXT NOT NULL DEFAULT (datetime('now'))
			)`,
			`CREATE TABLE IF NOT EXISTS donations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				supporter_id INTEGER NOT NULL,
				amount INTEGER NOT NULL CHECK (amount > 0),
				currency TEXT NOT NULL DEFAULT 'HUF',
				donation_date TEXT NOT NULL,
				payment_method TEXT,
				reference TEXT,
				notes TEXT,
				source TEXT,
				created_at TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at TEXT NOT NULL DEFAULT (datetime('now')),
				FOREIGN KEY (supporter_id) REFERENCES supporters(id) ON DELETE RESTRICT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_donations_supporter_id ON donations(supporter_id)`,
			`CREATE INDEX IF NOT EXISTS idx_donations_donation_date ON donations(donation_date)`,
			`CREATE INDEX IF NOT EXISTS idx_donations_reference ON donations(reference)`,
		},
	},
	{
		version:     2,
		description: "Add cid, nickname, country, postcode, city columns to supporters",
		up: []string{
			`ALTER TABLE supporters ADD COLUMN cid TEXT`,
			`ALTER TABLE supporters ADD COLUMN nickname TEXT`,
			`ALTER TABLE supporters ADD COLUMN country TEXT`,
			`ALTER TABLE supporters ADD COLUMN postcode TEXT`,
			`ALTER TABLE supporters ADD COLUMN city TEXT`,
		},
	},
	{
		version:     3,
		description: "Create supporter email and phone tables",
		up: []string{
			`CREATE TABLE IF NOT EXISTS supporter_emails (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				supporter_id INTEGER NOT NULL,
				email TEXT NOT NULL,
				is_primary INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL DEFAULT (datetime('now')),
				FOREIGN KEY (supporter_id) REFERENCES supporters(id) ON DELETE CASCADE
			)`,
			`CREATE TABLE IF NOT EXISTS supporter_phones (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				supporter_id INTEGER NOT NULL,
				phone TEXT NOT NULL,
				is_primary INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL DEFAULT (datetime('now')),
				FOREIGN KEY (supporter_id) REFERENCES supporters(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_supporter_emails_supporter_id ON supporter_emails(supporter_id)`,
			`CREATE INDEX IF NOT EXISTS idx_supporter_emails_email ON supporter_emails(email)`,
			`CREATE INDEX IF NOT EXISTS idx_supporter_phones_supporter_id ON supporter_phones(supporter_id)`,
			`CREATE INDEX IF NOT EXISTS idx_supporter_phones_phone ON supporter_phones(phone)`,
		},
	},
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		version INTEGER NOT NULL UNIQUE,
		description TEXT,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var applied []int
	if err := s.db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		return fmt.Errorf("reading schema_migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, m := range migrations {
		if done[m.version] {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		s.log.Info().Int("version", m.version).Str("description", m.description).Msg("migration applied")
	}
	return nil
}

func (s *Store) apply(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, stmt := range m.up {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`,
		m.version, m.description,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.GetContext(ctx, &v, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// deleteByID removes one row from table. table is always a constant.
func (s *Store) deleteByID(ctx context.Context, table, what string, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting %s %d: %w", what, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
