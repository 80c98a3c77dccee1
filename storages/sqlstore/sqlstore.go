// sqlstore.go: shared database/sql-backed storage tier

// Package sqlstore is the common database/sql implementation of
// cacheme.Storage that storages/postgresstore, storages/mysqlstore and
// storages/sqlitestore each plug a driver and a placeholder dialect into.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Yiling-J/cacheme"
)

// Placeholder renders the i-th (1-based) bound parameter for a dialect:
// "?" for MySQL/SQLite, "$1".. for PostgreSQL.
type Placeholder func(i int) string

// Question is the MySQL/SQLite placeholder dialect.
func Question(int) string { return "?" }

// Dollar is the PostgreSQL placeholder dialect.
func Dollar(i int) string { return fmt.Sprintf("$%d", i) }

// UpsertDialect picks the insert-or-update syntax: MySQL uses
// "ON DUPLICATE KEY UPDATE", PostgreSQL and SQLite use "ON CONFLICT".
type UpsertDialect int

const (
	DialectOnConflict UpsertDialect = iota
	DialectOnDuplicateKey
)

// Storage is a SQL-table-backed cacheme.Storage: one row per full key,
// holding the serialized envelope and its expiry as a nullable column so a
// plain "WHERE expire IS NULL OR expire > now" selects live rows.
type Storage struct {
	name    string
	db      *sql.DB
	table   string
	ph      Placeholder
	dialect UpsertDialect
}

// New builds a Storage over an already-open *sql.DB. The caller is
// responsible for having opened db with the right driver (lib/pq,
// go-sql-driver/mysql, mattn/go-sqlite3).
func New(name string, db *sql.DB, table string, ph Placeholder, dialect UpsertDialect) *Storage {
	return &Storage{name: name, db: db, table: table, ph: ph, dialect: dialect}
}

func (s *Storage) Name() string  { return s.name }
func (s *Storage) IsLocal() bool { return false }

func (s *Storage) Connect(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return err
	}
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		full_key TEXT PRIMARY KEY,
		value BYTEA,
		updated_at TIMESTAMP,
		expire TIMESTAMP
	)`, s.table)
	_, err := s.db.ExecContext(ctx, q)
	return err
}

func (s *Storage) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *Storage) Get(ctx context.Context, fullKey string, ser cacheme.Serializer) (cacheme.Maybe, error) {
	q := fmt.Sprintf("SELECT value, updated_at, expire FROM %s WHERE full_key = %s", s.table, s.ph(1))
	row := s.db.QueryRowContext(ctx, q, fullKey)
	var raw []byte
	var updatedAt time.Time
	var expire sql.NullTime
	if err := row.Scan(&raw, &updatedAt, &expire); err == sql.ErrNoRows {
		return cacheme.Absent(), nil
	} else if err != nil {
		return cacheme.Maybe{}, err
	}
	if expire.Valid && time.Now().UTC().After(expire.Time) {
		return cacheme.Absent(), nil
	}
	var value interface{}
	if err := ser.Loads(raw, &value); err != nil {
		return cacheme.Absent(), nil
	}
	var exp *time.Time
	if expire.Valid {
		exp = &expire.Time
	}
	return cacheme.Present(cacheme.Cached{Value: value, UpdatedAt: updatedAt, Expire: exp}), nil
}

func (s *Storage) GetAll(ctx context.Context, fullKeys []string, ser cacheme.Serializer) (map[string]cacheme.Maybe, error) {
	out := make(map[string]cacheme.Maybe, len(fullKeys))
	for _, k := range fullKeys {
		m, err := s.Get(ctx, k, ser)
		if err != nil {
			return nil, err
		}
		if m.Ok {
			out[k] = m
		}
	}
	return out, nil
}

func (s *Storage) Set(ctx context.Context, fullKey string, value interface{}, ttl time.Duration, ser cacheme.Serializer) error {
	raw, err := ser.Dumps(value)
	if err != nil {
		return &cacheme.SerializationError{Op: "dumps", Err: err}
	}
	now := time.Now().UTC()
	var expire interface{}
	if ttl > 0 {
		expire = now.Add(ttl)
	}
	upsert := buildUpsertSQL(s.table, s.ph, s.dialect)
	_, err = s.db.ExecContext(ctx, upsert, fullKey, raw, now, expire)
	return err
}

// buildUpsertSQL renders the dialect-appropriate insert-or-update statement
// for table, with four bound parameters (full_key, value, updated_at,
// expire) placed via ph. Split out from Set so the SQL shape can be
// verified without an open *sql.DB.
func buildUpsertSQL(table string, ph Placeholder, dialect UpsertDialect) string {
	switch dialect {
	case DialectOnDuplicateKey:
		return fmt.Sprintf(`INSERT INTO %s (full_key, value, updated_at, expire) VALUES (%s, %s, %s, %s)
			ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at), expire = VALUES(expire)`,
			table, ph(1), ph(2), ph(3), ph(4))
	default:
		return fmt.Sprintf(`INSERT INTO %s (full_key, value, updated_at, expire) VALUES (%s, %s, %s, %s)
			ON CONFLICT (full_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at, expire = excluded.expire`,
			table, ph(1), ph(2), ph(3), ph(4))
	}
}

func (s *Storage) SetAll(ctx context.Context, values map[string]interface{}, ttl time.Duration, ser cacheme.Serializer) error {
	for k, v := range values {
		if err := s.Set(ctx, k, v, ttl, ser); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) Remove(ctx context.Context, fullKey string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE full_key = %s", s.table, s.ph(1))
	_, err := s.db.ExecContext(ctx, q, fullKey)
	return err
}
