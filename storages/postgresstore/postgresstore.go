// postgresstore.go: PostgreSQL-backed storage tier

// Package postgresstore registers the postgresql:// storage scheme.
package postgresstore

import (
	"database/sql"
	"net/url"
	"strconv"

	_ "github.com/lib/pq"

	"github.com/Yiling-J/cacheme"
	"github.com/Yiling-J/cacheme/storages/sqlstore"
)

func init() {
	cacheme.RegisterScheme("postgresql", func(u *url.URL) (cacheme.Storage, error) {
		table, poolSize := parseTableAndPoolSize(u)
		db, err := sql.Open("postgres", u.String())
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(poolSize)
		return sqlstore.New("postgresql", db, table, sqlstore.Dollar, sqlstore.DialectOnConflict), nil
	})
}

// parseTableAndPoolSize reads the table and pool_size query parameters,
// defaulting to "cacheme_entries" and 10. Split out from init so the URL
// handling can be verified without opening a database connection.
func parseTableAndPoolSize(u *url.URL) (table string, poolSize int) {
	table = u.Query().Get("table")
	if table == "" {
		table = "cacheme_entries"
	}
	poolSize = 10
	if v := u.Query().Get("pool_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			poolSize = n
		}
	}
	return table, poolSize
}
