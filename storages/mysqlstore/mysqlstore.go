// mysqlstore.go: MySQL-backed storage tier

// Package mysqlstore registers the mysql:// storage scheme.
package mysqlstore

import (
	"database/sql"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/Yiling-J/cacheme"
	"github.com/Yiling-J/cacheme/storages/sqlstore"
)

func init() {
	cacheme.RegisterScheme("mysql", func(u *url.URL) (cacheme.Storage, error) {
		table, poolSize := parseTableAndPoolSize(u)
		db, err := sql.Open("mysql", dsnFromURL(u))
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(poolSize)
		return sqlstore.New("mysql", db, table, sqlstore.Question, sqlstore.DialectOnDuplicateKey), nil
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

// dsnFromURL strips the scheme go-sql-driver/mysql does not itself expect,
// since cacheme's mysql:// URLs use the scheme only for dispatch.
func dsnFromURL(u *url.URL) string {
	return strings.TrimPrefix(u.String(), "mysql://")
}
