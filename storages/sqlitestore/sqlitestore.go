// sqlitestore.go: local SQLite-file-backed storage tier

// Package sqlitestore registers the sqlite:// storage scheme. Despite the
// file living on local disk, a SQLite tier reports IsLocal() == false: it
// is probed on the engine's remote (asynchronous) path like any other
// database/sql-backed store, since the design's "local" distinction is
// about synchronous in-process access, not physical locality.
package sqlitestore

import (
	"database/sql"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Yiling-J/cacheme"
	"github.com/Yiling-J/cacheme/storages/sqlstore"
)

func init() {
	cacheme.RegisterScheme("sqlite", func(u *url.URL) (cacheme.Storage, error) {
		db, err := sql.Open("sqlite3", pathFromURL(u))
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1) // the sqlite3 driver is not safe for concurrent writers
		return sqlstore.New("sqlite", db, tableFromURL(u), sqlstore.Question, sqlstore.DialectOnConflict), nil
	})
}

// pathFromURL resolves the file path out of a sqlite:// URL, accepting both
// the path-form and "sqlite:rel/path.db" (opaque-form). In the path-form one
// leading slash is dropped, so "sqlite:///rel/path.db" names a path relative
// to the working directory and "sqlite:////abs/path.db" an absolute one.
// Split out from init so path handling can be verified without touching disk.
func pathFromURL(u *url.URL) string {
	path := strings.TrimPrefix(u.Path, "/")
	if path == "" {
		path = u.Opaque
	}
	return path
}

// tableFromURL reads the table query parameter, defaulting to
// "cacheme_entries".
func tableFromURL(u *url.URL) string {
	table := u.Query().Get("table")
	if table == "" {
		table = "cacheme_entries"
	}
	return table
}
