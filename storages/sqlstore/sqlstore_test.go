// sqlstore_test.go: dialect-specific upsert SQL construction
package sqlstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuestionPlaceholderIgnoresIndex(t *testing.T) {
	require.Equal(t, "?", Question(1))
	require.Equal(t, "?", Question(4))
}

func TestDollarPlaceholderIsPositional(t *testing.T) {
	require.Equal(t, "$1", Dollar(1))
	require.Equal(t, "$4", Dollar(4))
}

func TestBuildUpsertSQLOnConflictDialect(t *testing.T) {
	sql := buildUpsertSQL("cacheme_entries", Dollar, DialectOnConflict)
	require.True(t, strings.Contains(sql, "INSERT INTO cacheme_entries"))
	require.True(t, strings.Contains(sql, "ON CONFLICT (full_key) DO UPDATE"))
	require.True(t, strings.Contains(sql, "$1"))
	require.True(t, strings.Contains(sql, "$4"))
	require.False(t, strings.Contains(sql, "ON DUPLICATE KEY"), "postgres/sqlite dialect must not emit MySQL upsert syntax")
}

func TestBuildUpsertSQLOnDuplicateKeyDialect(t *testing.T) {
	sql := buildUpsertSQL("cacheme_entries", Question, DialectOnDuplicateKey)
	require.True(t, strings.Contains(sql, "INSERT INTO cacheme_entries"))
	require.True(t, strings.Contains(sql, "ON DUPLICATE KEY UPDATE"))
	require.True(t, strings.Contains(sql, "?"))
	require.False(t, strings.Contains(sql, "ON CONFLICT"), "mysql dialect must not emit Postgres/SQLite upsert syntax")
}

func TestNewBuildsStorageWithoutTouchingDB(t *testing.T) {
	s := New("sql", nil, "cacheme_entries", Question, DialectOnConflict)
	require.Equal(t, "sql", s.Name())
	require.False(t, s.IsLocal())
}
