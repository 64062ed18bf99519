package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesSchemaInNestedDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "security.db")

	conn, err := InitDB(path)
	require.NoError(t, err)
	defer conn.Close()

	for _, table := range []string{"dashboard_state", "security_events", "users"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	var mode string
	require.NoError(t, conn.QueryRow(`PRAGMA journal_mode;`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestInitDB_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "security.db")

	first, err := InitDB(path)
	require.NoError(t, err)
	_, err = first.Exec(`INSERT INTO users (username, password_hash) VALUES ('a', 'h')`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := InitDB(path)
	require.NoError(t, err)
	defer second.Close()

	var n int
	require.NoError(t, second.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestInitDB_UniqueUsername(t *testing.T) {
	conn, err := InitDB(filepath.Join(t.TempDir(), "u.db"))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(`INSERT INTO users (username, password_hash) VALUES ('a', 'h')`)
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO users (username, password_hash) VALUES ('a', 'h2')`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}
