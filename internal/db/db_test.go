package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) (*DB, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	database, err := New(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, dbPath
}

func TestNew_CreatesSchema(t *testing.T) {
	database, _ := openTest(t)

	for _, table := range []string{"_migrations", "config", "projects", "tracks", "items"} {
		var name string
		err := database.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestNew_WALEnabled(t *testing.T) {
	database, _ := openTest(t)

	var mode string
	require.NoError(t, database.Conn().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestNew_MigrationsIdempotent(t *testing.T) {
	first, dbPath := openTest(t)
	first.Close()

	second, err := New(dbPath, nil)
	require.NoError(t, err)
	defer second.Close()

	var count int
	require.NoError(t, second.Conn().QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestForeignKeysCascade(t *testing.T) {
	database, _ := openTest(t)
	conn := database.Conn()

	_, err := conn.Exec(`INSERT INTO projects (id, name, created_at, updated_at) VALUES ('p', 'P', 'now', 'now')`)
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO tracks (project_id, id, type, position) VALUES ('p', 'v1', 'video', 0)`)
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO items (project_id, track_id, id, type, duration, position) VALUES ('p', 'v1', 'a', 'video', 2, 0)`)
	require.NoError(t, err)

	_, err = conn.Exec(`INSERT INTO items (project_id, track_id, id, type, duration, position) VALUES ('p', 'nope', 'b', 'video', 2, 1)`)
	assert.Error(t, err)

	_, err = conn.Exec(`DELETE FROM projects WHERE id = 'p'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestWithTx_RollsBack(t *testing.T) {
	database, _ := openTest(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := WithTx(ctx, database.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO config (key, value) VALUES ('k', 'v')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, database.Conn().QueryRow(`SELECT COUNT(*) FROM config`).Scan(&n))
	assert.Equal(t, 0, n)

	require.NoError(t, WithTx(ctx, database.Conn(), func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO config (key, value) VALUES ('k', 'v')`)
		return err
	}))
	require.NoError(t, database.Conn().QueryRow(`SELECT COUNT(*) FROM config`).Scan(&n))
	assert.Equal(t, 1, n)
}
