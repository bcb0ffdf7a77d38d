package database

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRunSQLiteMigrations_Idempotent(t *testing.T) {
	db, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunSQLiteMigrations(db, SQLiteMigrations, quietLogger()))
	require.NoError(t, RunSQLiteMigrations(db, SQLiteMigrations, quietLogger()))

	var applied int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	require.Equal(t, len(SQLiteMigrations), applied)

	for _, table := range []string{"users", "chats"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestSQLiteSchema_EnforcesConstraints(t *testing.T) {
	db, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, RunSQLiteMigrations(db, SQLiteMigrations, quietLogger()))

	_, err = db.Exec("INSERT INTO users (username, password) VALUES ('alice', 'x')")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO users (username, password) VALUES ('alice', 'y')")
	require.Error(t, err, "duplicate username must be rejected")

	_, err = db.Exec("INSERT INTO chats (user_id, role, message) VALUES (999, 'user', 'orphan')")
	require.Error(t, err, "chat turn for a missing user must be rejected")

	_, err = db.Exec("INSERT INTO chats (user_id, role, message) VALUES (1, 'system', 'bad role')")
	require.Error(t, err, "unknown role must be rejected")
}
