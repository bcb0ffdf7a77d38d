package database

// Migration is one versioned schema step. Statements are idempotent so a
// partially tracked database can be migrated again safely.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

var PostgresMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL
		)`,
	},
	{
		Version: 2,
		Name:    "create_chats",
		SQL: `CREATE TABLE IF NOT EXISTS chats (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			message TEXT NOT NULL
		)`,
	},
	{
		Version: 3,
		Name:    "index_chats_user",
		SQL:     `CREATE INDEX IF NOT EXISTS idx_chats_user_id ON chats (user_id, id DESC)`,
	},
}

var SQLiteMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL
		)`,
	},
	{
		Version: 2,
		Name:    "create_chats",
		SQL: `CREATE TABLE IF NOT EXISTS chats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			message TEXT NOT NULL
		)`,
	},
	{
		Version: 3,
		Name:    "index_chats_user",
		SQL:     `CREATE INDEX IF NOT EXISTS idx_chats_user_id ON chats (user_id, id DESC)`,
	},
}
