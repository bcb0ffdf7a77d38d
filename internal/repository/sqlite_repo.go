package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/glebarez/go-sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"ultrachat-backend/internal/models"
)

// SQLiteUserRepo is the UserRepo counterpart for the single-file SQLite backend.
type SQLiteUserRepo struct {
	db *sql.DB
}

func NewSQLiteUserRepo(db *sql.DB) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: db}
}

func (r *SQLiteUserRepo) Create(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, password) VALUES (?, ?)",
		user.Username, user.PasswordHash,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id
	return nil
}

func (r *SQLiteUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, password FROM users WHERE username = ?", username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

type SQLiteChatRepo struct {
	db *sql.DB
}

func NewSQLiteChatRepo(db *sql.DB) *SQLiteChatRepo {
	return &SQLiteChatRepo{db: db}
}

func (r *SQLiteChatRepo) LatestN(ctx context.Context, userID int64, n int) ([]models.ChatTurn, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, role, message FROM chats
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?`, userID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	turns := make([]models.ChatTurn, 0, n)
	for rows.Next() {
		var t models.ChatTurn
		if err := rows.Scan(&t.ID, &t.UserID, &t.Role, &t.Message); err != nil {
			return nil, fmt.Errorf("failed to scan chat turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (r *SQLiteChatRepo) AppendExchange(ctx context.Context, userID int64, userMessage, reply string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin chat transaction: %w", err)
	}
	defer tx.Rollback()

	const insert = "INSERT INTO chats (user_id, role, message) VALUES (?, ?, ?)"
	if _, err := tx.ExecContext(ctx, insert, userID, models.RoleUser, userMessage); err != nil {
		return fmt.Errorf("failed to insert user turn: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insert, userID, models.RoleAssistant, reply); err != nil {
		return fmt.Errorf("failed to insert assistant turn: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat transaction: %w", err)
	}
	return nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
