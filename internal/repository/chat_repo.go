package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"ultrachat-backend/internal/models"
)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

// LatestN returns up to n turns of the user, newest first.
func (r *ChatRepo) LatestN(ctx context.Context, userID int64, n int) ([]models.ChatTurn, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, role, message FROM chats
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2`, userID, n)
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

// AppendExchange stores the user message and the assistant reply atomically,
// user turn first.
func (r *ChatRepo) AppendExchange(ctx context.Context, userID int64, userMessage, reply string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin chat transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const insert = `INSERT INTO chats (user_id, role, message) VALUES ($1, $2, $3)`
	if _, err := tx.Exec(ctx, insert, userID, models.RoleUser, userMessage); err != nil {
		return fmt.Errorf("failed to insert user turn: %w", err)
	}
	if _, err := tx.Exec(ctx, insert, userID, models.RoleAssistant, reply); err != nil {
		return fmt.Errorf("failed to insert assistant turn: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chat transaction: %w", err)
	}
	return nil
}
