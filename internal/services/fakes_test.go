package services

import (
	"context"
	"sync"

	"ultrachat-backend/internal/llm"
	"ultrachat-backend/internal/models"
	"ultrachat-backend/internal/repository"
)

type memoryUsers struct {
	mu     sync.Mutex
	byName map[string]*models.User
	nextID int64
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byName: make(map[string]*models.User)}
}

func (m *memoryUsers) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[user.Username]; ok {
		return repository.ErrUsernameTaken
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.byName[user.Username] = &stored
	return nil
}

func (m *memoryUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byName[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

type memoryChats struct {
	mu     sync.Mutex
	turns  []models.ChatTurn
	writes int
}

func (m *memoryChats) LatestN(ctx context.Context, userID int64, n int) ([]models.ChatTurn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ChatTurn
	for i := len(m.turns) - 1; i >= 0 && len(out) < n; i-- {
		if m.turns[i].UserID == userID {
			out = append(out, m.turns[i])
		}
	}
	return out, nil
}

func (m *memoryChats) AppendExchange(ctx context.Context, userID int64, userMessage, reply string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range []models.ChatTurn{
		{UserID: userID, Role: models.RoleUser, Message: userMessage},
		{UserID: userID, Role: models.RoleAssistant, Message: reply},
	} {
		t.ID = int64(len(m.turns) + 1)
		m.turns = append(m.turns, t)
		m.writes++
	}
	return nil
}

func (m *memoryChats) forUser(userID int64) []models.ChatTurn {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ChatTurn
	for _, t := range m.turns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

// recordingCompleter answers with reply (or err) and records every request.
type recordingCompleter struct {
	mu       sync.Mutex
	reply    func(messages []llm.Message) string
	err      error
	requests [][]llm.Message
}

func (c *recordingCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, append([]llm.Message(nil), messages...))
	if c.err != nil {
		return "", c.err
	}
	return c.reply(messages), nil
}

func (c *recordingCompleter) last() []llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[len(c.requests)-1]
}

type blockingCompleter struct{}

func (blockingCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
