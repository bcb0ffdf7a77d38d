package services

import (
	"context"
	"strings"
	"time"

	"ultrachat-backend/internal/llm"
	"ultrachat-backend/internal/models"
)

const (
	// ContextTurns is the number of stored turns sent with each new message.
	ContextTurns             = 10
	DefaultCompletionTimeout = 60 * time.Second
)

type ChatStore interface {
	LatestN(ctx context.Context, userID int64, n int) ([]models.ChatTurn, error)
	AppendExchange(ctx context.Context, userID int64, userMessage, reply string) error
}

type ChatOptions struct {
	SystemPrompt string
	Timeout      time.Duration
}

type ChatService struct {
	chats        ChatStore
	completer    llm.Completer
	systemPrompt string
	timeout      time.Duration
}

func NewChatService(chats ChatStore, completer llm.Completer, opts ChatOptions) *ChatService {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultCompletionTimeout
	}
	return &ChatService{
		chats:        chats,
		completer:    completer,
		systemPrompt: opts.SystemPrompt,
		timeout:      opts.Timeout,
	}
}

// SendMessage relays text with the user's recent history to the completion
// API and stores the exchange. Nothing is written unless a reply arrives.
func (s *ChatService) SendMessage(ctx context.Context, sess *models.Session, text string) (string, error) {
	if sess == nil {
		return "", ErrUnauthenticated
	}
	if strings.TrimSpace(text) == "" {
		return "", &ValidationError{Message: "Message is required"}
	}

	history, err := s.History(ctx, sess, ContextTurns)
	if err != nil {
		return "", err
	}

	reply, err := s.complete(ctx, s.buildMessages(history, text))
	if err != nil {
		return "", &UpstreamError{Err: err}
	}

	if err := s.chats.AppendExchange(ctx, sess.UserID, text, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// History returns up to limit of the user's most recent turns, oldest first.
func (s *ChatService) History(ctx context.Context, sess *models.Session, limit int) ([]models.ChatTurn, error) {
	if sess == nil {
		return nil, ErrUnauthenticated
	}

	turns, err := s.chats.LatestN(ctx, sess.UserID, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (s *ChatService) buildMessages(history []models.ChatTurn, text string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: s.systemPrompt})
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Message})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: text})
}

// complete runs one completion call in its own goroutine. It returns when the
// call finishes, the timeout fires or the caller's context is cancelled,
// whichever comes first.
func (s *ChatService) complete(ctx context.Context, messages []llm.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		reply string
		err   error
	}
	done := make(chan result, 1)

	go func() {
		reply, err := s.completer.Complete(ctx, messages)
		done <- result{reply: reply, err: err}
	}()

	select {
	case res := <-done:
		if res.err == nil && strings.TrimSpace(res.reply) == "" {
			return "", llm.ErrEmptyCompletion
		}
		return res.reply, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
