// Package llm adapts chat-completion providers to a single Completer interface.
package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyCompletion is returned when the provider answers without any text.
var ErrEmptyCompletion = errors.New("completion returned no content")

type Message struct {
	Role    string
	Content string
}

// Completer returns the assistant reply for an ordered message sequence.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
