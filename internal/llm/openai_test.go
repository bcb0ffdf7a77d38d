package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChatClient struct {
	resp openai.ChatCompletionResponse
	err  error
	got  openai.ChatCompletionRequest
}

func (m *mockChatClient) CreateChatCompletion(ctx context.Context, r openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.got = r
	return m.resp, m.err
}

func reply(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: "assistant", Content: content}}},
	}
}

func TestOpenAICompleter_ForwardsMessagesInOrder(t *testing.T) {
	client := &mockChatClient{resp: reply("Hi there")}
	c := NewOpenAICompleter(client, "gpt-4o-mini")

	got, err := c.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "be nice"},
		{Role: RoleUser, Content: "earlier"},
		{Role: RoleAssistant, Content: "answer"},
		{Role: RoleUser, Content: "Hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", got)

	assert.Equal(t, "gpt-4o-mini", client.got.Model)
	require.Len(t, client.got.Messages, 4)
	assert.Equal(t, openai.ChatCompletionMessage{Role: "system", Content: "be nice"}, client.got.Messages[0])
	assert.Equal(t, openai.ChatCompletionMessage{Role: "user", Content: "Hello"}, client.got.Messages[3])
}

func TestOpenAICompleter_Errors(t *testing.T) {
	tests := []struct {
		name   string
		client *mockChatClient
		want   error
	}{
		{"no choices", &mockChatClient{}, ErrEmptyCompletion},
		{"blank content", &mockChatClient{resp: reply("  ")}, ErrEmptyCompletion},
		{"client failure", &mockChatClient{err: errors.New("boom")}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOpenAICompleter(tc.client, "m").Complete(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
			require.Error(t, err)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestOpenAICompleter_AgainstHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body openai.ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		assert.Len(t, body.Messages, 2)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": "Hi there"},
			}},
		})
	}))
	defer srv.Close()

	c := NewOpenAICompleter(NewOpenAIClient("test-key", srv.URL+"/v1"), "gpt-4o-mini")
	got, err := c.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "Hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi there", got)
}
