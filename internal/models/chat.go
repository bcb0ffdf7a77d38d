package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one persisted message of a user's conversation.
type ChatTurn struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Role    string `json:"role"` // "user" or "assistant"
	Message string `json:"message"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply from the AI chat.
// HTML is Reply rendered from Markdown, matching how stored replies are shown.
type ChatResponse struct {
	Reply string `json:"reply"`
	HTML  string `json:"html,omitempty"`
}

// ChatError is returned by the chat endpoint in place of a reply.
type ChatError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
