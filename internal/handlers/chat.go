package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"

	"ultrachat-backend/internal/middleware"
	"ultrachat-backend/internal/models"
	"ultrachat-backend/internal/services"
)

const maxChatBody = 64 << 10

const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeValidation      = "VALIDATION_ERROR"
	CodeUpstream        = "UPSTREAM_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

type messageSender interface {
	SendMessage(ctx context.Context, sess *models.Session, text string) (string, error)
}

type markdownRenderer interface {
	Markdown(source string) template.HTML
}

type ChatHandler struct {
	chat     messageSender
	markdown markdownRenderer
	log      logrus.FieldLogger
}

func NewChatHandler(chat messageSender, markdown markdownRenderer, log logrus.FieldLogger) *ChatHandler {
	return &ChatHandler{chat: chat, markdown: markdown, log: log}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusOK, models.ChatError{Error: "Not logged in", Code: CodeUnauthenticated})
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ChatError{Error: "Invalid request body", Code: CodeValidation})
		return
	}

	reply, err := h.chat.SendMessage(r.Context(), sess, req.Message)
	if err != nil {
		h.handleChatError(w, sess, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply, HTML: string(h.markdown.Markdown(reply))})
}

func (h *ChatHandler) handleChatError(w http.ResponseWriter, sess *models.Session, err error) {
	var verr *services.ValidationError
	var uerr *services.UpstreamError
	log := h.log.WithField("user_id", sess.UserID)

	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		writeJSON(w, http.StatusOK, models.ChatError{Error: "Not logged in", Code: CodeUnauthenticated})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, models.ChatError{Error: verr.Message, Code: CodeValidation})
	case errors.As(err, &uerr):
		log.WithError(err).Error("completion request failed")
		writeJSON(w, http.StatusBadGateway, models.ChatError{Error: "The assistant is unavailable, please try again", Code: CodeUpstream})
	default:
		log.WithError(err).Error("chat relay failed")
		writeJSON(w, http.StatusInternalServerError, models.ChatError{Error: "An unexpected error occurred", Code: CodeInternal})
	}
}
