package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"ultrachat-backend/internal/middleware"
	"ultrachat-backend/internal/models"
	"ultrachat-backend/internal/views"
)

type historyLoader interface {
	History(ctx context.Context, sess *models.Session, limit int) ([]models.ChatTurn, error)
}

type DashboardHandler struct {
	chat         historyLoader
	views        pageRenderer
	historyLimit int
	log          logrus.FieldLogger
}

func NewDashboardHandler(chat historyLoader, views pageRenderer, historyLimit int, log logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{chat: chat, views: views, historyLimit: historyLimit, log: log}
}

type dashboardData struct {
	Username string
	History  []models.ChatTurn
}

// Index sends authenticated users to the dashboard and everyone else to login.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	if middleware.GetSession(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	history, err := h.chat.History(r.Context(), sess, h.historyLimit)
	if err != nil {
		// The page is still usable without prior turns.
		h.log.WithError(err).WithField("user_id", sess.UserID).Warn("failed to load chat history")
		history = nil
	}

	renderPage(w, h.views, h.log, views.DashboardPage, dashboardData{Username: sess.Username, History: history})
}
