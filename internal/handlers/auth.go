package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/sirupsen/logrus"

	"ultrachat-backend/internal/middleware"
	"ultrachat-backend/internal/models"
	"ultrachat-backend/internal/services"
	"ultrachat-backend/internal/views"
)

type authService interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*models.Session, string, error)
	Logout(ctx context.Context, token string)
}

type pageRenderer interface {
	Render(w io.Writer, page string, data any) error
}

type AuthHandler struct {
	authService authService
	cookies     *middleware.SessionAuth
	views       pageRenderer
	log         logrus.FieldLogger
}

func NewAuthHandler(authService authService, cookies *middleware.SessionAuth, views pageRenderer, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, views: views, log: log}
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, h.views, h.log, views.RegisterPage, nil)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid form submission")
		return
	}

	err = h.authService.Register(r.Context(), creds.Username, creds.Password)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.Is(err, services.ErrDuplicateUsername):
			writeText(w, http.StatusConflict, "Username already exists!")
		case errors.As(err, &verr):
			writeText(w, http.StatusBadRequest, verr.Message)
		default:
			h.log.WithError(err).Error("registration failed")
			writeText(w, http.StatusInternalServerError, "An unexpected error occurred")
		}
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, h.views, h.log, views.LoginPage, nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid form submission")
		return
	}

	sess, token, err := h.authService.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeText(w, http.StatusUnauthorized, "Invalid credentials!")
			return
		}
		h.log.WithError(err).Error("login failed")
		writeText(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	h.cookies.SetCookie(w, token, sess.ExpiresAt)
	h.log.WithField("user_id", sess.UserID).Info("user logged in")
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.Logout(r.Context(), middleware.SessionToken(r))
	h.cookies.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Shared helpers

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

func decodeCredentials(r *http.Request) (models.Credentials, error) {
	var creds models.Credentials
	if err := r.ParseForm(); err != nil {
		return creds, err
	}
	err := formDecoder.Decode(&creds, r.PostForm)
	return creds, err
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, message)
}

func renderPage(w http.ResponseWriter, v pageRenderer, log logrus.FieldLogger, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := v.Render(w, page, data); err != nil {
		log.WithError(err).WithField("page", page).Error("failed to render page")
		http.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
	}
}
