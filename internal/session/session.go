// Package session issues signed, expiring session tokens and keeps the
// process-local registry that makes logout effective. Sessions do not
// survive a restart: the registry starts empty, so every previously issued
// token resolves as revoked.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ultrachat-backend/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpired      = errors.New("session expired")
	ErrRevoked      = errors.New("session revoked")
)

type claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	active map[string]models.Session
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		active: make(map[string]models.Session),
	}
}

// Issue registers a new session for the user and returns its signed token.
func (m *Manager) Issue(userID int64, username string) (string, *models.Session, error) {
	now := m.now()
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(sess.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
		UserID:   userID,
		Username: username,
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	m.mu.Lock()
	m.active[sess.ID] = sess
	m.mu.Unlock()

	return signed, &sess, nil
}

// Resolve verifies the token signature and expiry and returns the live session.
func (m *Manager) Resolve(token string) (*models.Session, error) {
	c, err := m.parse(token, true)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			m.forget(c)
			return nil, ErrExpired
		}
		return nil, ErrInvalidToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.active[c.ID]
	if !ok {
		return nil, ErrRevoked
	}
	if !m.now().Before(sess.ExpiresAt) {
		delete(m.active, c.ID)
		return nil, ErrExpired
	}
	return &sess, nil
}

// Revoke ends the session the token refers to. Unknown, expired or malformed
// tokens are ignored.
func (m *Manager) Revoke(token string) {
	c, err := m.parse(token, false)
	if err != nil {
		return
	}
	m.forget(c)
}

// Sweep drops expired sessions and reports how many were removed.
func (m *Manager) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.active {
		if !now.Before(sess.ExpiresAt) {
			delete(m.active, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until the returned stop func is called.
func (m *Manager) StartSweeper(interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// Active reports the number of registered sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

func (m *Manager) parse(token string, validate bool) (*claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if !validate {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	c := &claims{}
	_, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return c, err
	}
	return c, nil
}

func (m *Manager) forget(c *claims) {
	if c == nil || c.ID == "" {
		return
	}
	m.mu.Lock()
	delete(m.active, c.ID)
	m.mu.Unlock()
}
