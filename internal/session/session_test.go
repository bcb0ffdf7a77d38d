package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager(ttl time.Duration) (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager("test-secret", ttl)
	m.now = clock.Now
	return m, clock
}

func TestIssueAndResolve(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	token, issued, err := m.Issue(42, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sess, err := m.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, sess.ID)
	assert.Equal(t, int64(42), sess.UserID)
	assert.Equal(t, "alice", sess.Username)
	assert.Equal(t, 1, m.Active())
}

func TestResolve_Expired(t *testing.T) {
	m, clock := newTestManager(time.Hour)

	token, _, err := m.Issue(1, "alice")
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Hour)
	_, err = m.Resolve(token)
	require.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, 0, m.Active(), "expired session should be dropped")
}

func TestResolve_RejectsForeignSignature(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	other := NewManager("another-secret", time.Hour)

	token, _, err := other.Issue(1, "mallory")
	require.NoError(t, err)

	_, err = m.Resolve(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolve_Garbage(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := m.Resolve(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestRevoke_IsIdempotent(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	token, _, err := m.Issue(1, "alice")
	require.NoError(t, err)

	m.Revoke(token)
	m.Revoke(token)
	m.Revoke("")
	m.Revoke("garbage")

	_, err = m.Resolve(token)
	require.ErrorIs(t, err, ErrRevoked)
}

func TestRevoke_LeavesOtherSessions(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	first, _, err := m.Issue(1, "alice")
	require.NoError(t, err)
	second, _, err := m.Issue(1, "alice")
	require.NoError(t, err)

	m.Revoke(first)

	_, err = m.Resolve(second)
	require.NoError(t, err)
}

func TestRestartForgetsSessions(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	token, _, err := m.Issue(1, "alice")
	require.NoError(t, err)

	restarted := NewManager("test-secret", time.Hour)
	restarted.now = m.now
	_, err = restarted.Resolve(token)
	require.ErrorIs(t, err, ErrRevoked)
}

func TestSweep(t *testing.T) {
	m, clock := newTestManager(time.Hour)

	_, _, err := m.Issue(1, "alice")
	require.NoError(t, err)
	clock.t = clock.t.Add(30 * time.Minute)
	_, _, err = m.Issue(2, "bob")
	require.NoError(t, err)

	clock.t = clock.t.Add(45 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Active())
}

func TestStartSweeper_StopIsIdempotent(t *testing.T) {
	m := NewManager("test-secret", time.Millisecond)
	_, _, err := m.Issue(1, "alice")
	require.NoError(t, err)

	stop := m.StartSweeper(5 * time.Millisecond)
	require.Eventually(t, func() bool { return m.Active() == 0 }, time.Second, 5*time.Millisecond)
	stop()
	stop()
}
