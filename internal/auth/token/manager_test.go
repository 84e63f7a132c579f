package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, now *time.Time) *Manager {
	t.Helper()
	m, err := NewManager(Options{
		SigningKey: []byte("test-secret"),
		Issuer:     "lababa",
		Audience:   "lababa-client",
		TTL:        time.Hour,
		Leeway:     time.Second,
		Now:        func() time.Time { return *now },
	})
	require.NoError(t, err)
	return m
}

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := newTestManager(t, &now)

	raw, issued, err := m.Issue("user-1", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), issued.ExpiresAt.Time)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestParseRejectsExpiredAndForeignTokens(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := newTestManager(t, &now)
	raw, _, err := m.Issue("user-1", "sess-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = m.Parse(raw)
	require.ErrorIs(t, err, ErrExpiredToken)

	other, err := NewManager(Options{SigningKey: []byte("other"), Now: func() time.Time { return now }})
	require.NoError(t, err)
	foreign, _, err := other.Issue("user-1", "sess-1")
	require.NoError(t, err)
	_, err = m.Parse(foreign)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewManagerValidation(t *testing.T) {
	_, err := NewManager(Options{})
	require.Error(t, err)

	m, err := NewManager(Options{SigningKey: []byte("k")})
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, m.TTL())
	_, _, err = m.Issue(" ", "s")
	require.Error(t, err)
}
