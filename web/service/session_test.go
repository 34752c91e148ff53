package service

import (
	"testing"
	"time"

	"github.com/evergreenbank/panel/database/model"
	"github.com/evergreenbank/panel/util/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestUser(t *testing.T, db *gorm.DB, username string, role model.Role) *model.User {
	t.Helper()
	hashed, err := crypto.HashPassword("secret123")
	require.NoError(t, err)
	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func backdateSession(t *testing.T, db *gorm.DB, token string, expiresAt time.Time) {
	t.Helper()
	err := db.Model(model.Session{}).
		Where("token = ?", token).
		Update("expires_at", expiresAt).Error
	require.NoError(t, err)
}

func TestIssueAndValidate(t *testing.T) {
	db := setupTestDB(t)
	settings := NewSettingService(db)
	sessions := NewSessionService(db, settings)
	user := newTestUser(t, db, "alice", model.RoleAdmin)

	token, expiresAt, err := sessions.Issue(user.Id)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Expiry must land within the configured window of now.
	timeout := time.Duration(settings.GetSessionTimeout()) * time.Minute
	assert.WithinDuration(t, time.Now().Add(timeout), expiresAt, 5*time.Second)

	principal, _, err := sessions.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.Id, principal.UserId)
	assert.Equal(t, model.RoleAdmin, principal.Role)
}

func TestIssueIndependentSessions(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionService(db, NewSettingService(db))
	user := newTestUser(t, db, "alice", model.RoleUser)

	t1, _, err := sessions.Issue(user.Id)
	require.NoError(t, err)
	t2, _, err := sessions.Issue(user.Id)
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)

	// Revoking one leaves the other valid.
	require.NoError(t, sessions.Revoke(t1))
	_, _, err = sessions.Validate(t1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, _, err = sessions.Validate(t2)
	assert.NoError(t, err)
}

func TestValidateUnknownToken(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionService(db, NewSettingService(db))

	_, _, err := sessions.Validate("no-such-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestValidateSlidesExpiry(t *testing.T) {
	db := setupTestDB(t)
	settings := NewSettingService(db)
	sessions := NewSessionService(db, settings)
	user := newTestUser(t, db, "alice", model.RoleUser)

	token, _, err := sessions.Issue(user.Id)
	require.NoError(t, err)

	// Shrink the remaining lifetime, then validate: the expiry must be
	// recomputed from now, not from the old value.
	backdateSession(t, db, token, time.Now().Add(10*time.Second))
	_, slid, err := sessions.Validate(token)
	require.NoError(t, err)
	timeout := time.Duration(settings.GetSessionTimeout()) * time.Minute
	assert.WithinDuration(t, time.Now().Add(timeout), slid, 5*time.Second)

	// Repeated validation within the window keeps the session alive.
	for i := 0; i < 5; i++ {
		_, next, err := sessions.Validate(token)
		require.NoError(t, err)
		assert.True(t, next.After(time.Now()))
	}
}

func TestValidateExpired(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionService(db, NewSettingService(db))
	user := newTestUser(t, db, "alice", model.RoleUser)

	token, _, err := sessions.Issue(user.Id)
	require.NoError(t, err)

	backdateSession(t, db, token, time.Now().Add(-time.Hour))
	_, _, err = sessions.Validate(token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	// The expired row was purged lazily, so the token now reads as
	// unknown rather than expired.
	_, _, err = sessions.Validate(token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestValidateDeletedUser(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionService(db, NewSettingService(db))
	user := newTestUser(t, db, "alice", model.RoleUser)

	token, _, err := sessions.Issue(user.Id)
	require.NoError(t, err)

	// Deleting the owning user orphans the session; the token must read
	// as a dead session, not a store failure.
	require.NoError(t, db.Delete(model.User{}, user.Id).Error)
	_, _, err = sessions.Validate(token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// The orphan row was purged.
	var count int64
	require.NoError(t, db.Model(model.Session{}).Where("token = ?", token).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestValidateOneMinuteTimeout(t *testing.T) {
	db := setupTestDB(t)
	settings := NewSettingService(db)
	sessions := NewSessionService(db, settings)
	user := newTestUser(t, db, "alice", model.RoleUser)

	require.NoError(t, settings.SetSessionTimeout(1))
	token, expiresAt, err := sessions.Issue(user.Id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	// 61 seconds of inactivity.
	backdateSession(t, db, token, expiresAt.Add(-61*time.Second))
	_, _, err = sessions.Validate(token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestRevokeIdempotent(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionService(db, NewSettingService(db))
	user := newTestUser(t, db, "alice", model.RoleUser)

	token, _, err := sessions.Issue(user.Id)
	require.NoError(t, err)

	require.NoError(t, sessions.Revoke(token))
	_, _, err = sessions.Validate(token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Revoking again, and revoking a token that never existed, is fine.
	assert.NoError(t, sessions.Revoke(token))
	assert.NoError(t, sessions.Revoke("never-issued"))
}

func TestClearExpired(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionService(db, NewSettingService(db))
	user := newTestUser(t, db, "alice", model.RoleUser)

	live, _, err := sessions.Issue(user.Id)
	require.NoError(t, err)
	dead, _, err := sessions.Issue(user.Id)
	require.NoError(t, err)
	backdateSession(t, db, dead, time.Now().Add(-time.Minute))

	count, err := sessions.ClearExpired()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, _, err = sessions.Validate(live)
	assert.NoError(t, err)
	_, _, err = sessions.Validate(dead)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
