package service

import (
	"time"

	"github.com/evergreenbank/panel/database"
	"github.com/evergreenbank/panel/database/model"
	"github.com/evergreenbank/panel/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Principal is the authenticated identity attached to a request after a
// successful session validation.
type Principal struct {
	UserId int
	Role   model.Role
}

// SessionService owns the session ledger: it is the only writer of
// session rows. Expiry is enforced at read time; the sweep job is an
// optimization only.
type SessionService struct {
	db             *gorm.DB
	settingService *SettingService
}

func NewSessionService(db *gorm.DB, settingService *SettingService) *SessionService {
	return &SessionService{db: db, settingService: settingService}
}

// Issue creates a new session for the user and returns its token and
// absolute expiry. Multiple calls for the same user produce independent
// sessions. Token uniqueness rests on the ledger's key constraint, so a
// generator collision is retried once and then surfaced.
func (s *SessionService) Issue(userId int) (string, time.Time, error) {
	timeout := s.settingService.GetSessionTimeout()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		session := &model.Session{
			Token:     uuid.NewString(),
			UserId:    userId,
			ExpiresAt: time.Now().Add(time.Duration(timeout) * time.Minute),
		}
		lastErr = s.db.Create(session).Error
		if lastErr == nil {
			return session.Token, session.ExpiresAt, nil
		}
	}
	return "", time.Time{}, lastErr
}

// Validate resolves a token to its principal. A valid session has its
// expiry slid forward to now + timeout before the principal is returned,
// so an active client never expires while its requests keep arriving.
// An expired row is deleted lazily; deletion failure does not make the
// token valid.
func (s *SessionService) Validate(token string) (*Principal, time.Time, error) {
	session := &model.Session{}
	err := s.db.Model(model.Session{}).Where("token = ?", token).First(session).Error
	if database.IsNotFound(err) {
		return nil, time.Time{}, ErrSessionNotFound
	} else if err != nil {
		return nil, time.Time{}, err
	}

	if !session.ExpiresAt.After(time.Now()) {
		if err := s.Revoke(token); err != nil {
			logger.Warning("purge expired session:", err)
		}
		return nil, time.Time{}, ErrSessionExpired
	}

	user := &model.User{}
	err = s.db.Model(model.User{}).Where("id = ?", session.UserId).First(user).Error
	if database.IsNotFound(err) {
		// Owning user was deleted; the session is an orphan. Purge it
		// and reject the token like any other dead session.
		if err := s.Revoke(token); err != nil {
			logger.Warning("purge orphaned session:", err)
		}
		return nil, time.Time{}, ErrSessionNotFound
	} else if err != nil {
		return nil, time.Time{}, err
	}

	expiresAt := time.Now().Add(time.Duration(s.settingService.GetSessionTimeout()) * time.Minute)
	err = s.db.Model(model.Session{}).
		Where("token = ?", token).
		Update("expires_at", expiresAt).Error
	if err != nil {
		return nil, time.Time{}, err
	}

	return &Principal{UserId: user.Id, Role: user.Role}, expiresAt, nil
}

// Revoke deletes the session row if present. Revoking an unknown token
// is not an error.
func (s *SessionService) Revoke(token string) error {
	return s.db.Where("token = ?", token).Delete(model.Session{}).Error
}

// ClearExpired removes rows whose expiry has passed and returns how many
// were deleted.
func (s *SessionService) ClearExpired() (int64, error) {
	result := s.db.Where("expires_at <= ?", time.Now()).Delete(model.Session{})
	return result.RowsAffected, result.Error
}
