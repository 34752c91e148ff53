package service

import (
	"time"

	"github.com/evergreenbank/panel/database"
	"github.com/evergreenbank/panel/database/model"
	"github.com/evergreenbank/panel/logger"
	"github.com/evergreenbank/panel/util/crypto"

	"gorm.io/gorm"
)

type UserService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

func NewUserService(db *gorm.DB, notificationService *NotificationService) *UserService {
	return &UserService{db: db, notificationService: notificationService}
}

// CheckUser authenticates a login attempt. Unknown username and wrong
// password both return ErrInvalidCredentials so the response never
// reveals whether an account exists. Login by email is accepted too,
// matching the original portal behavior.
func (s *UserService) CheckUser(username string, password string) (*model.User, error) {
	user := &model.User{}
	err := s.db.Model(model.User{}).
		Where("username = ? OR email = ?", username, username).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		logger.Warning("check user:", err)
		return nil, err
	}

	if !crypto.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateLastLogin stamps the user's last successful login. Best-effort:
// a failure here never blocks the login itself.
func (s *UserService) UpdateLastLogin(userId int) {
	now := time.Now()
	err := s.db.Model(model.User{}).
		Where("id = ?", userId).
		Update("last_login", &now).Error
	if err != nil {
		logger.Warning("update last login:", err)
	}
}

func (s *UserService) GetUser(id int) (*model.User, error) {
	user := &model.User{}
	err := s.db.Model(model.User{}).Where("id = ?", id).First(user).Error
	if database.IsNotFound(err) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUsers lists all users, newest first.
func (s *UserService) GetUsers() ([]*model.User, error) {
	users := make([]*model.User, 0)
	err := s.db.Model(model.User{}).Order("created_at DESC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates a user with a hashed password. Duplicate username
// or email is rejected before the insert to return a clean error.
func (s *UserService) CreateUser(username, email, password, firstName, lastName string, role model.Role) (*model.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, ErrValidation
	}
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, ErrValidation
	}

	var count int64
	err := s.db.Model(model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:  username,
		Email:     email,
		Password:  hashed,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}

	s.notificationService.SendWelcome(user)
	return user, nil
}

// UserPatch enumerates the optional fields of a user update. Nil means
// "leave unchanged"; the patch maps to one fixed-shape update instead of
// assembling SQL from whichever fields arrived.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Role      *model.Role
	Password  *string
}

func (p *UserPatch) empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Role == nil && p.Password == nil
}

// UpdateUser applies a patch to the user. An empty patch is a
// validation error, as is an unknown role value.
func (s *UserService) UpdateUser(id int, patch *UserPatch) (*model.User, error) {
	if patch.empty() {
		return nil, ErrValidation
	}

	columns := map[string]any{}
	if patch.FirstName != nil {
		columns["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		columns["last_name"] = *patch.LastName
	}
	if patch.Email != nil {
		columns["email"] = *patch.Email
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, ErrValidation
		}
		columns["role"] = *patch.Role
	}
	if patch.Password != nil {
		hashed, err := crypto.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		columns["password"] = hashed
	}

	result := s.db.Model(model.User{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return s.GetUser(id)
}

// DeleteUser removes a user. Deleting the last remaining administrator
// is refused so the panel can never lock itself out.
func (s *UserService) DeleteUser(id int) error {
	user, err := s.GetUser(id)
	if err != nil {
		return err
	}

	if user.Role == model.RoleAdmin {
		var adminCount int64
		err = s.db.Model(model.User{}).Where("role = ?", model.RoleAdmin).Count(&adminCount).Error
		if err != nil {
			return err
		}
		if adminCount <= 1 {
			return ErrLastAdmin
		}
	}

	return s.db.Where("id = ?", id).Delete(model.User{}).Error
}
