// Package entity defines the JSON wire types shared by the controllers.
package entity

import (
	"time"

	"github.com/evergreenbank/panel/database/model"
)

// Msg is the generic response envelope for simple status messages.
type Msg struct {
	Message string `json:"message"`
}

// SetupRequiredMsg marks a request rejected by the setup gate so clients
// can redirect to the setup wizard instead of the login page.
type SetupRequiredMsg struct {
	Message       string `json:"message"`
	SetupRequired bool   `json:"setupRequired"`
}

// UserInfo is the user shape returned to clients; it never carries the
// password digest.
type UserInfo struct {
	Id        int        `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
}

// SessionInfo is returned by login and session checks.
type SessionInfo struct {
	Message        string   `json:"message"`
	User           UserInfo `json:"user"`
	BankName       string   `json:"bankName"`
	SessionTimeout int      `json:"sessionTimeout"`
}

// SetupStatus reports whether the one-time setup wizard has run.
type SetupStatus struct {
	SetupComplete bool `json:"setupComplete"`
}

// SetupResult carries the new administrator's id after a successful
// setup completion.
type SetupResult struct {
	Message string `json:"message"`
	AdminId int    `json:"adminId"`
}

// SettingKV is a single settings row on the wire.
type SettingKV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UserListItem is the admin listing shape, including timestamps.
type UserListItem struct {
	Id        int        `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      model.Role `json:"role"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewUserInfo builds the wire shape from a user row.
func NewUserInfo(u *model.User) UserInfo {
	return UserInfo{
		Id:        u.Id,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// NewUserListItem builds the listing shape from a user row.
func NewUserListItem(u *model.User) UserListItem {
	return UserListItem{
		Id:        u.Id,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}
