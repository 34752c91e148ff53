// Package model defines the database models for the bank admin panel.
package model

import "time"

// Role is the closed set of user roles. Keeping it a named type makes
// the role checks exhaustive instead of free-form string comparisons.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	Id        int        `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string     `json:"username" gorm:"uniqueIndex;not null"`
	Email     string     `json:"email" gorm:"uniqueIndex;not null"`
	Password  string     `json:"-" gorm:"not null"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      Role       `json:"role" gorm:"not null;default:user"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Session is one authenticated client instance. The opaque token is the
// primary key; a session is valid iff the row exists and ExpiresAt is in
// the future. Expiry slides forward on every successful validation.
type Session struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	UserId    int       `json:"userId" gorm:"index;not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

type Setting struct {
	Id        int       `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Key       string    `json:"key" form:"key" gorm:"uniqueIndex;not null"`
	Value     string    `json:"value" form:"value" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt"`
}
