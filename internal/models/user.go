// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// Gender is the single-letter gender code stored on a profile.
type Gender string

const (
	GenderFemale  Gender = "F"
	GenderMale    Gender = "M"
	GenderUnknown Gender = "U"
)

// Valid reports whether g is one of the known codes.
func (g Gender) Valid() bool {
	switch g {
	case GenderFemale, GenderMale, GenderUnknown:
		return true
	}
	return false
}

// DefaultProfilePhoto is assigned to accounts that never uploaded a photo.
const DefaultProfilePhoto = "profile_photos/default.png"

// User is a Friendmarket account. Email is the login identity.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Username     string     `gorm:"size:150" json:"username"`
	FirstName    string     `gorm:"size:30" json:"first_name"`
	LastName     string     `gorm:"size:150" json:"last_name"`
	Phone        string     `gorm:"size:30" json:"phone"`
	Birthday     *time.Time `gorm:"type:date" json:"birthday"`
	Gender       Gender     `gorm:"size:1;not null;default:U" json:"gender"`
	ProfilePhoto string     `gorm:"size:255;not null;default:profile_photos/default.png" json:"profile_photo"`
	EnableNotif  bool       `gorm:"not null" json:"enable_notif"`
	AndroidRegID string     `gorm:"column:android_regid;size:255" json:"-"`
	IsStaff      bool       `gorm:"not null;index" json:"-"`
	IsActive     bool       `gorm:"not null" json:"-"`
	Password     string     `gorm:"not null" json:"-"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created"`
	UpdatedAt    time.Time  `json:"-"`
}

// FullName returns "first last", falling back to the first name and then the email.
func (u *User) FullName() string {
	first := strings.TrimSpace(u.FirstName)
	last := strings.TrimSpace(u.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return u.Email
	}
}

// SplitName splits a display name on the first run of whitespace into
// first and last name.
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	first = fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), first))
	return first, rest
}

// HasDeviceToken reports whether push notifications can reach the user.
func (u *User) HasDeviceToken() bool {
	return strings.TrimSpace(u.AndroidRegID) != ""
}
