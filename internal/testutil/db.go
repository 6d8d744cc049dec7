package testutil

import (
	"testing"
	"time"

	"friendmarket/internal/database"
	"friendmarket/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an in-memory sqlite database with the full schema.
// The pool is pinned to one connection so every query sees the same memory
// database.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// UserOption tweaks a fixture user before it is inserted.
type UserOption func(*models.User)

// WithDeviceToken sets the push registration id.
func WithDeviceToken(token string) UserOption {
	return func(u *models.User) { u.AndroidRegID = token }
}

// WithName sets first and last name.
func WithName(first, last string) UserOption {
	return func(u *models.User) { u.FirstName, u.LastName = first, last }
}

// WithNotificationsDisabled clears enable_notif.
func WithNotificationsDisabled() UserOption {
	return func(u *models.User) { u.EnableNotif = false }
}

// Staff marks the user as staff.
func Staff() UserOption {
	return func(u *models.User) { u.IsStaff = true }
}

// CreateUser inserts an active, notification-enabled user.
func CreateUser(t testing.TB, db *gorm.DB, email string, opts ...UserOption) *models.User {
	t.Helper()
	u := &models.User{
		Email:        email,
		Gender:       models.GenderUnknown,
		ProfilePhoto: models.DefaultProfilePhoto,
		EnableNotif:  true,
		IsActive:     true,
		Password:     "x",
	}
	for _, opt := range opts {
		opt(u)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// CreatePost inserts a post. Posts created in sequence get increasing
// timestamps so ordering assertions are stable.
func CreatePost(t testing.TB, db *gorm.DB, authorID uint, typ models.PostType, title string) *models.Post {
	t.Helper()
	var count int64
	db.Model(&models.Post{}).Count(&count)
	p := &models.Post{
		AuthorID:    authorID,
		TypeContent: typ,
		Title:       title,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(count) * time.Minute),
	}
	if err := db.Omit("Author", "City", "BestNote", "Tags", "Likes", "Follows", "Viewed").Create(p).Error; err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return p
}
