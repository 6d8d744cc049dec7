package database

import "friendmarket/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Join tables for tags, likes, follows and views are derived from Post.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Friend{},
		&models.City{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
	}
}
