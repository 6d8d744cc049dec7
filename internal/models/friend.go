package models

import "time"

// Friend is a directed edge: Author follows Target when Follow is set.
type Friend struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_friend_pair" json:"author_id"`
	FriendID  uint      `gorm:"not null;uniqueIndex:idx_friend_pair;index" json:"friend_id"`
	Follow    bool      `gorm:"not null" json:"follow"`
	CreatedAt time.Time `json:"created"`

	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Target User `gorm:"foreignKey:FriendID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Friend) TableName() string {
	return "friends"
}

// FriendListing is a user row annotated with whether the viewer follows them.
type FriendListing struct {
	User
	IsFollow bool `gorm:"column:is_follow" json:"isFollow"`
}
