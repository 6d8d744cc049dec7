package models

import "time"

// Comment belongs to a post. A comment carrying a Note links a
// recommendation to a question; ParentID and ReplyToID thread replies.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Text      string    `gorm:"column:comment;type:text" json:"comment"`
	NoteID    *uint     `gorm:"index" json:"-"`
	Note      *Post     `gorm:"foreignKey:NoteID;constraint:OnDelete:CASCADE" json:"-"`
	ParentID  *uint     `gorm:"index" json:"parent"`
	Parent    *Comment  `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL" json:"-"`
	ReplyToID *uint     `json:"-"`
	ReplyTo   *User     `gorm:"foreignKey:ReplyToID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created"`
	UpdatedAt time.Time `json:"-"`
}
