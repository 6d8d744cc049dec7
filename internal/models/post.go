package models

import "time"

// PostType distinguishes questions from recommendations.
type PostType int

const (
	PostTypeQuestion PostType = 0
	PostTypePositive PostType = 1
	PostTypeNegative PostType = 2
)

// Valid reports whether t is a known post type.
func (t PostType) Valid() bool {
	return t >= PostTypeQuestion && t <= PostTypeNegative
}

// IsNote reports whether posts of this type can be attached to a question.
func (t PostType) IsNote() bool {
	return t == PostTypePositive || t == PostTypeNegative
}

// MaxTitleLength bounds Post.Title.
const MaxTitleLength = 100

// Post is a question or a recommendation. Recommendations attached to a
// question through a Comment are called notes.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	TypeContent PostType  `gorm:"column:type;not null;index" json:"typeContent"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"size:255" json:"image"`
	CityID      *uint     `gorm:"index" json:"-"`
	City        *City     `gorm:"foreignKey:CityID;constraint:OnDelete:SET NULL" json:"-"`
	BestNoteID  *uint     `gorm:"index" json:"-"`
	BestNote    *Post     `gorm:"foreignKey:BestNoteID;constraint:OnDelete:SET NULL" json:"-"`
	Tags        []Tag     `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE" json:"-"`
	Likes       []User    `gorm:"many2many:post_likes;constraint:OnDelete:CASCADE" json:"-"`
	Follows     []User    `gorm:"many2many:post_follows;constraint:OnDelete:CASCADE" json:"-"`
	Viewed      []User    `gorm:"many2many:post_views;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `gorm:"index" json:"created"`
	UpdatedAt   time.Time `json:"-"`

	// Computed per viewer at query time, never persisted.
	CountLike    int  `gorm:"->;-:migration" json:"countLike"`
	IsLike       bool `gorm:"->;-:migration" json:"isLike"`
	CountComment int  `gorm:"column:count_comnt;->;-:migration" json:"countComnt"`
	IsFollow     bool `gorm:"->;-:migration" json:"isFollow"`
}

// TagNames lists the names of the loaded tags.
func (p *Post) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

// CityName returns the loaded city name or "" when unset.
func (p *Post) CityName() string {
	if p.City == nil {
		return ""
	}
	return p.City.Name
}
