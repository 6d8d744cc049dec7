package models

// Tag labels posts; names are unique.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"column:tag;size:100;not null;uniqueIndex" json:"tag"`
}

// City scopes posts geographically; names are unique.
type City struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
}

// TableName keeps the plural irregular form.
func (City) TableName() string {
	return "cities"
}
