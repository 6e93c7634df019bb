package models

import "time"

// Comment rows exist only as dependents of a post here; threads themselves
// are handled by the presentation backend, not this module.
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    int64     `gorm:"not null;index" json:"post_id"`
	AuthorID  string    `gorm:"type:varchar(64);not null" json:"author_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}
