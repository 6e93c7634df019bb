package models

import "time"

// PostLike is one viewer's reaction to a post. Deleted together with the post
// as a dependent record.
type PostLike struct {
	PostID    int64     `gorm:"primaryKey" json:"post_id"`
	UserID    string    `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
}

func (PostLike) TableName() string {
	return "post_likes"
}
