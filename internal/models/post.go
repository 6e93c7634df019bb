package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Sentiment is the author-declared stance on a ticker. It is set at creation
// time by the author and is independent of the AI signal computed later.
const (
	SentimentBullish = "Bullish"
	SentimentBearish = "Bearish"
	SentimentNeutral = "Neutral"
)

// Post is a user-authored investment note attached to a ticker. Author fields
// are denormalized at creation time and immutable thereafter. The AI fields
// are nullable and set once by the scoring pipeline; they move from absent to
// present and never revert.
type Post struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Ticker string `gorm:"type:varchar(16);not null;index" json:"ticker"`
	Body   string `gorm:"type:text;not null" json:"body"`

	AuthorID     string `gorm:"type:varchar(64);not null;index" json:"author_id"`
	AuthorName   string `gorm:"type:varchar(100);not null" json:"author_name"`
	AuthorAvatar string `gorm:"type:varchar(255)" json:"author_avatar"`

	Sentiment string `gorm:"type:varchar(10);not null;default:Neutral" json:"sentiment"`

	AIScore   *int    `gorm:"" json:"ai_score"`
	AISignal  *string `gorm:"type:varchar(20)" json:"ai_signal"`
	AIRisk    *string `gorm:"type:varchar(10)" json:"ai_risk"`
	AISummary *string `gorm:"type:text" json:"ai_summary"`

	Likes    int `gorm:"not null;default:0" json:"likes"`
	Comments int `gorm:"not null;default:0" json:"comments"`

	// HasLiked is per-viewer state joined from post_likes; never persisted on
	// the post row itself.
	HasLiked bool `gorm:"-" json:"has_liked"`

	// PriceHistory is an optional fixed-size series of PricePoint, kept only
	// for display.
	PriceHistory datatypes.JSON `gorm:"type:jsonb" json:"price_history,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`

	// Version increments on every row write; used by the feed core to make
	// redelivered change events idempotent.
	Version int64 `gorm:"not null;default:0" json:"version"`
}

func (Post) TableName() string {
	return "posts"
}

// Scored reports whether the scoring pipeline has filled the AI fields.
func (p *Post) Scored() bool {
	return p != nil && p.AIScore != nil
}

// PricePoint is one sample of the display-only price series.
type PricePoint struct {
	TS    time.Time       `json:"ts"`
	Price decimal.Decimal `json:"price"`
}
