package repository

import (
	"context"
	"time"

	"tickerfeed/internal/models"
)

// Feed filters accepted by the historical fetch. The high-risk filter is
// approximated server side from the post's own snapshot; the live overlay
// re-resolves it client side.
const (
	FilterAll      = "all"
	FilterTrending = "trending"
	FilterBullish  = "bullish"
	FilterBearish  = "bearish"
	FilterHighRisk = "high-risk"
)

type Repository interface {
	// Historical feed reads. Offset/limit over a deterministic sort key;
	// callers tolerate boundary duplication under concurrent writes.
	ListFeedPage(ctx context.Context, params FeedPageParams) (FeedPage, error)
	GetPostByID(ctx context.Context, id int64, viewerID string) (*models.Post, error)

	// Post lifecycle.
	InsertPost(ctx context.Context, item *models.Post) error
	SetPostLike(ctx context.Context, postID int64, userID string, liked bool) error
	DeletePostDependents(ctx context.Context, postID int64) error
	DeletePost(ctx context.Context, postID int64) error

	// Scoring pipeline writes and sweep reads.
	UpdatePostAIFields(ctx context.Context, postID int64, score int, signal, risk, summary string) error
	ListUnscoredPosts(ctx context.Context, olderThan time.Time, limit int) ([]models.Post, error)

	// Ticker insights.
	UpsertTickerInsight(ctx context.Context, item *models.TickerInsight) error
	GetTickerInsight(ctx context.Context, ticker string) (*models.TickerInsight, error)
	ListTickerInsights(ctx context.Context, params ListInsightsParams) ([]models.TickerInsight, error)
}

type FeedPageParams struct {
	Page     int
	PageSize int
	Filter   string
	Ticker   string
	ViewerID string
}

type FeedPage struct {
	Posts   []models.Post
	HasMore bool
}

type ListInsightsParams struct {
	Limit   int
	Offset  int
	Risk    *string
	Signal  *string
	OrderBy string
	Asc     *bool
}
