package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tickerfeed/internal/models"
	"tickerfeed/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- feed reads -------------------------------------------------------------

func (s *Store) ListFeedPage(ctx context.Context, params repository.FeedPageParams) (repository.FeedPage, error) {
	if s == nil || s.db == nil {
		return repository.FeedPage{}, nil
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	page := params.Page
	if page < 0 {
		page = 0
	}

	query := s.db.WithContext(ctx).Model(&models.Post{})
	if strings.TrimSpace(params.Ticker) != "" {
		query = query.Where("ticker = ?", strings.ToUpper(strings.TrimSpace(params.Ticker)))
	}
	switch params.Filter {
	case repository.FilterBullish:
		query = query.Where("sentiment = ?", models.SentimentBullish)
	case repository.FilterTrending:
		// handled by the sort key below
	case repository.FilterBearish:
		query = query.Where("sentiment = ?", models.SentimentBearish)
	case repository.FilterHighRisk:
		query = query.Where("ai_risk IN ?", []string{models.RiskHigh, models.RiskExtreme})
	}
	if params.Filter == repository.FilterTrending {
		query = query.Order("(likes + comments) DESC").Order("created_at DESC").Order("id DESC")
	} else {
		query = query.Order("created_at DESC").Order("id DESC")
	}

	// Fetch one extra row to determine the remainder without a count query.
	var items []models.Post
	if err := query.Limit(pageSize + 1).Offset(page * pageSize).Find(&items).Error; err != nil {
		return repository.FeedPage{}, err
	}
	hasMore := len(items) > pageSize
	if hasMore {
		items = items[:pageSize]
	}
	if err := s.fillHasLiked(ctx, items, params.ViewerID); err != nil {
		return repository.FeedPage{}, err
	}
	return repository.FeedPage{Posts: items, HasMore: hasMore}, nil
}

func (s *Store) fillHasLiked(ctx context.Context, items []models.Post, viewerID string) error {
	if viewerID == "" || len(items) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].ID)
	}
	var likes []models.PostLike
	if err := s.db.WithContext(ctx).
		Where("post_id IN ?", ids).
		Where("user_id = ?", viewerID).
		Find(&likes).Error; err != nil {
		return err
	}
	liked := make(map[int64]struct{}, len(likes))
	for _, l := range likes {
		liked[l.PostID] = struct{}{}
	}
	for i := range items {
		_, ok := liked[items[i].ID]
		items[i].HasLiked = ok
	}
	return nil
}

func (s *Store) GetPostByID(ctx context.Context, id int64, viewerID string) (*models.Post, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Post
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	items := []models.Post{item}
	if err := s.fillHasLiked(ctx, items, viewerID); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// --- post lifecycle ---------------------------------------------------------

func (s *Store) InsertPost(ctx context.Context, item *models.Post) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.Ticker = strings.ToUpper(strings.TrimSpace(item.Ticker))
	return s.db.WithContext(ctx).Create(item).Error
}

// SetPostLike records the viewer's reaction and adjusts the counter in one
// transaction. Re-applying the same state is a no-op so retried confirmations
// cannot double count.
func (s *Store) SetPostLike(ctx context.Context, postID int64, userID string, liked bool) error {
	if s == nil || s.db == nil || userID == "" {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if liked {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.PostLike{PostID: postID, UserID: userID})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			return tx.Model(&models.Post{}).
				Where("id = ?", postID).
				Updates(map[string]any{
					"likes":   gorm.Expr("likes + 1"),
					"version": gorm.Expr("version + 1"),
				}).Error
		}
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&models.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Post{}).
			Where("id = ? AND likes > 0", postID).
			Updates(map[string]any{
				"likes":   gorm.Expr("likes - 1"),
				"version": gorm.Expr("version + 1"),
			}).Error
	})
}

func (s *Store) DeletePostDependents(ctx context.Context, postID int64) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		return tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error
	})
}

func (s *Store) DeletePost(ctx context.Context, postID int64) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", postID).Error
}

// --- scoring pipeline -------------------------------------------------------

// UpdatePostAIFields fills the AI columns exactly once. The guard on ai_score
// keeps the transition monotonic: a second pipeline pass for the same post
// changes nothing.
func (s *Store) UpdatePostAIFields(ctx context.Context, postID int64, score int, signal, risk, summary string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND ai_score IS NULL", postID).
		Updates(map[string]any{
			"ai_score":   score,
			"ai_signal":  signal,
			"ai_risk":    risk,
			"ai_summary": summary,
			"version":    gorm.Expr("version + 1"),
		}).Error
}

func (s *Store) ListUnscoredPosts(ctx context.Context, olderThan time.Time, limit int) ([]models.Post, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	var items []models.Post
	query := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("ai_score IS NULL")
	if !olderThan.IsZero() {
		query = query.Where("created_at < ?", olderThan)
	}
	if err := query.Order("created_at ASC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- ticker insights --------------------------------------------------------

func (s *Store) UpsertTickerInsight(ctx context.Context, item *models.TickerInsight) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.Ticker = strings.ToUpper(strings.TrimSpace(item.Ticker))
	if item.Ticker == "" {
		return nil
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ticker"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"score",
			"signal",
			"risk",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetTickerInsight(ctx context.Context, ticker string) (*models.TickerInsight, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.TickerInsight
	err := s.db.WithContext(ctx).
		First(&item, "ticker = ?", strings.ToUpper(strings.TrimSpace(ticker))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListTickerInsights(ctx context.Context, params repository.ListInsightsParams) ([]models.TickerInsight, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.TickerInsight{})
	if params.Risk != nil && strings.TrimSpace(*params.Risk) != "" {
		query = query.Where("risk = ?", strings.TrimSpace(*params.Risk))
	}
	if params.Signal != nil && strings.TrimSpace(*params.Signal) != "" {
		query = query.Where("signal = ?", strings.TrimSpace(*params.Signal))
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "ticker")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.TickerInsight
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	col := strings.TrimSpace(orderBy)
	switch col {
	case "ticker", "score", "risk", "updated_at":
	default:
		col = fallback
	}
	dir := "asc"
	if asc != nil && !*asc {
		dir = "desc"
	}
	return query.Order(col + " " + dir)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
