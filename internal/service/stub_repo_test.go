package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"tickerfeed/internal/models"
	"tickerfeed/internal/repository"
)

// stubRepo is an in-memory repository for service tests.
type stubRepo struct {
	mu       sync.Mutex
	nextID   int64
	posts    map[int64]*models.Post
	likes    map[int64]map[string]bool
	insights map[string]models.TickerInsight

	insertErr           error
	deleteDependentsErr error
	deletePostErr       error
	unscored            []models.Post
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		nextID:   1,
		posts:    map[int64]*models.Post{},
		likes:    map[int64]map[string]bool{},
		insights: map[string]models.TickerInsight{},
	}
}

func (r *stubRepo) ListFeedPage(ctx context.Context, params repository.FeedPageParams) (repository.FeedPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, *p)
	}
	return repository.FeedPage{Posts: out, HasMore: false}, nil
}

func (r *stubRepo) GetPostByID(ctx context.Context, id int64, viewerID string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, errors.New("post not found")
	}
	cp := *p
	cp.HasLiked = r.likes[id][viewerID]
	return &cp, nil
}

func (r *stubRepo) InsertPost(ctx context.Context, item *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	item.ID = r.nextID
	r.nextID++
	item.CreatedAt = time.Now()
	cp := *item
	r.posts[item.ID] = &cp
	return nil
}

func (r *stubRepo) SetPostLike(ctx context.Context, postID int64, userID string, liked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return errors.New("post not found")
	}
	byUser := r.likes[postID]
	if byUser == nil {
		byUser = map[string]bool{}
		r.likes[postID] = byUser
	}
	if byUser[userID] == liked {
		return nil
	}
	byUser[userID] = liked
	if liked {
		p.Likes++
	} else if p.Likes > 0 {
		p.Likes--
	}
	return nil
}

func (r *stubRepo) DeletePostDependents(ctx context.Context, postID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteDependentsErr != nil {
		return r.deleteDependentsErr
	}
	delete(r.likes, postID)
	return nil
}

func (r *stubRepo) DeletePost(ctx context.Context, postID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deletePostErr != nil {
		return r.deletePostErr
	}
	delete(r.posts, postID)
	return nil
}

func (r *stubRepo) UpdatePostAIFields(ctx context.Context, postID int64, score int, signal, risk, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return errors.New("post not found")
	}
	if p.AIScore != nil {
		return nil
	}
	p.AIScore = &score
	p.AISignal = &signal
	p.AIRisk = &risk
	p.AISummary = &summary
	return nil
}

func (r *stubRepo) ListUnscoredPosts(ctx context.Context, olderThan time.Time, limit int) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.unscored) > limit {
		return r.unscored[:limit], nil
	}
	return r.unscored, nil
}

func (r *stubRepo) UpsertTickerInsight(ctx context.Context, item *models.TickerInsight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insights[item.Ticker] = *item
	return nil
}

func (r *stubRepo) GetTickerInsight(ctx context.Context, ticker string) (*models.TickerInsight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ins, ok := r.insights[ticker]
	if !ok {
		return nil, errors.New("insight not found")
	}
	return &ins, nil
}

func (r *stubRepo) ListTickerInsights(ctx context.Context, params repository.ListInsightsParams) ([]models.TickerInsight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.TickerInsight, 0, len(r.insights))
	for _, ins := range r.insights {
		out = append(out, ins)
	}
	return out, nil
}

// stubQueue records enqueued jobs and optionally fails.
type stubQueue struct {
	mu   sync.Mutex
	jobs []models.ScoreJob
	err  error
}

func (q *stubQueue) Enqueue(ctx context.Context, job models.ScoreJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *stubQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
