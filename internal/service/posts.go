package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tickerfeed/internal/feed"
	"tickerfeed/internal/models"
	"tickerfeed/internal/repository"
)

// JobQueue is the slice of the score queue the post path needs.
type JobQueue interface {
	Enqueue(ctx context.Context, job models.ScoreJob) error
}

// PostService owns the post lifecycle: durable creation, the score-job
// handoff, likes, and the two-step delete.
type PostService struct {
	Repo   repository.Repository
	Queue  JobQueue
	Logger *zap.Logger
}

func NewPostService(repo repository.Repository, queue JobQueue, logger *zap.Logger) *PostService {
	return &PostService{Repo: repo, Queue: queue, Logger: logger}
}

type CreatePostInput struct {
	Ticker       string
	Body         string
	Sentiment    string
	AuthorID     string
	AuthorName   string
	AuthorAvatar string
}

// CreatePost writes the post durably, then hands a score job to the pipeline.
// The enqueue is best effort: a queue outage must not fail the creation, the
// periodic sweep re-enqueues whatever was dropped.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if s == nil || s.Repo == nil {
		return nil, fmt.Errorf("post service not initialized")
	}
	ticker := strings.ToUpper(strings.TrimSpace(in.Ticker))
	body := strings.TrimSpace(in.Body)
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if body == "" {
		return nil, fmt.Errorf("body is required")
	}
	sentiment := in.Sentiment
	switch sentiment {
	case models.SentimentBullish, models.SentimentBearish, models.SentimentNeutral:
	case "":
		sentiment = models.SentimentNeutral
	default:
		return nil, fmt.Errorf("invalid sentiment: %s", in.Sentiment)
	}

	post := &models.Post{
		Ticker:       ticker,
		Body:         body,
		Sentiment:    sentiment,
		AuthorID:     in.AuthorID,
		AuthorName:   in.AuthorName,
		AuthorAvatar: in.AuthorAvatar,
	}
	if err := s.Repo.InsertPost(ctx, post); err != nil {
		return nil, err
	}

	if s.Queue != nil {
		if err := s.Queue.Enqueue(ctx, models.ScoreJob{PostID: post.ID, Ticker: post.Ticker}); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("score job enqueue failed, sweep will retry",
					zap.Int64("post_id", post.ID), zap.Error(err))
			}
		}
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id int64, viewerID string) (*models.Post, error) {
	if s == nil || s.Repo == nil {
		return nil, fmt.Errorf("post service not initialized")
	}
	return s.Repo.GetPostByID(ctx, id, viewerID)
}

func (s *PostService) ListFeedPage(ctx context.Context, params repository.FeedPageParams) (repository.FeedPage, error) {
	if s == nil || s.Repo == nil {
		return repository.FeedPage{}, fmt.Errorf("post service not initialized")
	}
	return s.Repo.ListFeedPage(ctx, params)
}

// SetLike records or removes a viewer's like. Idempotent on the repository
// side; double delivery does not double count.
func (s *PostService) SetLike(ctx context.Context, postID int64, userID string, liked bool) error {
	if s == nil || s.Repo == nil {
		return fmt.Errorf("post service not initialized")
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	return s.Repo.SetPostLike(ctx, postID, userID, liked)
}

// DeletePost removes a post in two steps: dependent rows first, then the
// post row. A failure after the first step is reported as
// feed.ErrPartialDelete so callers keep the post hidden rather than
// resurrecting a gutted row.
func (s *PostService) DeletePost(ctx context.Context, postID int64) error {
	if s == nil || s.Repo == nil {
		return fmt.Errorf("post service not initialized")
	}
	if err := s.Repo.DeletePostDependents(ctx, postID); err != nil {
		return fmt.Errorf("delete post dependents: %w", err)
	}
	if err := s.Repo.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("%w: %v", feed.ErrPartialDelete, err)
	}
	return nil
}

// Fetcher adapts the service to the feed controller's page contract.
type Fetcher struct {
	svc *PostService
}

func (s *PostService) Fetcher() *Fetcher {
	return &Fetcher{svc: s}
}

func (f *Fetcher) FetchPage(ctx context.Context, req feed.PageRequest) (feed.PageResult, error) {
	page, err := f.svc.ListFeedPage(ctx, repository.FeedPageParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Filter:   string(req.Filter),
		Ticker:   req.Ticker,
		ViewerID: req.ViewerID,
	})
	if err != nil {
		return feed.PageResult{}, err
	}
	return feed.PageResult{Posts: page.Posts, HasMore: page.HasMore}, nil
}

// viewerRemote binds a viewer identity onto the feed's edit confirmations.
type viewerRemote struct {
	svc      *PostService
	viewerID string
}

// RemoteForViewer returns the remote the optimistic mutator confirms edits
// against, bound to one viewer.
func (s *PostService) RemoteForViewer(viewerID string) feed.Remote {
	return &viewerRemote{svc: s, viewerID: viewerID}
}

func (r *viewerRemote) SetLike(ctx context.Context, postID int64, liked bool) error {
	return r.svc.SetLike(ctx, postID, r.viewerID, liked)
}

func (r *viewerRemote) DeletePost(ctx context.Context, postID int64) error {
	return r.svc.DeletePost(ctx, postID)
}
