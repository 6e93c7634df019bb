package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tickerfeed/internal/models"
	"tickerfeed/internal/repository"
)

// ScoreSweepService re-enqueues posts the pipeline never scored. The enqueue
// on the creation path is best effort; this sweep is the durability backstop.
// Grace keeps freshly created posts out of the sweep while their first job is
// still in flight.
type ScoreSweepService struct {
	Repo   repository.Repository
	Queue  JobQueue
	Logger *zap.Logger
	Grace  time.Duration
	Batch  int
}

func NewScoreSweepService(repo repository.Repository, queue JobQueue, logger *zap.Logger, grace time.Duration, batch int) *ScoreSweepService {
	if grace <= 0 {
		grace = 15 * time.Minute
	}
	if batch <= 0 {
		batch = 100
	}
	return &ScoreSweepService{Repo: repo, Queue: queue, Logger: logger, Grace: grace, Batch: batch}
}

// SweepOnce enqueues one batch of unscored posts older than the grace window.
// Returns the number of jobs successfully enqueued.
func (s *ScoreSweepService) SweepOnce(ctx context.Context) (int, error) {
	if s == nil || s.Repo == nil || s.Queue == nil {
		return 0, fmt.Errorf("sweep service not initialized")
	}
	cutoff := time.Now().Add(-s.Grace)
	posts, err := s.Repo.ListUnscoredPosts(ctx, cutoff, s.Batch)
	if err != nil {
		return 0, fmt.Errorf("list unscored posts: %w", err)
	}
	enqueued := 0
	for _, p := range posts {
		if err := s.Queue.Enqueue(ctx, models.ScoreJob{PostID: p.ID, Ticker: p.Ticker}); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("sweep enqueue failed", zap.Int64("post_id", p.ID), zap.Error(err))
			}
			continue
		}
		enqueued++
	}
	if s.Logger != nil && len(posts) > 0 {
		s.Logger.Info("score sweep finished",
			zap.Int("candidates", len(posts)), zap.Int("enqueued", enqueued))
	}
	return enqueued, nil
}
