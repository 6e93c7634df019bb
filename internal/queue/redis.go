package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tickerfeed/internal/config"
	"tickerfeed/internal/models"
)

// ScoreQueue hands score jobs to the AI pipeline over a Redis list. Producers
// push after the post row is durably written; the pipeline pops from the other
// end. Enqueue is best effort by design, the sweep catches what it drops.
type ScoreQueue struct {
	client  *redis.Client
	key     string
	timeout time.Duration
	logger  *zap.Logger
}

func New(cfg config.QueueConfig, logger *zap.Logger) (*ScoreQueue, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	key := cfg.ScoreJobsKey
	if key == "" {
		key = "score:jobs"
	}
	timeout := cfg.EnqueueTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ScoreQueue{
		client:  redis.NewClient(opts),
		key:     key,
		timeout: timeout,
		logger:  logger,
	}, nil
}

func (q *ScoreQueue) Ping(ctx context.Context) error {
	if q == nil || q.client == nil {
		return fmt.Errorf("queue not initialized")
	}
	return q.client.Ping(ctx).Err()
}

// Enqueue pushes one job with a bounded timeout so a slow broker never stalls
// the post-creation path.
func (q *ScoreQueue) Enqueue(ctx context.Context, job models.ScoreJob) error {
	if q == nil || q.client == nil {
		return fmt.Errorf("queue not initialized")
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue score job: %w", err)
	}
	return nil
}

// Dequeue blocks up to wait for the next job. The second return is false on
// timeout with no job available.
func (q *ScoreQueue) Dequeue(ctx context.Context, wait time.Duration) (models.ScoreJob, bool, error) {
	if q == nil || q.client == nil {
		return models.ScoreJob{}, false, fmt.Errorf("queue not initialized")
	}
	res, err := q.client.BRPop(ctx, wait, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.ScoreJob{}, false, nil
		}
		return models.ScoreJob{}, false, err
	}
	// BRPop returns [key, value].
	if len(res) != 2 {
		return models.ScoreJob{}, false, fmt.Errorf("unexpected brpop reply: %d items", len(res))
	}
	var job models.ScoreJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		if q.logger != nil {
			q.logger.Warn("dropping malformed score job", zap.Error(err))
		}
		return models.ScoreJob{}, false, nil
	}
	return job, true, nil
}

// Depth reports the number of jobs waiting; used by readiness reporting.
func (q *ScoreQueue) Depth(ctx context.Context) (int64, error) {
	if q == nil || q.client == nil {
		return 0, fmt.Errorf("queue not initialized")
	}
	return q.client.LLen(ctx, q.key).Result()
}

func (q *ScoreQueue) Close() error {
	if q == nil || q.client == nil {
		return nil
	}
	return q.client.Close()
}
