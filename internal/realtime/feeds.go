package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tickerfeed/internal/config"
	"tickerfeed/internal/feed"
	"tickerfeed/internal/models"
)

// Feeds provides the live post and insight streams a feed controller
// subscribes to. Each subscription owns its own connection; a reconnect on
// one view never disturbs another.
type Feeds struct {
	cfg    config.RealtimeConfig
	logger *zap.Logger
}

func NewFeeds(cfg config.RealtimeConfig, logger *zap.Logger) *Feeds {
	return &Feeds{cfg: cfg, logger: logger}
}

func (f *Feeds) SubscribePosts(scope feed.Scope, fn func(feed.ChangeEvent)) feed.Subscription {
	spec := ChangeSpec{Event: "*", Schema: "public", Table: TablePosts}
	if t := normalizeTicker(scope.Ticker); t != "" {
		spec.Filter = "ticker=eq." + t
	}
	return f.newSubscription([]ChangeSpec{spec}, func(env Envelope) {
		if env.Event != "postgres_changes" {
			return
		}
		if ev, ok := DecodePostChange(env.Payload); ok {
			fn(ev)
		}
	})
}

func (f *Feeds) SubscribeInsights(scope feed.Scope, fn func(models.TickerInsight)) feed.Subscription {
	spec := ChangeSpec{Event: "*", Schema: "public", Table: TableInsights}
	if t := normalizeTicker(scope.Ticker); t != "" {
		spec.Filter = "ticker=eq." + t
	}
	return f.newSubscription([]ChangeSpec{spec}, func(env Envelope) {
		if env.Event != "postgres_changes" {
			return
		}
		if ins, ok := DecodeInsightChange(env.Payload); ok {
			fn(ins)
		}
	})
}

func (f *Feeds) newSubscription(specs []ChangeSpec, onMsg func(Envelope)) *subscription {
	stream := NewStream(StreamOptions{
		URL:               f.cfg.URL,
		Specs:             specs,
		HeartbeatInterval: f.cfg.HeartbeatInterval,
		BackoffMin:        f.cfg.BackoffMin,
		BackoffMax:        f.cfg.BackoffMax,
		Logger:            f.logger,
	})
	return &subscription{stream: stream, onMsg: onMsg, logger: f.logger}
}

// subscription runs one Stream until stopped. Start returns immediately;
// deliveries happen on the stream's read goroutine.
type subscription struct {
	stream *Stream
	onMsg  func(Envelope)
	logger *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

func (s *subscription) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("subscription is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("subscription already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true
	go func() {
		err := s.stream.Run(runCtx, s.onMsg)
		if err != nil && !errors.Is(err, context.Canceled) && s.logger != nil {
			s.logger.Warn("realtime subscription ended", zap.Error(err))
		}
	}()
	return nil
}

func (s *subscription) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
