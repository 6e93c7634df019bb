package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tickerfeed/internal/models"
	"tickerfeed/internal/repository"
)

// InsightService reads and writes the per-ticker insight rows the scoring
// pipeline maintains.
type InsightService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

func NewInsightService(repo repository.Repository, logger *zap.Logger) *InsightService {
	return &InsightService{Repo: repo, Logger: logger}
}

func (s *InsightService) Get(ctx context.Context, ticker string) (*models.TickerInsight, error) {
	if s == nil || s.Repo == nil {
		return nil, fmt.Errorf("insight service not initialized")
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	return s.Repo.GetTickerInsight(ctx, ticker)
}

func (s *InsightService) List(ctx context.Context, params repository.ListInsightsParams) ([]models.TickerInsight, error) {
	if s == nil || s.Repo == nil {
		return nil, fmt.Errorf("insight service not initialized")
	}
	return s.Repo.ListTickerInsights(ctx, params)
}

// Publish replaces a ticker's insight wholesale. The signal label is derived
// from the score when the pipeline omits it, so a row never lands half-filled.
func (s *InsightService) Publish(ctx context.Context, item *models.TickerInsight) error {
	if s == nil || s.Repo == nil {
		return fmt.Errorf("insight service not initialized")
	}
	if item == nil {
		return fmt.Errorf("insight is nil")
	}
	item.Ticker = strings.ToUpper(strings.TrimSpace(item.Ticker))
	if item.Ticker == "" {
		return fmt.Errorf("ticker is required")
	}
	if item.Score < 0 || item.Score > 100 {
		return fmt.Errorf("score out of range: %d", item.Score)
	}
	if item.Signal == "" {
		item.Signal = models.SignalLabel(item.Score)
	}
	if err := s.Repo.UpsertTickerInsight(ctx, item); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("ticker insight published",
			zap.String("ticker", item.Ticker), zap.Int("score", item.Score), zap.String("risk", item.Risk))
	}
	return nil
}
