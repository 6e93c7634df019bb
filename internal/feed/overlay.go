package feed

import (
	"strings"
	"sync"

	"tickerfeed/internal/models"
)

// InsightOverlay holds the latest live per-ticker insight, independent of any
// post. One insight update refreshes every visible post on that ticker at
// render time; the post rows are never rewritten. The overlay is created with
// its controller and destroyed with it, never shared between views.
type InsightOverlay struct {
	mu       sync.RWMutex
	byTicker map[string]models.TickerInsight
}

func NewInsightOverlay() *InsightOverlay {
	return &InsightOverlay{byTicker: map[string]models.TickerInsight{}}
}

// Set replaces the insight for a ticker wholesale. The pipeline never emits
// partial insight rows.
func (o *InsightOverlay) Set(ins models.TickerInsight) {
	if o == nil {
		return
	}
	ticker := strings.ToUpper(strings.TrimSpace(ins.Ticker))
	if ticker == "" {
		return
	}
	ins.Ticker = ticker
	o.mu.Lock()
	o.byTicker[ticker] = ins
	o.mu.Unlock()
}

func (o *InsightOverlay) Get(ticker string) (models.TickerInsight, bool) {
	if o == nil {
		return models.TickerInsight{}, false
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	ins, ok := o.byTicker[strings.ToUpper(strings.TrimSpace(ticker))]
	return ins, ok
}

func (o *InsightOverlay) Delete(ticker string) {
	if o == nil {
		return
	}
	o.mu.Lock()
	delete(o.byTicker, strings.ToUpper(strings.TrimSpace(ticker)))
	o.mu.Unlock()
}

func (o *InsightOverlay) Len() int {
	if o == nil {
		return 0
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.byTicker)
}

func (o *InsightOverlay) Reset() {
	if o == nil {
		return
	}
	o.mu.Lock()
	o.byTicker = map[string]models.TickerInsight{}
	o.mu.Unlock()
}

// ResolveScore prefers the live insight over the post's own snapshot. The
// fallback is mandatory: a post's AI fields may stay null indefinitely on
// low-traffic tickers while a community-wide insight exists, and vice versa.
func (o *InsightOverlay) ResolveScore(p *models.Post) *int {
	if p == nil {
		return nil
	}
	if ins, ok := o.Get(p.Ticker); ok {
		score := ins.Score
		return &score
	}
	return p.AIScore
}

func (o *InsightOverlay) ResolveSignal(p *models.Post) *string {
	if p == nil {
		return nil
	}
	if ins, ok := o.Get(p.Ticker); ok {
		signal := ins.Signal
		return &signal
	}
	return p.AISignal
}

func (o *InsightOverlay) ResolveRisk(p *models.Post) *string {
	if p == nil {
		return nil
	}
	if ins, ok := o.Get(p.Ticker); ok {
		risk := ins.Risk
		return &risk
	}
	return p.AIRisk
}
