package feed

import (
	"testing"

	"tickerfeed/internal/models"
)

func TestParseFilter(t *testing.T) {
	if got := ParseFilter(" Trending "); got != FilterTrending {
		t.Fatalf("ParseFilter trending = %q", got)
	}
	if got := ParseFilter("nonsense"); got != FilterAll {
		t.Fatalf("unknown filter = %q, want all", got)
	}
	if got := ParseFilter("high-risk"); got != FilterHighRisk {
		t.Fatalf("ParseFilter high-risk = %q", got)
	}
}

func TestDeriveTrendingStableOnTies(t *testing.T) {
	snap := []models.Post{
		{ID: 1, Ticker: "A", Likes: 3, Comments: 2},
		{ID: 2, Ticker: "B", Likes: 4, Comments: 1},
		{ID: 3, Ticker: "C", Likes: 9},
	}
	out := Derive(snap, NewInsightOverlay(), FilterTrending)
	// 1 and 2 tie at 5 engagement; arrival order must hold between them.
	want := []int64{3, 1, 2}
	for i, id := range want {
		if out[i].ID != id {
			t.Fatalf("trending order: got %d at %d, want %d", out[i].ID, i, id)
		}
	}
}

func TestDeriveSentimentFilters(t *testing.T) {
	snap := []models.Post{
		{ID: 1, Sentiment: models.SentimentBullish},
		{ID: 2, Sentiment: models.SentimentBearish},
		{ID: 3, Sentiment: models.SentimentNeutral},
	}
	bull := Derive(snap, NewInsightOverlay(), FilterBullish)
	if len(bull) != 1 || bull[0].ID != 1 {
		t.Fatalf("bullish = %+v", bull)
	}
	bear := Derive(snap, NewInsightOverlay(), FilterBearish)
	if len(bear) != 1 || bear[0].ID != 2 {
		t.Fatalf("bearish = %+v", bear)
	}
}

func TestDeriveHighRiskUsesOverlayThenFallback(t *testing.T) {
	extreme := models.RiskExtreme
	low := models.RiskLow
	snap := []models.Post{
		{ID: 1, Ticker: "AAPL", AIRisk: &low},
		{ID: 2, Ticker: "MEME", AIRisk: &extreme},
		{ID: 3, Ticker: "NVDA"},
	}
	o := NewInsightOverlay()
	// Live insight flips AAPL to high risk; MEME qualifies from its own
	// snapshot; NVDA has no risk anywhere.
	o.Set(models.TickerInsight{Ticker: "AAPL", Score: 15, Signal: "strong_sell", Risk: models.RiskHigh})

	out := Derive(snap, o, FilterHighRisk)
	if len(out) != 2 || out[0].ID != 1 || out[1].ID != 2 {
		t.Fatalf("high-risk = %+v", out)
	}
}

func TestDeriveAllKeepsOrder(t *testing.T) {
	snap := []models.Post{{ID: 9}, {ID: 4}, {ID: 7}}
	out := Derive(snap, NewInsightOverlay(), FilterAll)
	if len(out) != 3 || out[0].ID != 9 || out[2].ID != 7 {
		t.Fatalf("all order changed: %+v", out)
	}
}
