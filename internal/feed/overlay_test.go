package feed

import (
	"testing"

	"tickerfeed/internal/models"
)

func TestOverlayPrecedenceOverPostSnapshot(t *testing.T) {
	o := NewInsightOverlay()
	score := 30
	signal := "sell"
	risk := models.RiskLow
	p := models.Post{ID: 1, Ticker: "AAPL", AIScore: &score, AISignal: &signal, AIRisk: &risk}

	o.Set(models.TickerInsight{Ticker: "AAPL", Score: 85, Signal: "strong_buy", Risk: models.RiskHigh})

	if got := o.ResolveScore(&p); got == nil || *got != 85 {
		t.Fatalf("ResolveScore = %v, want 85", got)
	}
	if got := o.ResolveSignal(&p); got == nil || *got != "strong_buy" {
		t.Fatalf("ResolveSignal = %v", got)
	}
	if got := o.ResolveRisk(&p); got == nil || *got != models.RiskHigh {
		t.Fatalf("ResolveRisk = %v", got)
	}
}

func TestOverlayFallbackToPostFields(t *testing.T) {
	o := NewInsightOverlay()
	score := 42
	p := models.Post{ID: 1, Ticker: "NVDA", AIScore: &score}

	if got := o.ResolveScore(&p); got == nil || *got != 42 {
		t.Fatalf("fallback score = %v, want 42", got)
	}
	if got := o.ResolveSignal(&p); got != nil {
		t.Fatalf("fallback signal = %v, want nil", *got)
	}

	// Removing the insight must re-expose the post snapshot, not leave a hole.
	o.Set(models.TickerInsight{Ticker: "NVDA", Score: 10, Signal: "strong_sell", Risk: models.RiskExtreme})
	o.Delete("NVDA")
	if got := o.ResolveScore(&p); got == nil || *got != 42 {
		t.Fatalf("score after overlay delete = %v, want 42", got)
	}
}

func TestOverlayTickerNormalization(t *testing.T) {
	o := NewInsightOverlay()
	o.Set(models.TickerInsight{Ticker: " aapl ", Score: 70, Signal: "buy", Risk: models.RiskMedium})
	ins, ok := o.Get("AAPL")
	if !ok || ins.Score != 70 {
		t.Fatalf("normalized lookup failed: %+v ok=%v", ins, ok)
	}
	if _, ok := o.Get("aapl"); !ok {
		t.Fatalf("lowercase lookup failed")
	}
}

func TestOverlaySetReplacesWholesale(t *testing.T) {
	o := NewInsightOverlay()
	o.Set(models.TickerInsight{Ticker: "TSLA", Score: 80, Signal: "strong_buy", Risk: models.RiskLow})
	o.Set(models.TickerInsight{Ticker: "TSLA", Score: 20, Signal: "sell", Risk: models.RiskHigh})
	ins, _ := o.Get("TSLA")
	if ins.Score != 20 || ins.Signal != "sell" || ins.Risk != models.RiskHigh {
		t.Fatalf("stale fields survived replace: %+v", ins)
	}
	if o.Len() != 1 {
		t.Fatalf("Len = %d, want 1", o.Len())
	}
}
