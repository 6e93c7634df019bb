package feed

import (
	"testing"

	"tickerfeed/internal/models"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestMergerInsertIgnoresDuplicate(t *testing.T) {
	s := NewPostStore()
	m := &Merger{}
	p := mkPost(1, "AAPL")
	p.Version = 1

	m.Apply(ChangeEvent{Op: OpInsert, ID: 1, Post: &p}, s)
	m.Apply(ChangeEvent{Op: OpInsert, ID: 1, Post: &p}, s)
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	if s.Version(1) != 1 {
		t.Fatalf("Version = %d, want 1", s.Version(1))
	}
}

func TestMergerUpdateUnknownPostIgnored(t *testing.T) {
	s := NewPostStore()
	m := &Merger{}
	m.Apply(ChangeEvent{Op: OpUpdate, ID: 99, Patch: &PostPatch{Body: strPtr("x")}}, s)
	if s.Len() != 0 {
		t.Fatalf("update of unknown post changed the store")
	}
}

func TestMergerUpdateRedeliveryIsNoop(t *testing.T) {
	s := NewPostStore()
	m := &Merger{}
	s.Prepend(mkPost(1, "AAPL"))
	s.SetVersion(1, 3)

	m.Apply(ChangeEvent{Op: OpUpdate, ID: 1, Patch: &PostPatch{Version: 3, Body: strPtr("late")}}, s)
	if p, _ := s.Get(1); p.Body != "note" {
		t.Fatalf("redelivered event was applied")
	}

	m.Apply(ChangeEvent{Op: OpUpdate, ID: 1, Patch: &PostPatch{Version: 4, Body: strPtr("fresh")}}, s)
	if p, _ := s.Get(1); p.Body != "fresh" {
		t.Fatalf("newer event was not applied")
	}
	if s.Version(1) != 4 {
		t.Fatalf("version not advanced: %d", s.Version(1))
	}
}

func TestMergerUpdateFieldLWWAndCleared(t *testing.T) {
	s := NewPostStore()
	m := &Merger{}
	p := mkPost(1, "AAPL")
	p.Sentiment = models.SentimentBullish
	p.AISummary = strPtr("old summary")
	s.Prepend(p)

	m.Apply(ChangeEvent{Op: OpUpdate, ID: 1, Patch: &PostPatch{
		Version: 1,
		Likes:   intPtr(7),
		Cleared: []string{"ai_summary"},
	}}, s)

	got, _ := s.Get(1)
	if got.Likes != 7 {
		t.Fatalf("Likes = %d, want 7", got.Likes)
	}
	if got.Sentiment != models.SentimentBullish {
		t.Fatalf("absent field clobbered sentiment")
	}
	if got.AISummary != nil {
		t.Fatalf("cleared field survived: %q", *got.AISummary)
	}
}

func TestMergerScoreWidenDerivesSignal(t *testing.T) {
	s := NewPostStore()
	m := &Merger{}
	s.Prepend(mkPost(1, "NVDA"))

	// Pipeline completion arrives with the score but without the
	// denormalized label; the view must not render a scored post unlabeled.
	m.Apply(ChangeEvent{Op: OpUpdate, ID: 1, Patch: &PostPatch{
		Version: 2,
		AIScore: intPtr(85),
		AIRisk:  strPtr(models.RiskMedium),
	}}, s)

	got, _ := s.Get(1)
	if got.AIScore == nil || *got.AIScore != 85 {
		t.Fatalf("score not applied")
	}
	if got.AISignal == nil || *got.AISignal != "strong_buy" {
		t.Fatalf("signal not derived: %v", got.AISignal)
	}
}

func TestMergerDeleteRemovesAndCancels(t *testing.T) {
	s := NewPostStore()
	var canceled []int64
	m := &Merger{OnDelete: func(id int64) { canceled = append(canceled, id) }}
	s.Prepend(mkPost(1, "AAPL"))

	m.Apply(ChangeEvent{Op: OpDelete, ID: 1}, s)
	if s.Contains(1) {
		t.Fatalf("post survived delete event")
	}
	if len(canceled) != 1 || canceled[0] != 1 {
		t.Fatalf("OnDelete calls: %v", canceled)
	}

	// Redelivered delete for an absent post must not re-cancel.
	m.Apply(ChangeEvent{Op: OpDelete, ID: 1}, s)
	if len(canceled) != 1 {
		t.Fatalf("delete of absent post invoked OnDelete")
	}
}
