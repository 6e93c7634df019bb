package realtime

import (
	"testing"

	"tickerfeed/internal/feed"
)

func TestDecodePostInsert(t *testing.T) {
	payload := []byte(`{"data":{"type":"INSERT","table":"posts","record":{
		"id":42,"ticker":"AAPL","body":"earnings look strong","author_id":"u1",
		"author_name":"Ana","sentiment":"Bullish","likes":0,"comments":0,"version":1}}}`)

	ev, ok := DecodePostChange(payload)
	if !ok {
		t.Fatalf("insert not decoded")
	}
	if ev.Op != feed.OpInsert || ev.ID != 42 || ev.Post == nil {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Post.Ticker != "AAPL" || ev.Post.Version != 1 {
		t.Fatalf("post = %+v", ev.Post)
	}
}

func TestDecodePostUpdateNullVersusAbsent(t *testing.T) {
	// body absent, ai_summary explicitly null: the patch must clear the
	// summary but leave body untouched.
	payload := []byte(`{"data":{"type":"UPDATE","table":"posts","record":{
		"id":7,"version":3,"likes":12,"ai_summary":null}}}`)

	ev, ok := DecodePostChange(payload)
	if !ok {
		t.Fatalf("update not decoded")
	}
	if ev.Op != feed.OpUpdate || ev.ID != 7 || ev.Patch == nil {
		t.Fatalf("event = %+v", ev)
	}
	p := ev.Patch
	if p.Version != 3 {
		t.Fatalf("version = %d", p.Version)
	}
	if p.Likes == nil || *p.Likes != 12 {
		t.Fatalf("likes = %v", p.Likes)
	}
	if p.Body != nil {
		t.Fatalf("absent body produced a patch field")
	}
	if !p.ClearedField("ai_summary") {
		t.Fatalf("null ai_summary not marked cleared: %+v", p.Cleared)
	}
	if p.ClearedField("price_history") {
		t.Fatalf("absent price_history marked cleared")
	}
}

func TestDecodePostUpdateScoreFields(t *testing.T) {
	payload := []byte(`{"data":{"type":"UPDATE","table":"posts","record":{
		"id":9,"version":2,"ai_score":85,"ai_signal":"strong_buy","ai_risk":"Medium","ai_summary":"solid"}}}`)

	ev, ok := DecodePostChange(payload)
	if !ok {
		t.Fatalf("update not decoded")
	}
	p := ev.Patch
	if p.AIScore == nil || *p.AIScore != 85 {
		t.Fatalf("ai_score = %v", p.AIScore)
	}
	if p.AISignal == nil || *p.AISignal != "strong_buy" {
		t.Fatalf("ai_signal = %v", p.AISignal)
	}
	if p.AISummary == nil || *p.AISummary != "solid" {
		t.Fatalf("ai_summary = %v", p.AISummary)
	}
	if len(p.Cleared) != 0 {
		t.Fatalf("cleared = %v", p.Cleared)
	}
}

func TestDecodePostDelete(t *testing.T) {
	payload := []byte(`{"data":{"type":"DELETE","table":"posts","old_record":{"id":5}}}`)
	ev, ok := DecodePostChange(payload)
	if !ok || ev.Op != feed.OpDelete || ev.ID != 5 {
		t.Fatalf("event = %+v ok=%v", ev, ok)
	}
}

func TestDecodePostChangeRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		[]byte(`not json`),
		[]byte(`{"data":{"type":"INSERT","table":"posts","record":{"ticker":"X"}}}`), // no id
		[]byte(`{"data":{"type":"UPDATE","table":"ticker_insights","record":{"id":1}}}`),
		[]byte(`{"data":{"type":"TRUNCATE","table":"posts"}}`),
		[]byte(`{"data":{"type":"DELETE","table":"posts","old_record":{}}}`),
	}
	for i, payload := range cases {
		if _, ok := DecodePostChange(payload); ok {
			t.Fatalf("case %d decoded", i)
		}
	}
}

func TestDecodeInsightChange(t *testing.T) {
	payload := []byte(`{"data":{"type":"UPDATE","table":"ticker_insights","record":{
		"ticker":"NVDA","score":72,"signal":"buy","risk":"High"}}}`)

	ins, ok := DecodeInsightChange(payload)
	if !ok {
		t.Fatalf("insight not decoded")
	}
	if ins.Ticker != "NVDA" || ins.Score != 72 || ins.Signal != "buy" || ins.Risk != "High" {
		t.Fatalf("insight = %+v", ins)
	}

	if _, ok := DecodeInsightChange([]byte(`{"data":{"type":"DELETE","table":"ticker_insights","old_record":{"ticker":"NVDA"}}}`)); ok {
		t.Fatalf("insight delete decoded")
	}
	if _, ok := DecodeInsightChange([]byte(`{"data":{"type":"UPDATE","table":"posts","record":{"id":1}}}`)); ok {
		t.Fatalf("posts row decoded as insight")
	}
}
