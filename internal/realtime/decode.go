package realtime

import (
	"bytes"
	"encoding/json"

	"tickerfeed/internal/feed"
	"tickerfeed/internal/models"
)

const (
	TablePosts    = "posts"
	TableInsights = "ticker_insights"
)

// changeData is the row-change body inside a postgres_changes envelope.
// Record is kept both raw (full-row decode on insert) and as a key map, so a
// field explicitly set to null stays distinguishable from a field the event
// never mentioned.
type changeData struct {
	Type      string                     `json:"type"`
	Table     string                     `json:"table"`
	Record    json.RawMessage            `json:"record"`
	OldRecord map[string]json.RawMessage `json:"old_record"`
}

type changePayload struct {
	Data changeData `json:"data"`
}

var nullLiteral = []byte("null")

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), nullLiteral)
}

// DecodePostChange turns a posts-table change payload into a feed event.
// Returns false for payloads that are malformed, for another table, or that
// carry nothing applicable; bad frames are dropped, never fatal.
func DecodePostChange(payload []byte) (feed.ChangeEvent, bool) {
	var body changePayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return feed.ChangeEvent{}, false
	}
	data := body.Data
	if data.Table != TablePosts {
		return feed.ChangeEvent{}, false
	}
	switch data.Type {
	case "INSERT":
		var post models.Post
		if err := json.Unmarshal(data.Record, &post); err != nil || post.ID == 0 {
			return feed.ChangeEvent{}, false
		}
		return feed.ChangeEvent{Op: feed.OpInsert, ID: post.ID, Post: &post}, true
	case "UPDATE":
		return decodePostUpdate(data)
	case "DELETE":
		id, ok := recordID(data.OldRecord)
		if !ok {
			return feed.ChangeEvent{}, false
		}
		return feed.ChangeEvent{Op: feed.OpDelete, ID: id}, true
	}
	return feed.ChangeEvent{}, false
}

func decodePostUpdate(data changeData) (feed.ChangeEvent, bool) {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(data.Record, &record); err != nil {
		return feed.ChangeEvent{}, false
	}
	id, ok := recordID(record)
	if !ok {
		return feed.ChangeEvent{}, false
	}

	patch := &feed.PostPatch{}
	if raw, ok := record["version"]; ok && !isNull(raw) {
		_ = json.Unmarshal(raw, &patch.Version)
	}
	patch.Body = stringField(record, "body")
	patch.Sentiment = stringField(record, "sentiment")
	patch.AISignal = stringField(record, "ai_signal")
	patch.AIRisk = stringField(record, "ai_risk")
	patch.Likes = intField(record, "likes")
	patch.Comments = intField(record, "comments")
	patch.AIScore = intField(record, "ai_score")

	// ai_summary and price_history are the only clearable fields; an
	// explicit null names them in Cleared instead of setting a pointer.
	if raw, ok := record["ai_summary"]; ok {
		if isNull(raw) {
			patch.Cleared = append(patch.Cleared, "ai_summary")
		} else {
			patch.AISummary = stringField(record, "ai_summary")
		}
	}
	if raw, ok := record["price_history"]; ok && isNull(raw) {
		patch.Cleared = append(patch.Cleared, "price_history")
	}

	return feed.ChangeEvent{Op: feed.OpUpdate, ID: id, Patch: patch}, true
}

// DecodeInsightChange turns a ticker_insights change payload into the full
// replacement row. Deletes are ignored: insights only ever advance.
func DecodeInsightChange(payload []byte) (models.TickerInsight, bool) {
	var body changePayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return models.TickerInsight{}, false
	}
	data := body.Data
	if data.Table != TableInsights {
		return models.TickerInsight{}, false
	}
	if data.Type != "INSERT" && data.Type != "UPDATE" {
		return models.TickerInsight{}, false
	}
	var ins models.TickerInsight
	if err := json.Unmarshal(data.Record, &ins); err != nil || ins.Ticker == "" {
		return models.TickerInsight{}, false
	}
	return ins, true
}

func recordID(record map[string]json.RawMessage) (int64, bool) {
	raw, ok := record["id"]
	if !ok || isNull(raw) {
		return 0, false
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func stringField(record map[string]json.RawMessage, key string) *string {
	raw, ok := record[key]
	if !ok || isNull(raw) {
		return nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

func intField(record map[string]json.RawMessage, key string) *int {
	raw, ok := record[key]
	if !ok || isNull(raw) {
		return nil
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}
