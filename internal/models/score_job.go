package models

// ScoreJob is the message enqueued for the scoring pipeline after a post is
// durably written. The queue is best effort; the periodic sweep re-enqueues
// posts the pipeline missed.
type ScoreJob struct {
	PostID int64  `json:"post_id"`
	Ticker string `json:"ticker"`
}
