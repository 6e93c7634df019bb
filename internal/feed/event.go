package feed

import "tickerfeed/internal/models"

type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// ChangeEvent is one notification from the live post feed. Insert carries the
// full new row; Update carries the target id plus a field-level patch; Delete
// carries only the id. Events are transient and never persisted here.
type ChangeEvent struct {
	Op    ChangeOp
	ID    int64
	Post  *models.Post
	Patch *PostPatch
}

// PostPatch is a partial update to an existing post. A nil field means "not
// mentioned by the event" and must not clear the stored value; a field the
// source explicitly set to null is named in Cleared instead.
type PostPatch struct {
	// Version is the row version after the write that produced this event.
	// Zero means the source does not report versions.
	Version int64

	Body      *string
	Sentiment *string

	AIScore   *int
	AISignal  *string
	AIRisk    *string
	AISummary *string

	Likes    *int
	Comments *int

	Cleared []string
}

// ClearedField reports whether the patch explicitly nulls the named field.
func (p *PostPatch) ClearedField(name string) bool {
	if p == nil {
		return false
	}
	for _, f := range p.Cleared {
		if f == name {
			return true
		}
	}
	return false
}
