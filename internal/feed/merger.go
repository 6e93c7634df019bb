package feed

import (
	"go.uber.org/zap"

	"tickerfeed/internal/models"
)

// Merger folds live change events into a PostStore. Events are applied in
// receipt order per id; the remote stream is assumed causally ordered per
// row, so no timestamp reordering is attempted. Malformed or unknown-post
// events are dropped silently: the historical fetch is the ultimate source
// of truth and event application must never be fatal.
type Merger struct {
	Logger *zap.Logger

	// OnDelete cancels any pending optimistic edit for a remotely deleted
	// post. The remote state has already superseded the edit, so the cancel
	// must not reverse anything.
	OnDelete func(id int64)
}

func (m *Merger) Apply(ev ChangeEvent, store *PostStore) {
	if m == nil || store == nil {
		return
	}
	switch ev.Op {
	case OpInsert:
		m.applyInsert(ev, store)
	case OpUpdate:
		m.applyUpdate(ev, store)
	case OpDelete:
		m.applyDelete(ev, store)
	default:
		if m.Logger != nil {
			m.Logger.Debug("unknown change op ignored", zap.String("op", string(ev.Op)))
		}
	}
}

func (m *Merger) applyInsert(ev ChangeEvent, store *PostStore) {
	if ev.Post == nil {
		return
	}
	// The page fetch and the live stream race; first writer wins and the
	// duplicate is ignored.
	if !store.Prepend(*ev.Post) {
		return
	}
	store.SetVersion(ev.Post.ID, ev.Post.Version)
}

func (m *Merger) applyUpdate(ev ChangeEvent, store *PostStore) {
	if ev.Patch == nil {
		return
	}
	post, ok := store.Get(ev.ID)
	if !ok {
		// The post may belong to a page not yet fetched.
		return
	}
	patch := ev.Patch
	if patch.Version != 0 && patch.Version <= store.Version(ev.ID) {
		// Redelivery of an already-applied event.
		return
	}

	wasUnscored := post.AIScore == nil

	// Last write wins per field. A nil patch field never clears a stored
	// value; only fields named in Cleared are nulled.
	if patch.Body != nil {
		post.Body = *patch.Body
	}
	if patch.Sentiment != nil {
		post.Sentiment = *patch.Sentiment
	}
	if patch.Likes != nil {
		post.Likes = *patch.Likes
	}
	if patch.Comments != nil {
		post.Comments = *patch.Comments
	}
	if patch.AIScore != nil {
		post.AIScore = patch.AIScore
	}
	if patch.AISignal != nil {
		post.AISignal = patch.AISignal
	}
	if patch.AIRisk != nil {
		post.AIRisk = patch.AIRisk
	}
	if patch.AISummary != nil {
		post.AISummary = patch.AISummary
	}
	for _, name := range patch.Cleared {
		switch name {
		case "ai_summary":
			post.AISummary = nil
		case "price_history":
			post.PriceHistory = nil
		}
		// The score/signal/risk triple is monotonic absent-to-present and is
		// never cleared once set.
	}

	// Score arriving late is a widen: the denormalized siblings must land
	// together. The partial patch is treated as authoritative; a missing
	// signal label is derived from the score rather than re-fetched.
	if wasUnscored && post.AIScore != nil && post.AISignal == nil {
		label := models.SignalLabel(*post.AIScore)
		post.AISignal = &label
	}

	store.Put(post)
	store.SetVersion(ev.ID, patch.Version)
}

func (m *Merger) applyDelete(ev ChangeEvent, store *PostStore) {
	if _, _, ok := store.Remove(ev.ID); !ok {
		return
	}
	if m.OnDelete != nil {
		m.OnDelete(ev.ID)
	}
	if m.Logger != nil {
		m.Logger.Debug("post removed by remote delete", zap.Int64("post_id", ev.ID))
	}
}
