package feed

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"tickerfeed/internal/models"
)

// Remote performs the durable writes behind optimistic edits. DeletePost is a
// two-step operation on the remote side (dependent records first, then the
// post); implementations wrap ErrPartialDelete when the first step succeeded
// and the second did not.
type Remote interface {
	SetLike(ctx context.Context, postID int64, liked bool) error
	DeletePost(ctx context.Context, postID int64) error
}

// ErrPartialDelete means the post's dependents are gone but the post row
// remains. The local removal is kept: a post whose dependents are deleted
// cannot fully function and must not be resurrected.
var ErrPartialDelete = errors.New("post dependents deleted but post row remains")

// Notice is a non-blocking, user-visible notification about a failed or
// partially failed edit. Nothing in this package throws past the controller.
type Notice struct {
	Kind   string
	PostID int64
	Err    error
}

const (
	NoticeLikeFailed    = "like_failed"
	NoticeDeleteFailed  = "delete_failed"
	NoticeDeletePartial = "delete_partial"
)

type likeState struct {
	// desired is the final state the user wants; coalesces rapid toggles.
	desired bool
	// sent is the state the in-flight remote call is writing.
	sent bool
	// snapshot is the last-known-good remote state, restored on failure.
	snapshot models.Post
}

type deleteState struct {
	snapshot models.Post
	index    int
}

// Mutator applies local-only edits immediately and reconciles them with the
// remote asynchronously. Exactly one of confirm or rollback happens for every
// applied edit, unless a remote delete event cancels it first, in which case
// neither does.
//
// All state is guarded by the owning controller's mutex, passed in as mu.
// Remote calls run outside the lock.
type Mutator struct {
	mu      sync.Locker
	store   *PostStore
	remote  Remote
	logger  *zap.Logger
	notify  func(Notice)
	baseCtx context.Context

	likes   map[int64]*likeState
	deletes map[int64]*deleteState
}

func NewMutator(mu sync.Locker, store *PostStore, remote Remote, logger *zap.Logger, notify func(Notice), baseCtx context.Context) *Mutator {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Mutator{
		mu:      mu,
		store:   store,
		remote:  remote,
		logger:  logger,
		notify:  notify,
		baseCtx: baseCtx,
		likes:   map[int64]*likeState{},
		deletes: map[int64]*deleteState{},
	}
}

// ToggleLike flips the viewer's reaction synchronously and schedules the
// remote write. While a confirmation is in flight further toggles only move
// the desired state; at most one remote call runs per post at a time, and a
// follow-up call is issued only when the confirmed state differs from the
// desired one.
//
// Caller must hold the controller mutex.
func (m *Mutator) ToggleLike(id int64) {
	if m == nil {
		return
	}
	post, ok := m.store.Get(id)
	if !ok {
		return
	}
	updated := post
	if updated.HasLiked {
		updated.HasLiked = false
		if updated.Likes > 0 {
			updated.Likes--
		}
	} else {
		updated.HasLiked = true
		updated.Likes++
	}
	m.store.Put(updated)

	if m.remote == nil {
		return
	}
	if st, pending := m.likes[id]; pending {
		st.desired = updated.HasLiked
		return
	}
	st := &likeState{desired: updated.HasLiked, sent: updated.HasLiked, snapshot: post}
	m.likes[id] = st
	go m.runLike(id, st.sent)
}

func (m *Mutator) runLike(id int64, liked bool) {
	err := m.remote.SetLike(m.baseCtx, id, liked)

	m.mu.Lock()
	st, ok := m.likes[id]
	if !ok {
		// Canceled by a remote delete or a view reset; the remote result
		// stands and the historical fetch is the source of truth.
		m.mu.Unlock()
		return
	}
	if err != nil {
		if cur, exists := m.store.Get(id); exists {
			cur.HasLiked = st.snapshot.HasLiked
			cur.Likes = st.snapshot.Likes
			m.store.Put(cur)
		}
		delete(m.likes, id)
		m.mu.Unlock()
		if m.logger != nil {
			m.logger.Warn("like confirmation failed, rolled back", zap.Int64("post_id", id), zap.Error(err))
		}
		m.sendNotice(Notice{Kind: NoticeLikeFailed, PostID: id, Err: err})
		return
	}

	// The write landed; advance the last-known-good snapshot.
	if st.snapshot.HasLiked != liked {
		st.snapshot.HasLiked = liked
		if liked {
			st.snapshot.Likes++
		} else if st.snapshot.Likes > 0 {
			st.snapshot.Likes--
		}
	}
	if st.desired != liked {
		st.sent = st.desired
		next := st.sent
		m.mu.Unlock()
		go m.runLike(id, next)
		return
	}
	delete(m.likes, id)
	m.mu.Unlock()
}

// Delete removes the post from the store immediately; there is no undo from
// the user's perspective. A full remote failure restores the post; a partial
// failure (dependents already gone) does not.
//
// Caller must hold the controller mutex.
func (m *Mutator) Delete(id int64) {
	if m == nil {
		return
	}
	if _, pending := m.deletes[id]; pending {
		return
	}
	removed, index, ok := m.store.Remove(id)
	if !ok {
		return
	}
	// A pending like on a deleted post is moot.
	delete(m.likes, id)
	if m.remote == nil {
		return
	}
	m.deletes[id] = &deleteState{snapshot: removed, index: index}
	go m.runDelete(id)
}

func (m *Mutator) runDelete(id int64) {
	err := m.remote.DeletePost(m.baseCtx, id)

	m.mu.Lock()
	st, ok := m.deletes[id]
	delete(m.deletes, id)
	if !ok {
		m.mu.Unlock()
		return
	}
	if err == nil {
		m.mu.Unlock()
		return
	}
	if errors.Is(err, ErrPartialDelete) {
		m.mu.Unlock()
		if m.logger != nil {
			m.logger.Warn("partial remote delete, keeping local removal", zap.Int64("post_id", id), zap.Error(err))
		}
		m.sendNotice(Notice{Kind: NoticeDeletePartial, PostID: id, Err: err})
		return
	}
	// Nothing was deleted remotely; restore the post where it was.
	m.store.InsertAt(st.snapshot, st.index)
	m.mu.Unlock()
	if m.logger != nil {
		m.logger.Warn("remote delete failed, restored post", zap.Int64("post_id", id), zap.Error(err))
	}
	m.sendNotice(Notice{Kind: NoticeDeleteFailed, PostID: id, Err: err})
}

// CancelPending drops edit state for a post without reversing anything.
// Called when a remote delete event supersedes local edits.
//
// Caller must hold the controller mutex.
func (m *Mutator) CancelPending(id int64) {
	if m == nil {
		return
	}
	delete(m.likes, id)
	delete(m.deletes, id)
}

// Reset drops all pending edit state; used on scope or filter changes.
// In-flight remote calls complete against the old scope and their results
// are discarded.
//
// Caller must hold the controller mutex.
func (m *Mutator) Reset() {
	if m == nil {
		return
	}
	m.likes = map[int64]*likeState{}
	m.deletes = map[int64]*deleteState{}
}

// Pending reports whether any edit for the post awaits confirmation.
func (m *Mutator) Pending(id int64) bool {
	if m == nil {
		return false
	}
	_, like := m.likes[id]
	_, del := m.deletes[id]
	return like || del
}

func (m *Mutator) sendNotice(n Notice) {
	if m == nil || m.notify == nil {
		return
	}
	// Notices must never block the mutation path.
	go m.notify(n)
}
