package feed

import "tickerfeed/internal/models"

// PostStore is the ordered, deduplicated post collection backing one feed
// view, the single source of truth for what is rendered. The post id is the
// only dedup key; (ticker, body, author) can legitimately repeat.
//
// The store carries no lock of its own: exactly one FeedController owns it
// and serializes every mutation.
type PostStore struct {
	posts    []models.Post
	index    map[int64]int
	versions map[int64]int64
}

func NewPostStore() *PostStore {
	return &PostStore{
		index:    map[int64]int{},
		versions: map[int64]int64{},
	}
}

func (s *PostStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.posts)
}

func (s *PostStore) Contains(id int64) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Get returns a copy of the stored post.
func (s *PostStore) Get(id int64) (models.Post, bool) {
	if s == nil {
		return models.Post{}, false
	}
	i, ok := s.index[id]
	if !ok {
		return models.Post{}, false
	}
	return s.posts[i], true
}

// Prepend inserts a new post at the front (new posts are always newest).
// Returns false if the id is already present, which happens when the
// historical page fetch and the live stream race.
func (s *PostStore) Prepend(p models.Post) bool {
	if s == nil || s.Contains(p.ID) {
		return false
	}
	s.posts = append([]models.Post{p}, s.posts...)
	for id, i := range s.index {
		s.index[id] = i + 1
	}
	s.index[p.ID] = 0
	return true
}

// AppendPage adds a historical page at the back, skipping ids already present
// (boundary duplication under concurrent writes, or posts that arrived live
// first). Returns the number of posts actually added.
func (s *PostStore) AppendPage(items []models.Post) int {
	if s == nil {
		return 0
	}
	added := 0
	for _, p := range items {
		if s.Contains(p.ID) {
			continue
		}
		s.index[p.ID] = len(s.posts)
		s.posts = append(s.posts, p)
		added++
	}
	return added
}

// Put replaces an existing post in place, keeping its position. Unknown ids
// are ignored; inserts go through Prepend or AppendPage.
func (s *PostStore) Put(p models.Post) bool {
	if s == nil {
		return false
	}
	i, ok := s.index[p.ID]
	if !ok {
		return false
	}
	s.posts[i] = p
	return true
}

// Remove deletes a post and reports its former position for callers that may
// need to restore it (failed optimistic deletes).
func (s *PostStore) Remove(id int64) (models.Post, int, bool) {
	if s == nil {
		return models.Post{}, 0, false
	}
	i, ok := s.index[id]
	if !ok {
		return models.Post{}, 0, false
	}
	removed := s.posts[i]
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	delete(s.index, id)
	delete(s.versions, id)
	for j := i; j < len(s.posts); j++ {
		s.index[s.posts[j].ID] = j
	}
	return removed, i, true
}

// InsertAt restores a post at the given position (clamped). Used only to
// undo a failed optimistic removal.
func (s *PostStore) InsertAt(p models.Post, pos int) bool {
	if s == nil || s.Contains(p.ID) {
		return false
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.posts) {
		pos = len(s.posts)
	}
	s.posts = append(s.posts, models.Post{})
	copy(s.posts[pos+1:], s.posts[pos:])
	s.posts[pos] = p
	for j := pos; j < len(s.posts); j++ {
		s.index[s.posts[j].ID] = j
	}
	return true
}

// Version returns the last applied event version for a post; zero if none
// was recorded.
func (s *PostStore) Version(id int64) int64 {
	if s == nil {
		return 0
	}
	return s.versions[id]
}

func (s *PostStore) SetVersion(id, v int64) {
	if s == nil || v == 0 {
		return
	}
	if v > s.versions[id] {
		s.versions[id] = v
	}
}

// Snapshot returns a copy of the ordered posts for rendering.
func (s *PostStore) Snapshot() []models.Post {
	if s == nil {
		return nil
	}
	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Reset drops everything; used on scope or filter changes.
func (s *PostStore) Reset() {
	if s == nil {
		return
	}
	s.posts = nil
	s.index = map[int64]int{}
	s.versions = map[int64]int64{}
}
