package feed

import (
	"testing"

	"tickerfeed/internal/models"
)

func mkPost(id int64, ticker string) models.Post {
	return models.Post{ID: id, Ticker: ticker, Body: "note", AuthorID: "u1"}
}

func storeIDs(s *PostStore) []int64 {
	snap := s.Snapshot()
	ids := make([]int64, 0, len(snap))
	for _, p := range snap {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestPostStorePrependDedup(t *testing.T) {
	s := NewPostStore()
	if !s.Prepend(mkPost(1, "AAPL")) {
		t.Fatalf("first prepend rejected")
	}
	if !s.Prepend(mkPost(2, "TSLA")) {
		t.Fatalf("second prepend rejected")
	}
	if s.Prepend(mkPost(1, "AAPL")) {
		t.Fatalf("duplicate prepend accepted")
	}
	ids := storeIDs(s)
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 1 {
		t.Fatalf("unexpected order: %v", ids)
	}
}

func TestPostStoreAppendPageSkipsExisting(t *testing.T) {
	s := NewPostStore()
	s.Prepend(mkPost(3, "AAPL"))
	added := s.AppendPage([]models.Post{mkPost(3, "AAPL"), mkPost(2, "MSFT"), mkPost(1, "TSLA")})
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}
	ids := storeIDs(s)
	want := []int64{3, 2, 1}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("unexpected order: %v", ids)
		}
	}
	if _, ok := s.Get(2); !ok {
		t.Fatalf("appended post not indexed")
	}
}

func TestPostStoreRemoveAndRestore(t *testing.T) {
	s := NewPostStore()
	s.AppendPage([]models.Post{mkPost(5, "A"), mkPost(4, "B"), mkPost(3, "C")})

	removed, idx, ok := s.Remove(4)
	if !ok || removed.ID != 4 || idx != 1 {
		t.Fatalf("Remove(4) = (%d, %d, %v)", removed.ID, idx, ok)
	}
	if s.Contains(4) || s.Len() != 2 {
		t.Fatalf("post still present after removal")
	}
	if p, ok := s.Get(3); !ok || p.ID != 3 {
		t.Fatalf("index not rebuilt after removal")
	}

	if !s.InsertAt(removed, idx) {
		t.Fatalf("restore rejected")
	}
	ids := storeIDs(s)
	want := []int64{5, 4, 3}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("restore order: %v", ids)
		}
	}
}

func TestPostStoreInsertAtClamps(t *testing.T) {
	s := NewPostStore()
	s.AppendPage([]models.Post{mkPost(1, "A")})
	if !s.InsertAt(mkPost(2, "B"), 99) {
		t.Fatalf("clamped insert rejected")
	}
	ids := storeIDs(s)
	if ids[len(ids)-1] != 2 {
		t.Fatalf("out-of-range insert not clamped to tail: %v", ids)
	}
}

func TestPostStoreVersionMonotonic(t *testing.T) {
	s := NewPostStore()
	s.Prepend(mkPost(1, "A"))
	s.SetVersion(1, 5)
	s.SetVersion(1, 3)
	if got := s.Version(1); got != 5 {
		t.Fatalf("Version(1) = %d, want 5", got)
	}
	s.SetVersion(1, 0)
	if got := s.Version(1); got != 5 {
		t.Fatalf("zero version overwrote recorded version")
	}
}

func TestPostStoreSnapshotIsCopy(t *testing.T) {
	s := NewPostStore()
	s.Prepend(mkPost(1, "A"))
	snap := s.Snapshot()
	snap[0].Body = "mutated"
	if p, _ := s.Get(1); p.Body != "note" {
		t.Fatalf("snapshot aliases store memory")
	}
}
