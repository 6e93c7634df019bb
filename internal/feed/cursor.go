package feed

// PageCursor tracks historical pagination for one feed view. It is not safe
// for concurrent use on its own; the owning controller serializes access.
type PageCursor struct {
	next     int
	hasMore  bool
	inFlight bool
}

func NewPageCursor() *PageCursor {
	return &PageCursor{hasMore: true}
}

// Begin marks a fetch as in flight. It returns false, without error, when a
// fetch is already running or the feed is exhausted; proximity-triggered
// "load more" signals fire in bursts and duplicates must be a no-op.
func (c *PageCursor) Begin() bool {
	if c == nil || c.inFlight || !c.hasMore {
		return false
	}
	c.inFlight = true
	return true
}

// Finish completes the fetch started by Begin. On success the page index
// advances and hasMore is taken from the server's reported remainder. On
// failure both are left unchanged so the caller can retry.
func (c *PageCursor) Finish(ok bool, hasMore bool) {
	if c == nil {
		return
	}
	c.inFlight = false
	if !ok {
		return
	}
	c.next++
	c.hasMore = hasMore
}

// Reset returns the cursor to its initial state. Called whenever the feed's
// root query (filter or ticker scope) changes.
func (c *PageCursor) Reset() {
	if c == nil {
		return
	}
	c.next = 0
	c.hasMore = true
	c.inFlight = false
}

func (c *PageCursor) NextPage() int { return c.next }
func (c *PageCursor) HasMore() bool { return c.hasMore }
func (c *PageCursor) InFlight() bool { return c.inFlight }
