package feed

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"tickerfeed/internal/models"
)

// Scope is the query dimension of a feed view: the global home feed (empty
// ticker) or a single-ticker feed.
type Scope struct {
	Ticker string
}

type PageRequest struct {
	Page     int
	PageSize int
	Filter   Filter
	Ticker   string
	ViewerID string
}

type PageResult struct {
	Posts   []models.Post
	HasMore bool
}

// PageFetcher is the historical query: offset/limit over a deterministic
// sort key. Callers tolerate boundary duplication or omission under
// concurrent writes; the store dedups by id.
type PageFetcher interface {
	FetchPage(ctx context.Context, req PageRequest) (PageResult, error)
}

// Subscription is an explicit live-feed handle. Start begins delivery and
// returns immediately; Stop tears the subscription down. Deliveries happen
// on the subscription's own goroutine and handlers must not block.
type Subscription interface {
	Start(ctx context.Context) error
	Stop()
}

type ChangeFeed interface {
	SubscribePosts(scope Scope, fn func(ChangeEvent)) Subscription
}

type InsightFeed interface {
	SubscribeInsights(scope Scope, fn func(models.TickerInsight)) Subscription
}

// FeedView is the render-ready output of one snapshot pass.
type FeedView struct {
	Posts   []models.Post
	Loading bool
	HasMore bool
}

type ControllerOptions struct {
	Fetcher  PageFetcher
	Remote   Remote
	Changes  ChangeFeed
	Insights InsightFeed
	Logger   *zap.Logger
	Notify   func(Notice)
	PageSize int
	ViewerID string
	Scope    Scope
	Filter   Filter
}

// Controller owns one feed view: one PostStore, one InsightOverlay, one
// PageCursor. Every mutation (page results, change events, optimistic
// edits) is serialized under a single mutex; no two interleave
// mid-application. Stores are never shared between controllers.
type Controller struct {
	mu sync.Mutex

	opts    ControllerOptions
	store   *PostStore
	overlay *InsightOverlay
	cursor  *PageCursor
	merger  *Merger
	edits   *Mutator

	scope  Scope
	filter Filter

	// epoch increments on every root-query change; results and deliveries
	// stamped with an older epoch are discarded, never merged.
	epoch uint64

	baseCtx     context.Context
	scopeCancel context.CancelFunc
	changeSub   Subscription
	insightSub  Subscription
	started     bool
}

func NewController(opts ControllerOptions) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.Filter == "" {
		opts.Filter = FilterAll
	}
	c := &Controller{
		opts:    opts,
		store:   NewPostStore(),
		overlay: NewInsightOverlay(),
		cursor:  NewPageCursor(),
		scope:   opts.Scope,
		filter:  opts.Filter,
	}
	c.edits = NewMutator(&c.mu, c.store, opts.Remote, opts.Logger, opts.Notify, context.Background())
	c.merger = &Merger{
		Logger:   opts.Logger,
		OnDelete: c.edits.CancelPending,
	}
	return c
}

// Start establishes both live subscriptions for the current scope. Safe to
// use the controller without Start for fetch-only views.
func (c *Controller) Start(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	c.baseCtx = ctx
	c.started = true
	return c.startSubsLocked()
}

// Stop tears down both subscriptions. Pending edit confirmations complete in
// the background; their results no longer touch the store.
func (c *Controller) Stop() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSubsLocked()
	c.edits.Reset()
	c.started = false
}

func (c *Controller) startSubsLocked() error {
	if c.baseCtx == nil {
		return nil
	}
	scopeCtx, cancel := context.WithCancel(c.baseCtx)
	c.scopeCancel = cancel
	epoch := c.epoch
	if c.opts.Changes != nil {
		sub := c.opts.Changes.SubscribePosts(c.scope, func(ev ChangeEvent) {
			c.applyEventEpoch(epoch, ev)
		})
		if err := sub.Start(scopeCtx); err != nil {
			return err
		}
		c.changeSub = sub
	}
	if c.opts.Insights != nil {
		sub := c.opts.Insights.SubscribeInsights(c.scope, func(ins models.TickerInsight) {
			c.applyInsightEpoch(epoch, ins)
		})
		if err := sub.Start(scopeCtx); err != nil {
			return err
		}
		c.insightSub = sub
	}
	return nil
}

func (c *Controller) stopSubsLocked() {
	if c.scopeCancel != nil {
		c.scopeCancel()
		c.scopeCancel = nil
	}
	if c.changeSub != nil {
		c.changeSub.Stop()
		c.changeSub = nil
	}
	if c.insightSub != nil {
		c.insightSub.Stop()
		c.insightSub = nil
	}
}

// LoadMore fetches the next historical page and blocks the caller until the
// result is merged or fails. Duplicate triggers while a fetch is in flight,
// or after exhaustion, are silent no-ops. A fetch error leaves hasMore
// unchanged so the caller can retry.
func (c *Controller) LoadMore(ctx context.Context) error {
	if c == nil || c.opts.Fetcher == nil {
		return nil
	}
	c.mu.Lock()
	if !c.cursor.Begin() {
		c.mu.Unlock()
		return nil
	}
	epoch := c.epoch
	cursor := c.cursor
	req := PageRequest{
		Page:     c.cursor.NextPage(),
		PageSize: c.opts.PageSize,
		Filter:   c.filter,
		Ticker:   c.scope.Ticker,
		ViewerID: c.opts.ViewerID,
	}
	c.mu.Unlock()

	result, err := c.opts.Fetcher.FetchPage(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		// The view was rescoped mid-fetch; this result belongs to an
		// abandoned query and must not be merged. The captured cursor was
		// replaced together with the epoch, so clearing it is harmless.
		cursor.Finish(false, false)
		return nil
	}
	if err != nil {
		c.cursor.Finish(false, false)
		return err
	}
	c.store.AppendPage(result.Posts)
	c.cursor.Finish(true, result.HasMore)
	return nil
}

// ApplyEvent folds a live change event into the store. Push delivery path:
// applies and returns, never blocks the delivering goroutine on I/O.
func (c *Controller) ApplyEvent(ev ChangeEvent) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.merger.Apply(ev, c.store)
	c.mu.Unlock()
}

func (c *Controller) applyEventEpoch(epoch uint64, ev ChangeEvent) {
	c.mu.Lock()
	if epoch != c.epoch {
		// Stale-scope delivery after a rescope.
		c.mu.Unlock()
		return
	}
	c.merger.Apply(ev, c.store)
	c.mu.Unlock()
}

// ApplyInsight replaces the live insight for a ticker wholesale.
func (c *Controller) ApplyInsight(ins models.TickerInsight) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.overlay.Set(ins)
	c.mu.Unlock()
}

func (c *Controller) applyInsightEpoch(epoch uint64, ins models.TickerInsight) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.overlay.Set(ins)
	c.mu.Unlock()
}

// ToggleLike applies the viewer's reaction immediately and confirms it
// remotely in the background.
func (c *Controller) ToggleLike(id int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.edits.ToggleLike(id)
	c.mu.Unlock()
}

// DeletePost removes the post immediately; see Mutator.Delete for the
// two-step remote semantics.
func (c *Controller) DeletePost(id int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.edits.Delete(id)
	c.mu.Unlock()
}

// SetFilter changes the root query. The store and cursor reset and in-flight
// fetch results are discarded; live subscriptions stay up since the scope is
// unchanged.
func (c *Controller) SetFilter(f Filter) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if f == "" {
		f = FilterAll
	}
	if f == c.filter {
		return
	}
	c.filter = f
	c.resetViewLocked()
}

// Rescope switches the feed between ticker contexts. Outstanding fetches are
// abandoned and both live subscriptions are re-established against the new
// scope.
func (c *Controller) Rescope(scope Scope) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if scope == c.scope {
		return nil
	}
	c.scope = scope
	c.resetViewLocked()
	c.overlay.Reset()
	if !c.started {
		return nil
	}
	c.stopSubsLocked()
	return c.startSubsLocked()
}

func (c *Controller) resetViewLocked() {
	c.epoch++
	c.store.Reset()
	c.cursor = NewPageCursor()
	c.edits.Reset()
}

// Snapshot derives the render-ready sequence plus loading/exhaustion flags.
// Recomputed on every call; the filter engine carries no state.
func (c *Controller) Snapshot() FeedView {
	if c == nil {
		return FeedView{}
	}
	c.mu.Lock()
	posts := c.store.Snapshot()
	filter := c.filter
	view := FeedView{
		Loading: c.cursor.InFlight(),
		HasMore: c.cursor.HasMore(),
	}
	c.mu.Unlock()
	view.Posts = Derive(posts, c.overlay, filter)
	return view
}

func (c *Controller) Scope() Scope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scope
}

func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Overlay exposes the view's insight store for render-side resolution.
func (c *Controller) Overlay() *InsightOverlay {
	return c.overlay
}
