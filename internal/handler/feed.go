package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tickerfeed/internal/feed"
	"tickerfeed/internal/repository"
	"tickerfeed/internal/service"
)

type FeedHandler struct {
	Posts    *service.PostService
	PageSize int
}

func (h *FeedHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/feed", h.listFeed)
}

func (h *FeedHandler) listFeed(c *gin.Context) {
	if h.Posts == nil {
		Error(c, http.StatusInternalServerError, "post service unavailable", nil)
		return
	}
	pageSize := h.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	page := intQuery(c, "page", 0)
	if page < 0 {
		page = 0
	}
	filter := feed.ParseFilter(c.Query("filter"))

	result, err := h.Posts.ListFeedPage(c.Request.Context(), repository.FeedPageParams{
		Page:     page,
		PageSize: pageSize,
		Filter:   string(filter),
		Ticker:   normalizeTickerQuery(c),
		ViewerID: viewerID(c),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	meta := map[string]any{
		"page":      page,
		"page_size": pageSize,
		"filter":    string(filter),
		"has_more":  result.HasMore,
	}
	Ok(c, result.Posts, meta)
}
