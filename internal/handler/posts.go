package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tickerfeed/internal/feed"
	"tickerfeed/internal/service"
)

type PostHandler struct {
	Posts *service.PostService
}

func (h *PostHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/posts")
	group.POST("", h.createPost)
	group.GET("/:id", h.getPost)
	group.POST("/:id/like", h.setLike)
	group.DELETE("/:id", h.deletePost)
}

type createPostRequest struct {
	Ticker       string `json:"ticker" binding:"required"`
	Body         string `json:"body" binding:"required"`
	Sentiment    string `json:"sentiment"`
	AuthorName   string `json:"author_name"`
	AuthorAvatar string `json:"author_avatar"`
}

func (h *PostHandler) createPost(c *gin.Context) {
	if h.Posts == nil {
		Error(c, http.StatusInternalServerError, "post service unavailable", nil)
		return
	}
	viewer := viewerID(c)
	if viewer == "" {
		Error(c, http.StatusUnauthorized, "missing user identity", nil)
		return
	}
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	post, err := h.Posts.CreatePost(c.Request.Context(), service.CreatePostInput{
		Ticker:       req.Ticker,
		Body:         req.Body,
		Sentiment:    req.Sentiment,
		AuthorID:     viewer,
		AuthorName:   req.AuthorName,
		AuthorAvatar: req.AuthorAvatar,
	})
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	Ok(c, post, nil)
}

func (h *PostHandler) getPost(c *gin.Context) {
	if h.Posts == nil {
		Error(c, http.StatusInternalServerError, "post service unavailable", nil)
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid post id", nil)
		return
	}
	post, err := h.Posts.GetPost(c.Request.Context(), id, viewerID(c))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if post == nil {
		Error(c, http.StatusNotFound, "post not found", nil)
		return
	}
	Ok(c, post, nil)
}

type setLikeRequest struct {
	Liked *bool `json:"liked" binding:"required"`
}

func (h *PostHandler) setLike(c *gin.Context) {
	if h.Posts == nil {
		Error(c, http.StatusInternalServerError, "post service unavailable", nil)
		return
	}
	viewer := viewerID(c)
	if viewer == "" {
		Error(c, http.StatusUnauthorized, "missing user identity", nil)
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid post id", nil)
		return
	}
	var req setLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := h.Posts.SetLike(c.Request.Context(), id, viewer, *req.Liked); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"post_id": id, "liked": *req.Liked}, nil)
}

func (h *PostHandler) deletePost(c *gin.Context) {
	if h.Posts == nil {
		Error(c, http.StatusInternalServerError, "post service unavailable", nil)
		return
	}
	viewer := viewerID(c)
	if viewer == "" {
		Error(c, http.StatusUnauthorized, "missing user identity", nil)
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid post id", nil)
		return
	}
	post, err := h.Posts.GetPost(c.Request.Context(), id, viewer)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if post == nil {
		Error(c, http.StatusNotFound, "post not found", nil)
		return
	}
	if post.AuthorID != viewer {
		Error(c, http.StatusForbidden, "not the author", nil)
		return
	}
	if err := h.Posts.DeletePost(c.Request.Context(), id); err != nil {
		if errors.Is(err, feed.ErrPartialDelete) {
			// Dependents are gone; report the degraded outcome but keep the
			// post hidden from the caller's perspective.
			Ok(c, gin.H{"post_id": id, "partial": true}, nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"post_id": id}, nil)
}

func normalizeTickerQuery(c *gin.Context) string {
	return strings.ToUpper(strings.TrimSpace(c.Query("ticker")))
}
