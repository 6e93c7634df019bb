package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tickerfeed/internal/repository"
	"tickerfeed/internal/service"
)

type InsightHandler struct {
	Insights *service.InsightService
}

func (h *InsightHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/insights")
	group.GET("", h.listInsights)
	group.GET("/:ticker", h.getInsight)
}

func (h *InsightHandler) listInsights(c *gin.Context) {
	if h.Insights == nil {
		Error(c, http.StatusInternalServerError, "insight service unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	var riskPtr *string
	if risk := strings.TrimSpace(c.Query("risk")); risk != "" {
		riskPtr = &risk
	}
	var signalPtr *string
	if signal := strings.TrimSpace(c.Query("signal")); signal != "" {
		signalPtr = &signal
	}

	items, err := h.Insights.List(c.Request.Context(), repository.ListInsightsParams{
		Limit:   limit,
		Offset:  offset,
		Risk:    riskPtr,
		Signal:  signalPtr,
		OrderBy: "updated_at",
		Asc:     boolPtr(false),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	meta := map[string]any{"limit": limit, "offset": offset}
	Ok(c, items, meta)
}

func (h *InsightHandler) getInsight(c *gin.Context) {
	if h.Insights == nil {
		Error(c, http.StatusInternalServerError, "insight service unavailable", nil)
		return
	}
	ticker := c.Param("ticker")
	ins, err := h.Insights.Get(c.Request.Context(), ticker)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if ins == nil {
		Error(c, http.StatusNotFound, "insight not found", nil)
		return
	}
	Ok(c, ins, nil)
}

func boolPtr(v bool) *bool { return &v }
