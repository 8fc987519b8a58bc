package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/langchou/citygazer/internal/view"
)

// GetAnalytics 获取分析快照及图表序列
func (h *Handler) GetAnalytics(c *gin.Context) {
	snap := h.analytics.Snapshot()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Analytics data not ready"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": snap,
		"projections": gin.H{
			"trend_series":  view.TrendSeries(snap.Trends),
			"top_congested": view.JunctionMarkers(snap.TopCongested),
		},
	})
}
