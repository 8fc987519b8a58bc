package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/citygazer/internal/view"
)

// GetDashboard 获取仪表盘快照及投影
// 快照尚未就绪（首次轮询未完成且从未成功）时返回 503
func (h *Handler) GetDashboard(c *gin.Context) {
	snap := h.dashboard.Snapshot()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Dashboard data not ready"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": snap,
		"projections": gin.H{
			"cards":            view.StatCards(snap.Stats),
			"junction_markers": view.JunctionMarkers(snap.Junctions),
			"zone_markers":     view.ZoneMarkers(snap.Zones),
			"event_banner":     view.EventBanner(snap.EventMode),
			"incident_count":   len(snap.Incidents),
		},
	})
}

// GetHeatmap 透传后端热力图数据
// 三个视图都不消费热力图，这里按需直连后端，不经过轮询器
func (h *Handler) GetHeatmap(c *gin.Context) {
	points, err := h.client.GetHeatmap(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to fetch heatmap", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch heatmap"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": points})
}
