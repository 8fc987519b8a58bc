package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// historyLimit 读取分页参数
func historyLimit(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	return limit
}

// ListStatsHistory 获取归档的仪表盘统计历史
// GET /api/history/stats
func (h *Handler) ListStatsHistory(c *gin.Context) {
	if h.statsRepo == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "History archive not configured"})
		return
	}

	records, err := h.statsRepo.ListRecent(c.Request.Context(), historyLimit(c))
	if err != nil {
		h.logger.Error("Failed to list stats history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stats history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

// ListReservations 获取归档的预约记录
// GET /api/history/reservations
func (h *Handler) ListReservations(c *gin.Context) {
	if h.reservationRepo == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "History archive not configured"})
		return
	}

	records, err := h.reservationRepo.ListRecent(c.Request.Context(), historyLimit(c))
	if err != nil {
		h.logger.Error("Failed to list reservations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reservations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}
