package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/citygazer/internal/api/city"
)

// SetEventMode 切换事件模式
// POST /api/event-mode
func (h *Handler) SetEventMode(c *gin.Context) {
	var req struct {
		Enabled   bool    `json:"enabled"`
		EventType *string `json:"event_type"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	eventType := ""
	if req.EventType != nil {
		eventType = *req.EventType
	}

	result, err := h.dispatcher.SetEventMode(c.Request.Context(), req.Enabled, eventType)
	if err != nil {
		h.writeCommandError(c, "set event mode", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// DemoControl 触发演示控制动作
// POST /api/demo/control
func (h *Handler) DemoControl(c *gin.Context) {
	var req struct {
		Action string   `json:"action"`
		Value  *float64 `json:"value"`
	}
	if err := c.BindJSON(&req); err != nil || req.Action == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.dispatcher.DemoControl(c.Request.Context(), req.Action, req.Value)
	if err != nil {
		h.writeCommandError(c, "demo control", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ReserveSlot 预约一个车位
// POST /api/parking/:id/reserve
// 业务失败（车位已满）也是 200，结果随 success 字段返回，与后端约定一致
func (h *Handler) ReserveSlot(c *gin.Context) {
	zoneID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid zone ID"})
		return
	}

	result, err := h.dispatcher.Reserve(c.Request.Context(), zoneID)
	if err != nil {
		h.writeCommandError(c, "reserve slot", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":         result,
		"notification": h.messages.Current(),
	})
}

// writeCommandError 把派发器错误映射为 HTTP 响应
// 业务错误带后端原文返回 422，传输错误统一 502
func (h *Handler) writeCommandError(c *gin.Context, op string, err error) {
	var be *city.BusinessError
	if errors.As(err, &be) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": be.Message})
		return
	}

	h.logger.Error("Command failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": "Backend unavailable"})
}
