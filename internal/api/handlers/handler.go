package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/langchou/citygazer/internal/api/city"
	"github.com/langchou/citygazer/internal/notify"
	"github.com/langchou/citygazer/internal/repository"
	"github.com/langchou/citygazer/internal/service"
	"github.com/langchou/citygazer/pkg/ws"
)

// Handler HTTP 处理器
type Handler struct {
	logger          *zap.Logger
	client          *city.Client
	dashboard       *service.DashboardService
	parking         *service.ParkingService
	analytics       *service.AnalyticsService
	dispatcher      *service.Dispatcher
	messages        *notify.Slot
	statsRepo       *repository.StatsRepository       // 可选
	reservationRepo *repository.ReservationRepository // 可选
	wsHub           *ws.Hub
	upgrader        websocket.Upgrader
}

// NewHandler 创建处理器
func NewHandler(
	logger *zap.Logger,
	client *city.Client,
	dashboard *service.DashboardService,
	parking *service.ParkingService,
	analytics *service.AnalyticsService,
	dispatcher *service.Dispatcher,
	messages *notify.Slot,
	statsRepo *repository.StatsRepository,
	reservationRepo *repository.ReservationRepository,
	wsHub *ws.Hub,
) *Handler {
	return &Handler{
		logger:          logger,
		client:          client,
		dashboard:       dashboard,
		parking:         parking,
		analytics:       analytics,
		dispatcher:      dispatcher,
		messages:        messages,
		statsRepo:       statsRepo,
		reservationRepo: reservationRepo,
		wsHub:           wsHub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 开发环境允许所有来源
			},
		},
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// API 路由
	api := r.Group("/api")
	{
		// 视图快照
		api.GET("/dashboard", h.GetDashboard)
		api.GET("/parking", h.GetParking)
		api.GET("/analytics", h.GetAnalytics)
		api.GET("/heatmap", h.GetHeatmap)

		// 命令
		api.POST("/event-mode", h.SetEventMode)
		api.POST("/demo/control", h.DemoControl)
		api.POST("/parking/:id/reserve", h.ReserveSlot)

		// 通知
		api.GET("/notification", h.GetNotification)

		// 归档历史（需配置数据库）
		api.GET("/history/stats", h.ListStatsHistory)
		api.GET("/history/reservations", h.ListReservations)
	}

	// WebSocket
	r.GET("/ws", h.HandleWebSocket)

	// 健康检查
	r.GET("/health", h.HealthCheck)
}

// HandleWebSocket WebSocket 处理
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	client.Register()

	// 启动读写协程
	go client.ReadPump()
	go client.WritePump()
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"dashboard":  h.dashboard.State(),
		"parking":    h.parking.State(),
		"analytics":  h.analytics.State(),
		"ws_clients": h.wsHub.ClientCount(),
	})
}

// GetNotification 获取当前短时通知，无活跃消息时 data 为 null
func (h *Handler) GetNotification(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.messages.Current()})
}
