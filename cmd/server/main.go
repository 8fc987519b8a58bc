package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/langchou/citygazer/internal/api/city"
	"github.com/langchou/citygazer/internal/api/handlers"
	"github.com/langchou/citygazer/internal/config"
	"github.com/langchou/citygazer/internal/notify"
	"github.com/langchou/citygazer/internal/repository"
	"github.com/langchou/citygazer/internal/service"
	"github.com/langchou/citygazer/pkg/ws"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := initLogger(cfg.Debug)
	defer logger.Sync()

	logger.Info("Starting Citygazer",
		zap.String("port", cfg.ServerPort),
		zap.String("backend", cfg.BackendURL))

	// 创建 context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 连接数据库（可选，用于统计和预约归档）
	var statsRepo *repository.StatsRepository
	var reservationRepo *repository.ReservationRepository
	if cfg.DatabaseURL != "" {
		db, err := repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect database", zap.Error(err))
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Info("Database migrated successfully")

		statsRepo = repository.NewStatsRepository(db)
		reservationRepo = repository.NewReservationRepository(db)
	} else {
		logger.Info("No DATABASE_URL configured, history archive disabled")
	}

	// 创建后端 API 客户端
	cityClient := city.NewClient(cfg.BackendURL)

	// 创建 WebSocket Hub
	wsHub := ws.NewHub(logger)
	go wsHub.Run()

	// 创建通知槽位
	messages := notify.NewSlot(cfg.MessageTTL)

	// 创建视图服务
	dashboard := service.NewDashboardService(logger, cityClient, wsHub, statsRepo, cfg.PollIntervalOperational)
	parking := service.NewParkingService(logger, cityClient, wsHub, cfg.PollIntervalOperational)
	analytics := service.NewAnalyticsService(logger, cityClient, wsHub, cfg.PollIntervalAnalytics)

	// 新连接初始化数据
	wsHub.SetInitDataProvider(func() *ws.InitData {
		return &ws.InitData{
			Dashboard: dashboard.Snapshot(),
			Parking:   parking.Snapshot(),
			Analytics: analytics.Snapshot(),
		}
	})

	// 启动视图服务
	dashboard.Start(ctx)
	parking.Start(ctx)
	analytics.Start(ctx)

	// 创建命令派发器
	dispatcher := service.NewDispatcher(logger, cityClient, messages, wsHub, reservationRepo, dashboard, parking)

	// 创建 HTTP 处理器
	handler := handlers.NewHandler(
		logger,
		cityClient,
		dashboard,
		parking,
		analytics,
		dispatcher,
		messages,
		statsRepo,
		reservationRepo,
		wsHub,
	)

	// 设置 Gin 模式
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// 注册路由
	handler.RegisterRoutes(router)

	// 启动 HTTP 服务器
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", server.Addr))

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// 停止视图服务
	dashboard.Stop()
	parking.Stop()
	analytics.Stop()

	// 优雅关闭
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// initLogger 初始化日志
func initLogger(debug bool) *zap.Logger {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}

	logger, _ := config.Build()
	return logger
}

// corsMiddleware CORS 中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
