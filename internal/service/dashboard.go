package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/langchou/citygazer/internal/api/city"
	"github.com/langchou/citygazer/internal/poller"
	"github.com/langchou/citygazer/internal/repository"
	"github.com/langchou/citygazer/internal/view"
	"github.com/langchou/citygazer/pkg/ws"
)

// 仪表盘视图的组成调用名
const (
	callStats     = "stats"
	callJunctions = "junctions"
	callZones     = "zones"
	callEventMode = "event_mode"
	callIncidents = "incidents"
)

// DashboardService 仪表盘视图服务
// 路口数据是必选项（地图没有路口就无法渲染），其余数据源尽力而为
type DashboardService struct {
	logger    *zap.Logger
	client    *city.Client
	wsHub     *ws.Hub
	statsRepo *repository.StatsRepository // 可选，nil 时不归档
	poller    *poller.Poller
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(
	logger *zap.Logger,
	client *city.Client,
	wsHub *ws.Hub,
	statsRepo *repository.StatsRepository,
	interval time.Duration,
) *DashboardService {
	s := &DashboardService{
		logger:    logger,
		client:    client,
		wsHub:     wsHub,
		statsRepo: statsRepo,
	}

	calls := []poller.Call{
		{Name: callStats, Fetch: func(ctx context.Context) (interface{}, error) {
			return client.GetDashboardStats(ctx)
		}},
		{Name: callJunctions, Required: true, Fetch: func(ctx context.Context) (interface{}, error) {
			return client.GetJunctions(ctx)
		}},
		{Name: callZones, Fetch: func(ctx context.Context) (interface{}, error) {
			return client.GetParkingZones(ctx)
		}},
		{Name: callEventMode, Fetch: func(ctx context.Context) (interface{}, error) {
			return client.GetEventMode(ctx)
		}},
		{Name: callIncidents, Fetch: func(ctx context.Context) (interface{}, error) {
			return client.GetIncidents(ctx)
		}},
	}

	s.poller = poller.New("dashboard", interval, calls, logger)
	return s
}

// Start 启动轮询并转发快照更新
func (s *DashboardService) Start(ctx context.Context) {
	updates := s.poller.Subscribe()
	s.poller.Start(ctx)

	go func() {
		for res := range updates {
			snap := s.snapshotFrom(res)
			if s.wsHub != nil {
				s.wsHub.BroadcastMessage(ws.MsgTypeDashboardUpdate, snap)
			}
			s.archive(ctx, res, snap)
		}
	}()
}

// Stop 停止轮询
func (s *DashboardService) Stop() {
	s.poller.Stop()
}

// State 当前轮询状态
func (s *DashboardService) State() string {
	return s.poller.State()
}

// Snapshot 返回最近一份仪表盘快照，尚无数据时返回 nil
func (s *DashboardService) Snapshot() *view.DashboardSnapshot {
	return s.snapshotFrom(s.poller.Last())
}

// ForceRefresh 立即执行一次带外轮询，返回刷新后的快照
func (s *DashboardService) ForceRefresh(ctx context.Context) *view.DashboardSnapshot {
	return s.snapshotFrom(s.poller.ForcePoll(ctx))
}

// snapshotFrom 把轮询结果映射为类型化快照
func (s *DashboardService) snapshotFrom(res *poller.Result) *view.DashboardSnapshot {
	if res == nil {
		return nil
	}

	snap := &view.DashboardSnapshot{
		Stale:     res.Stale,
		FetchedAt: res.At,
	}
	if v, ok := res.Get(callStats); ok {
		snap.Stats = v.(*city.DashboardStats)
	}
	if v, ok := res.Get(callJunctions); ok {
		snap.Junctions = v.([]city.Junction)
	}
	if v, ok := res.Get(callZones); ok {
		snap.Zones = v.([]city.ParkingZone)
	}
	if v, ok := res.Get(callEventMode); ok {
		snap.EventMode = v.(*city.EventMode)
	}
	if v, ok := res.Get(callIncidents); ok {
		snap.Incidents = v.([]city.Incident)
	}
	return snap
}

// archive 归档本周期的统计汇总；数据过期或未配置数据库时跳过
func (s *DashboardService) archive(ctx context.Context, res *poller.Result, snap *view.DashboardSnapshot) {
	if s.statsRepo == nil || snap.Stats == nil || res.IsStale(callStats) {
		return
	}
	if err := s.statsRepo.Record(ctx, snap.Stats); err != nil {
		s.logger.Error("Failed to archive dashboard stats", zap.Error(err))
	}
}
