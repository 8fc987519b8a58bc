package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/langchou/citygazer/internal/api/city"
	"github.com/langchou/citygazer/internal/poller"
	"github.com/langchou/citygazer/internal/view"
	"github.com/langchou/citygazer/pkg/ws"
)

// 分析视图的组成调用名
const (
	callTrends       = "trends"
	callPeakHours    = "peak_hours"
	callTopCongested = "top_congested"
)

// AnalyticsService 分析视图服务
// 三个图表相互独立，哪个有数据就渲染哪个，因此没有必选项
type AnalyticsService struct {
	logger *zap.Logger
	client *city.Client
	wsHub  *ws.Hub
	poller *poller.Poller
}

// NewAnalyticsService 创建分析服务
func NewAnalyticsService(logger *zap.Logger, client *city.Client, wsHub *ws.Hub, interval time.Duration) *AnalyticsService {
	s := &AnalyticsService{
		logger: logger,
		client: client,
		wsHub:  wsHub,
	}

	calls := []poller.Call{
		{Name: callTrends, Fetch: func(ctx context.Context) (interface{}, error) {
			return client.GetTrafficTrends(ctx)
		}},
		{Name: callPeakHours, Fetch: func(ctx context.Context) (interface{}, error) {
			return client.GetPeakHours(ctx)
		}},
		{Name: callTopCongested, Fetch: func(ctx context.Context) (interface{}, error) {
			return client.GetTopCongested(ctx)
		}},
	}

	s.poller = poller.New("analytics", interval, calls, logger)
	return s
}

// Start 启动轮询并转发快照更新
func (s *AnalyticsService) Start(ctx context.Context) {
	updates := s.poller.Subscribe()
	s.poller.Start(ctx)

	go func() {
		for res := range updates {
			if s.wsHub != nil {
				s.wsHub.BroadcastMessage(ws.MsgTypeAnalyticsUpdate, s.snapshotFrom(res))
			}
		}
	}()
}

// Stop 停止轮询
func (s *AnalyticsService) Stop() {
	s.poller.Stop()
}

// State 当前轮询状态
func (s *AnalyticsService) State() string {
	return s.poller.State()
}

// Snapshot 返回最近一份分析快照，尚无数据时返回 nil
func (s *AnalyticsService) Snapshot() *view.AnalyticsSnapshot {
	return s.snapshotFrom(s.poller.Last())
}

// snapshotFrom 把轮询结果映射为类型化快照
func (s *AnalyticsService) snapshotFrom(res *poller.Result) *view.AnalyticsSnapshot {
	if res == nil {
		return nil
	}

	snap := &view.AnalyticsSnapshot{
		Stale:     res.Stale,
		FetchedAt: res.At,
	}
	if v, ok := res.Get(callTrends); ok {
		snap.Trends = v.(*city.TrafficTrends)
	}
	if v, ok := res.Get(callPeakHours); ok {
		snap.PeakHours = v.(*city.PeakHours)
	}
	if v, ok := res.Get(callTopCongested); ok {
		snap.TopCongested = v.([]city.Junction)
	}
	return snap
}
