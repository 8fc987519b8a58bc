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

// ParkingService 停车视图服务
// 唯一数据源就是停车区列表，取不到时保留上一份快照
type ParkingService struct {
	logger *zap.Logger
	client *city.Client
	wsHub  *ws.Hub
	poller *poller.Poller
}

// NewParkingService 创建停车服务
func NewParkingService(logger *zap.Logger, client *city.Client, wsHub *ws.Hub, interval time.Duration) *ParkingService {
	s := &ParkingService{
		logger: logger,
		client: client,
		wsHub:  wsHub,
	}

	calls := []poller.Call{
		{Name: callZones, Required: true, Fetch: func(ctx context.Context) (interface{}, error) {
			return client.GetParkingZones(ctx)
		}},
	}

	s.poller = poller.New("parking", interval, calls, logger)
	return s
}

// Start 启动轮询并转发快照更新
func (s *ParkingService) Start(ctx context.Context) {
	updates := s.poller.Subscribe()
	s.poller.Start(ctx)

	go func() {
		for res := range updates {
			if s.wsHub != nil {
				s.wsHub.BroadcastMessage(ws.MsgTypeParkingUpdate, s.snapshotFrom(res))
			}
		}
	}()
}

// Stop 停止轮询
func (s *ParkingService) Stop() {
	s.poller.Stop()
}

// State 当前轮询状态
func (s *ParkingService) State() string {
	return s.poller.State()
}

// Snapshot 返回最近一份停车快照，尚无数据时返回 nil
func (s *ParkingService) Snapshot() *view.ParkingSnapshot {
	return s.snapshotFrom(s.poller.Last())
}

// ForceRefresh 立即执行一次带外轮询，返回刷新后的快照
func (s *ParkingService) ForceRefresh(ctx context.Context) *view.ParkingSnapshot {
	return s.snapshotFrom(s.poller.ForcePoll(ctx))
}

// snapshotFrom 把轮询结果映射为类型化快照
func (s *ParkingService) snapshotFrom(res *poller.Result) *view.ParkingSnapshot {
	if res == nil {
		return nil
	}

	snap := &view.ParkingSnapshot{
		Stale:     res.Stale,
		FetchedAt: res.At,
	}
	if v, ok := res.Get(callZones); ok {
		snap.Zones = v.([]city.ParkingZone)
	}
	return snap
}
