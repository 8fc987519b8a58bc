package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/langchou/citygazer/internal/api/city"
	"github.com/langchou/citygazer/internal/notify"
	"github.com/langchou/citygazer/internal/repository"
	"github.com/langchou/citygazer/pkg/ws"
)

// Dispatcher 命令派发器
// 每个用户意图恰好执行一次写操作，写落定（成功或业务失败）后强制一次对账轮询；
// 写在传输层失败时后端状态未变，不触发对账。命令不去重，连点防护由界面负责
type Dispatcher struct {
	logger          *zap.Logger
	client          *city.Client
	messages        *notify.Slot
	wsHub           *ws.Hub
	reservationRepo *repository.ReservationRepository // 可选，nil 时不归档

	dashboard *DashboardService
	parking   *ParkingService
}

// NewDispatcher 创建命令派发器
func NewDispatcher(
	logger *zap.Logger,
	client *city.Client,
	messages *notify.Slot,
	wsHub *ws.Hub,
	reservationRepo *repository.ReservationRepository,
	dashboard *DashboardService,
	parking *ParkingService,
) *Dispatcher {
	return &Dispatcher{
		logger:          logger,
		client:          client,
		messages:        messages,
		wsHub:           wsHub,
		reservationRepo: reservationRepo,
		dashboard:       dashboard,
		parking:         parking,
	}
}

// SetEventMode 切换事件模式
// 开启时 eventType 必须来自固定集合；关闭由后端清除 event_type/activated_at，
// 客户端通过对账轮询观察权威状态，不做本地清除
func (d *Dispatcher) SetEventMode(ctx context.Context, enabled bool, eventType string) (*city.EventModeResult, error) {
	if enabled && !city.ValidEventType(eventType) {
		return nil, &city.BusinessError{Op: "set_event_mode", Message: fmt.Sprintf("unknown event type: %q", eventType)}
	}

	result, err := d.client.SetEventMode(ctx, enabled, eventType)
	if err != nil {
		return nil, d.afterWriteError(ctx, "set_event_mode", err, d.reconcileDashboard)
	}

	d.logger.Info("Event mode updated",
		zap.Bool("enabled", enabled),
		zap.String("event_type", eventType))

	d.reconcileDashboard(ctx)
	return result, nil
}

// DemoControl 触发演示控制动作
func (d *Dispatcher) DemoControl(ctx context.Context, action string, value *float64) (*city.DemoResult, error) {
	result, err := d.client.DemoControl(ctx, action, value)
	if err != nil {
		return nil, d.afterWriteError(ctx, "demo_control", err, d.reconcileDashboard)
	}

	d.logger.Info("Demo control dispatched", zap.String("action", action))

	d.reconcileDashboard(ctx)
	return result, nil
}

// Reserve 预约一个车位
// 成功产生带预约码的成功通知；业务失败原样转发后端消息；
// 传输失败给出通用错误（没有后端消息可用），且不对账
func (d *Dispatcher) Reserve(ctx context.Context, zoneID int) (*city.ReservationResult, error) {
	result, err := d.client.ReserveSlot(ctx, zoneID)
	if err != nil {
		var be *city.BusinessError
		if errors.As(err, &be) {
			// 后端拒绝（如停车区不存在）：写已落定，转发原文并对账
			d.post(notify.KindError, be.Message)
			d.archive(ctx, zoneID, &city.ReservationResult{Success: false, Message: be.Message})
			d.reconcileParking(ctx)
			return nil, err
		}

		d.logger.Error("Reservation request failed", zap.Int("zone_id", zoneID), zap.Error(err))
		d.post(notify.KindError, "Failed to reserve parking")
		return nil, err
	}

	if result.Success {
		d.post(notify.KindSuccess, fmt.Sprintf("%s. Code: %s", result.Message, result.ReservationCode))
	} else {
		// 业务失败（如车位已满）：使用后端给出的消息原文
		d.post(notify.KindError, result.Message)
	}

	d.archive(ctx, zoneID, result)
	d.reconcileParking(ctx)
	return result, nil
}

// afterWriteError 写操作出错后的统一处理
// 业务错误表示写已落定，照常对账；传输错误不对账
func (d *Dispatcher) afterWriteError(ctx context.Context, op string, err error, reconcile func(context.Context)) error {
	if city.IsBusinessError(err) {
		reconcile(ctx)
		return err
	}
	d.logger.Error("Command write failed", zap.String("op", op), zap.Error(err))
	return err
}

// reconcileDashboard 写后对账：强制仪表盘视图立即轮询
func (d *Dispatcher) reconcileDashboard(ctx context.Context) {
	if d.dashboard != nil {
		d.dashboard.ForceRefresh(ctx)
	}
}

// reconcileParking 写后对账：强制停车视图立即轮询
func (d *Dispatcher) reconcileParking(ctx context.Context) {
	if d.parking != nil {
		d.parking.ForceRefresh(ctx)
	}
}

// post 发布短时通知并推送给 WebSocket 客户端
func (d *Dispatcher) post(kind, text string) {
	msg := d.messages.Post(kind, text)
	if d.wsHub != nil {
		d.wsHub.BroadcastMessage(ws.MsgTypeNotification, msg)
	}
}

// archive 归档预约结果，未配置数据库时跳过
func (d *Dispatcher) archive(ctx context.Context, zoneID int, result *city.ReservationResult) {
	if d.reservationRepo == nil {
		return
	}
	if err := d.reservationRepo.Record(ctx, zoneID, result); err != nil {
		d.logger.Error("Failed to archive reservation", zap.Int("zone_id", zoneID), zap.Error(err))
	}
}
