package city

import "time"

// 拥堵等级常量
const (
	CongestionLow    = "low"
	CongestionMedium = "medium"
	CongestionHigh   = "high"
)

// 事件类型常量（后端支持的固定集合）
const (
	EventFestival  = "Festival"
	EventMarketDay = "Market Day"
	EventSchool    = "School/Exam Hours"
	EventEmergency = "Emergency/VIP Movement"
)

// EventTypes 所有合法的事件类型
var EventTypes = []string{EventFestival, EventMarketDay, EventSchool, EventEmergency}

// ValidEventType 检查事件类型是否合法
func ValidEventType(eventType string) bool {
	for _, t := range EventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

// 演示控制动作常量
const (
	ActionIncreaseTraffic = "increase_traffic"
	ActionResetTraffic    = "reset_traffic"
	ActionTriggerIncident = "trigger_incident"
	ActionClearIncidents  = "clear_incidents"
)

// Junction 路口快照
type Junction struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Congestion   string  `json:"congestion"` // low, medium, high
	VehicleCount int     `json:"vehicle_count"`
	AvgSpeed     float64 `json:"avg_speed"` // km/h
}

// ParkingZone 停车区快照
// occupancy_rate 由后端计算，客户端只展示不重算
type ParkingZone struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	TotalSlots    int     `json:"total_slots"`
	Available     int     `json:"available"`
	IllegalCount  int     `json:"illegal_count"`
	OccupancyRate float64 `json:"occupancy_rate"` // 0-100
}

// Incident 事件快照（仅当前活跃，客户端不保留历史）
type Incident struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Severity    string `json:"severity"` // low, medium, high
	Timestamp   string `json:"timestamp"`
}

// EventMode 事件模式状态
// event_type 和 activated_at 仅在 enabled 为 true 时有意义
type EventMode struct {
	Enabled     bool    `json:"enabled"`
	EventType   *string `json:"event_type"`
	ActivatedAt *string `json:"activated_at"`
}

// DashboardStats 仪表盘聚合统计（后端反规范化汇总，客户端原样信任）
type DashboardStats struct {
	CongestedJunctions   int       `json:"congested_junctions"`
	TotalJunctions       int       `json:"total_junctions"`
	AvailableParking     int       `json:"available_parking_slots"`
	TotalParkingCapacity int       `json:"total_parking_capacity"`
	IllegalParkingCount  int       `json:"illegal_parking_count"`
	ActiveIncidents      int       `json:"active_incidents"`
	EventMode            EventMode `json:"event_mode"`
	LastUpdated          string    `json:"last_updated"`
}

// HeatmapPoint 热力图数据点
type HeatmapPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Intensity float64 `json:"intensity"`
}

// TrendDataset 趋势图的一条数据序列
type TrendDataset struct {
	Name string `json:"name"`
	Data []int  `json:"data"`
}

// TrafficTrends 24 小时交通趋势
type TrafficTrends struct {
	Labels   []string       `json:"labels"`
	Datasets []TrendDataset `json:"datasets"`
}

// PeakWindow 高峰时段汇总
type PeakWindow struct {
	Time          string `json:"time"`
	AvgCongestion int    `json:"avg_congestion"`
}

// PeakHours 高峰时段对比
type PeakHours struct {
	MorningPeak   PeakWindow `json:"morning_peak"`
	AfternoonPeak PeakWindow `json:"afternoon_peak"`
	EveningPeak   PeakWindow `json:"evening_peak"`
	Night         PeakWindow `json:"night"`
}

// ReservationResult 预约结果
// success 为 false 表示业务层失败（如车位已满），不是传输错误
type ReservationResult struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	ZoneName        string `json:"zone_name,omitempty"`
	RemainingSlots  int    `json:"remaining_slots,omitempty"`
	ReservationCode string `json:"reservation_code,omitempty"`
}

// EventModeResult 设置事件模式的响应
type EventModeResult struct {
	Success   bool      `json:"success"`
	EventMode EventMode `json:"event_mode"`
	Message   string    `json:"message"`
}

// DemoResult 演示控制的响应
type DemoResult struct {
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	Multiplier float64   `json:"multiplier,omitempty"`
	Incident   *Incident `json:"incident,omitempty"`
}

// ParseTimestamp 解析后端返回的 ISO 8601 时间戳
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
