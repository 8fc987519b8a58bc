package view

import (
	"time"

	"github.com/langchou/citygazer/internal/api/city"
)

// DashboardSnapshot 仪表盘视图快照
// 每次成功轮询整份替换，不做增量合并
type DashboardSnapshot struct {
	Stats     *city.DashboardStats `json:"stats"`
	Junctions []city.Junction      `json:"junctions"`
	Zones     []city.ParkingZone   `json:"zones"`
	EventMode *city.EventMode      `json:"event_mode"`
	Incidents []city.Incident      `json:"incidents"`
	Stale     []string             `json:"stale,omitempty"` // 本周期失败、沿用旧值的数据源
	FetchedAt time.Time            `json:"fetched_at"`
}

// ParkingSnapshot 停车视图快照
type ParkingSnapshot struct {
	Zones     []city.ParkingZone `json:"zones"`
	Stale     []string           `json:"stale,omitempty"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// AnalyticsSnapshot 分析视图快照
type AnalyticsSnapshot struct {
	Trends       *city.TrafficTrends `json:"trends"`
	PeakHours    *city.PeakHours     `json:"peak_hours"`
	TopCongested []city.Junction     `json:"top_congested"`
	Stale        []string            `json:"stale,omitempty"`
	FetchedAt    time.Time           `json:"fetched_at"`
}
