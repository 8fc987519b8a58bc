package view

import (
	"fmt"

	"github.com/langchou/citygazer/internal/api/city"
)

// 固定配色（与前端图例一致）
const (
	ColorGreen   = "#22c55e"
	ColorAmber   = "#f59e0b"
	ColorRed     = "#ef4444"
	ColorNeutral = "#6b7280" // 未知值的兜底色
	ColorBlue    = "#3b82f6"
)

// CongestionColor 拥堵等级到颜色的映射
// 对任意输入都有定义，未识别的等级返回中性灰
func CongestionColor(level string) string {
	switch level {
	case city.CongestionLow:
		return ColorGreen
	case city.CongestionMedium:
		return ColorAmber
	case city.CongestionHigh:
		return ColorRed
	default:
		return ColorNeutral
	}
}

// SeverityColor 事件严重度到颜色的映射，规则与拥堵等级一致
func SeverityColor(severity string) string {
	return CongestionColor(severity)
}

// OccupancyStatus 占用率档位
type OccupancyStatus struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// OccupancyStatusFor 占用率到档位的映射
func OccupancyStatusFor(rate float64) OccupancyStatus {
	switch {
	case rate < 50:
		return OccupancyStatus{Label: "Low", Color: ColorGreen}
	case rate < 80:
		return OccupancyStatus{Label: "Medium", Color: ColorAmber}
	default:
		return OccupancyStatus{Label: "High", Color: ColorRed}
	}
}

// ParkingTotals 停车区聚合统计
// available 和 capacity 由各区字段求和得出；occupancy_rate 不在客户端重算
type ParkingTotals struct {
	Zones     int `json:"zones"`
	Capacity  int `json:"capacity"`
	Available int `json:"available"`
	Illegal   int `json:"illegal"`
}

// SumParkingTotals 汇总全部停车区
func SumParkingTotals(zones []city.ParkingZone) ParkingTotals {
	totals := ParkingTotals{Zones: len(zones)}
	for _, z := range zones {
		totals.Capacity += z.TotalSlots
		totals.Available += z.Available
		totals.Illegal += z.IllegalCount
	}
	return totals
}

// Marker 地图标记
type Marker struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Color string  `json:"color"`
	Label string  `json:"label"`
}

// JunctionMarkers 路口列表到地图标记的投影
func JunctionMarkers(junctions []city.Junction) []Marker {
	markers := make([]Marker, 0, len(junctions))
	for _, j := range junctions {
		markers = append(markers, Marker{
			ID:    j.ID,
			Name:  j.Name,
			Lat:   j.Lat,
			Lng:   j.Lng,
			Color: CongestionColor(j.Congestion),
			Label: fmt.Sprintf("%s | %d vehicles | %.0f km/h", j.Name, j.VehicleCount, j.AvgSpeed),
		})
	}
	return markers
}

// ZoneMarkers 停车区列表到地图标记的投影
func ZoneMarkers(zones []city.ParkingZone) []Marker {
	markers := make([]Marker, 0, len(zones))
	for _, z := range zones {
		markers = append(markers, Marker{
			ID:    z.ID,
			Name:  z.Name,
			Lat:   z.Lat,
			Lng:   z.Lng,
			Color: OccupancyStatusFor(z.OccupancyRate).Color,
			Label: fmt.Sprintf("%s | %d/%d available", z.Name, z.Available, z.TotalSlots),
		})
	}
	return markers
}

// StatCard 统计卡片
type StatCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// StatCards 仪表盘聚合统计到卡片的投影
func StatCards(stats *city.DashboardStats) []StatCard {
	if stats == nil {
		return nil
	}
	return []StatCard{
		{Label: "Congested Junctions", Value: fmt.Sprintf("%d/%d", stats.CongestedJunctions, stats.TotalJunctions)},
		{Label: "Available Parking", Value: fmt.Sprintf("%d/%d", stats.AvailableParking, stats.TotalParkingCapacity)},
		{Label: "Illegal Parking", Value: fmt.Sprintf("%d", stats.IllegalParkingCount)},
		{Label: "Active Incidents", Value: fmt.Sprintf("%d", stats.ActiveIncidents)},
	}
}

// EventBanner 事件模式横幅文案
// 仅在事件模式开启时返回非空；关闭状态下后端残留的 event_type 视为不存在
func EventBanner(mode *city.EventMode) string {
	if mode == nil || !mode.Enabled || mode.EventType == nil {
		return ""
	}
	return fmt.Sprintf("EVENT MODE ACTIVE: %s", *mode.EventType)
}

// ActiveEventType 当前生效的事件类型，未开启时返回空字符串
func ActiveEventType(mode *city.EventMode) string {
	if mode == nil || !mode.Enabled || mode.EventType == nil {
		return ""
	}
	return *mode.EventType
}

// ChartSeries 图表数据序列
type ChartSeries struct {
	Name  string `json:"name"`
	Data  []int  `json:"data"`
	Color string `json:"color"`
}

// 趋势图序列配色
var trendPalette = []string{ColorBlue, ColorRed}

// TrendSeries 趋势数据到图表序列的投影
func TrendSeries(trends *city.TrafficTrends) []ChartSeries {
	if trends == nil {
		return nil
	}
	series := make([]ChartSeries, 0, len(trends.Datasets))
	for i, ds := range trends.Datasets {
		series = append(series, ChartSeries{
			Name:  ds.Name,
			Data:  ds.Data,
			Color: trendPalette[i%len(trendPalette)],
		})
	}
	return series
}

// ReservableZones 可预约的停车区 ID 集合
// available 为 0 的区在界面上直接禁用预约控件
func ReservableZones(zones []city.ParkingZone) map[int]bool {
	reservable := make(map[int]bool, len(zones))
	for _, z := range zones {
		if z.Available > 0 {
			reservable[z.ID] = true
		}
	}
	return reservable
}
