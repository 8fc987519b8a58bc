package models

import "time"

// StatsRecord 仪表盘统计归档记录
// 后端只保留当前状态，历史由本服务按轮询周期落库
type StatsRecord struct {
	ID                   int64     `json:"id" db:"id"`
	CongestedJunctions   int       `json:"congested_junctions" db:"congested_junctions"`
	TotalJunctions       int       `json:"total_junctions" db:"total_junctions"`
	AvailableParking     int       `json:"available_parking_slots" db:"available_parking_slots"`
	TotalParkingCapacity int       `json:"total_parking_capacity" db:"total_parking_capacity"`
	IllegalParkingCount  int       `json:"illegal_parking_count" db:"illegal_parking_count"`
	ActiveIncidents      int       `json:"active_incidents" db:"active_incidents"`
	EventModeEnabled     bool      `json:"event_mode_enabled" db:"event_mode_enabled"`
	EventType            *string   `json:"event_type,omitempty" db:"event_type"`
	RecordedAt           time.Time `json:"recorded_at" db:"recorded_at"`
}

// ReservationRecord 预约结果归档记录
type ReservationRecord struct {
	ID              int64     `json:"id" db:"id"`
	ZoneID          int       `json:"zone_id" db:"zone_id"`
	ZoneName        string    `json:"zone_name" db:"zone_name"`
	Success         bool      `json:"success" db:"success"`
	Message         string    `json:"message" db:"message"`
	ReservationCode string    `json:"reservation_code,omitempty" db:"reservation_code"`
	RecordedAt      time.Time `json:"recorded_at" db:"recorded_at"`
}
