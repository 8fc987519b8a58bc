package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/langchou/citygazer/internal/api/city"
	"github.com/langchou/citygazer/internal/models"
)

// StatsRepository 仪表盘统计归档仓库
type StatsRepository struct {
	db *DB
}

// NewStatsRepository 创建统计归档仓库
func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Record 归档一份仪表盘统计
func (r *StatsRepository) Record(ctx context.Context, stats *city.DashboardStats) error {
	query := `
		INSERT INTO stats_history (congested_junctions, total_junctions, available_parking_slots, total_parking_capacity, illegal_parking_count, active_incidents, event_mode_enabled, event_type, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	var eventType *string
	if stats.EventMode.Enabled {
		eventType = stats.EventMode.EventType
	}

	_, err := r.db.Pool.Exec(ctx, query,
		stats.CongestedJunctions,
		stats.TotalJunctions,
		stats.AvailableParking,
		stats.TotalParkingCapacity,
		stats.IllegalParkingCount,
		stats.ActiveIncidents,
		stats.EventMode.Enabled,
		eventType,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert stats record: %w", err)
	}
	return nil
}

// ListRecent 获取最近的统计记录，按时间倒序
func (r *StatsRepository) ListRecent(ctx context.Context, limit int) ([]models.StatsRecord, error) {
	query := `
		SELECT id, congested_junctions, total_junctions, available_parking_slots, total_parking_capacity, illegal_parking_count, active_incidents, event_mode_enabled, event_type, recorded_at
		FROM stats_history ORDER BY recorded_at DESC LIMIT $1
	`
	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query stats history: %w", err)
	}
	defer rows.Close()

	var records []models.StatsRecord
	for rows.Next() {
		var rec models.StatsRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.CongestedJunctions,
			&rec.TotalJunctions,
			&rec.AvailableParking,
			&rec.TotalParkingCapacity,
			&rec.IllegalParkingCount,
			&rec.ActiveIncidents,
			&rec.EventModeEnabled,
			&rec.EventType,
			&rec.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stats record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
