package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/langchou/citygazer/internal/api/city"
	"github.com/langchou/citygazer/internal/models"
)

// ReservationRepository 预约归档仓库
type ReservationRepository struct {
	db *DB
}

// NewReservationRepository 创建预约归档仓库
func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Record 归档一次预约结果（成功与业务失败都记录）
func (r *ReservationRepository) Record(ctx context.Context, zoneID int, result *city.ReservationResult) error {
	query := `
		INSERT INTO reservations (zone_id, zone_name, success, message, reservation_code, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		zoneID,
		result.ZoneName,
		result.Success,
		result.Message,
		result.ReservationCode,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert reservation record: %w", err)
	}
	return nil
}

// ListRecent 获取最近的预约记录，按时间倒序
func (r *ReservationRepository) ListRecent(ctx context.Context, limit int) ([]models.ReservationRecord, error) {
	query := `
		SELECT id, zone_id, zone_name, success, message, reservation_code, recorded_at
		FROM reservations ORDER BY recorded_at DESC LIMIT $1
	`
	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var records []models.ReservationRecord
	for rows.Next() {
		var rec models.ReservationRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.ZoneID,
			&rec.ZoneName,
			&rec.Success,
			&rec.Message,
			&rec.ReservationCode,
			&rec.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
