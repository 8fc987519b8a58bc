package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB 数据库连接池封装
type DB struct {
	Pool *pgxpool.Pool
}

// New 创建数据库连接
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	// 连接池配置
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// 测试连接
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close 关闭连接池
func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate 执行数据库迁移
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		migrationCreateStatsHistory,
		migrationCreateReservations,
	}

	for _, m := range migrations {
		if _, err := db.Pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}

	return nil
}

// 数据库迁移 SQL
const migrationCreateStatsHistory = `
CREATE TABLE IF NOT EXISTS stats_history (
    id BIGSERIAL PRIMARY KEY,
    congested_junctions INT NOT NULL,
    total_junctions INT NOT NULL,
    available_parking_slots INT NOT NULL,
    total_parking_capacity INT NOT NULL,
    illegal_parking_count INT NOT NULL,
    active_incidents INT NOT NULL,
    event_mode_enabled BOOLEAN NOT NULL DEFAULT false,
    event_type VARCHAR(50),
    recorded_at TIMESTAMP WITH TIME ZONE NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stats_history_recorded_at ON stats_history(recorded_at);
`

const migrationCreateReservations = `
CREATE TABLE IF NOT EXISTS reservations (
    id BIGSERIAL PRIMARY KEY,
    zone_id INT NOT NULL,
    zone_name VARCHAR(255),
    success BOOLEAN NOT NULL,
    message TEXT,
    reservation_code VARCHAR(20),
    recorded_at TIMESTAMP WITH TIME ZONE NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reservations_zone_id ON reservations(zone_id);
CREATE INDEX IF NOT EXISTS idx_reservations_recorded_at ON reservations(recorded_at);
`
